package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	fn func() error
}

func (f fakeCloser) Close() error { return f.fn() }

func TestShutdownRunsHooksNewestFirst(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	m.RegisterCloser("downsync", fakeCloser{fn: func() error {
		order = append(order, "downsync")
		return nil
	}})
	m.RegisterCloser("debouncer", fakeCloser{fn: func() error {
		order = append(order, "debouncer")
		return nil
	}})
	m.RegisterStop("http", func(context.Context) error {
		order = append(order, "http")
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "debouncer", "downsync"}, order,
		"the HTTP surface must stop before the components it serves")
}

func TestShutdownContinuesPastFailures(t *testing.T) {
	m := New(time.Second, nil)

	var downsyncStopped bool
	m.RegisterCloser("downsync", fakeCloser{fn: func() error {
		downsyncStopped = true
		return nil
	}})
	boom := errors.New("listener already closed")
	m.RegisterStop("http", func(context.Context) error { return boom })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, downsyncStopped, "a failing hook must not block the rest")
}

func TestShutdownAbandonsHooksAfterDeadline(t *testing.T) {
	m := New(time.Minute, nil)

	var ran bool
	m.RegisterStop("http", func(context.Context) error {
		ran = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Shutdown(ctx)
	require.Error(t, err)
	assert.False(t, ran, "hooks must not run against a dead context")
}

func TestRegisterNilIsIgnored(t *testing.T) {
	m := New(time.Second, nil)
	m.RegisterStop("noop", nil)
	m.RegisterCloser("noop", nil)
	require.NoError(t, m.Shutdown(context.Background()))
}

package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler collects scheduled callbacks so tests control time.
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (m *manualScheduler) schedule(d time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, fn)
	return func() {}
}

func (m *manualScheduler) fireAll() {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fns)
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestDebouncer(window time.Duration) (*Debouncer, *manualClock, *manualScheduler) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	sched := &manualScheduler{}
	return NewDebouncerWithClock(window, clock.Now, sched.schedule), clock, sched
}

func TestDebounceBurstCoalesces(t *testing.T) {
	deb, _, sched := newTestDebouncer(time.Second)

	var writes []interface{}
	record := func(v interface{}) { writes = append(writes, v) }

	deb.Submit("1/name", "a", record)
	deb.Submit("1/name", "ab", record)
	deb.Submit("1/name", "abc", record)

	// Leading edge fired immediately, the burst's tail is still pending.
	require.Equal(t, []interface{}{"a"}, writes)
	require.Equal(t, 1, sched.pending(), "exactly one trailing fire scheduled")

	sched.fireAll()
	assert.Equal(t, []interface{}{"a", "abc"}, writes, "trailing write carries the last value only")
}

func TestDebounceIndependentKeys(t *testing.T) {
	deb, _, sched := newTestDebouncer(time.Second)

	var writes []interface{}
	record := func(v interface{}) { writes = append(writes, v) }

	deb.Submit("1/available_date", "x", record)
	deb.Submit("1/due_date", "y", record)

	assert.Equal(t, []interface{}{"x", "y"}, writes, "different fields fire independently")
	assert.Equal(t, 0, sched.pending())
}

func TestDebounceFiresAgainAfterWindow(t *testing.T) {
	deb, clock, sched := newTestDebouncer(time.Second)

	var writes []interface{}
	record := func(v interface{}) { writes = append(writes, v) }

	deb.Submit("k", "first", record)
	clock.Advance(2 * time.Second)
	deb.Submit("k", "second", record)

	assert.Equal(t, []interface{}{"first", "second"}, writes)
	assert.Equal(t, 0, sched.pending())
}

func TestDebounceCooldownAfterTrailingFire(t *testing.T) {
	deb, _, sched := newTestDebouncer(time.Second)

	var writes []interface{}
	record := func(v interface{}) { writes = append(writes, v) }

	deb.Submit("k", "v1", record)
	deb.Submit("k", "v2", record)
	sched.fireAll()
	require.Equal(t, []interface{}{"v1", "v2"}, writes)

	// Still inside the cooldown opened by the trailing fire.
	deb.Submit("k", "v3", record)
	assert.Equal(t, []interface{}{"v1", "v2"}, writes)
	assert.Equal(t, 1, sched.pending())

	sched.fireAll()
	assert.Equal(t, []interface{}{"v1", "v2", "v3"}, writes)
}

func TestDebounceStopCancelsPending(t *testing.T) {
	deb, _, sched := newTestDebouncer(time.Second)

	var writes []interface{}
	record := func(v interface{}) { writes = append(writes, v) }

	deb.Submit("k", "v1", record)
	deb.Submit("k", "v2", record)
	deb.Stop()

	sched.fireAll()
	assert.Equal(t, []interface{}{"v1"}, writes, "pending trailing fire must not run after Stop")
}

package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FetchFunc produces one snapshot of a data domain.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller repeatedly fetches one domain's snapshot into a slot. The loop is a
// single goroutine, so at most one fetch is ever in flight: attempt N+1 only
// starts after attempt N's result has been applied or discarded. Fetch
// failures are non-fatal; the previous snapshot stays in place and the next
// attempt is still scheduled. Cancelling the context stops the loop before
// the next fetch fires, and a result that arrives after cancellation is
// discarded rather than written into a slot that may now belong to a
// different context key.
type Poller[T any] struct {
	name     string
	slot     *Slot[T]
	fetch    FetchFunc[T]
	interval time.Duration
	logger   *zap.Logger
	wake     chan struct{}
	done     chan struct{}
}

// NewPoller builds a poller writing into slot every interval.
func NewPoller[T any](name string, slot *Slot[T], fetch FetchFunc[T], interval time.Duration, logger *zap.Logger) *Poller[T] {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller[T]{
		name:     name,
		slot:     slot,
		fetch:    fetch,
		interval: interval,
		logger:   logger,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop. The first fetch happens immediately.
func (p *Poller[T]) Start(ctx context.Context) {
	go p.run(ctx)
}

// Wake short-circuits the current inter-attempt wait so the next fetch runs
// sooner than its nominal schedule. Safe to call from any goroutine; wakes
// are collapsed while a fetch is running.
func (p *Poller[T]) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Done is closed once the loop has fully stopped.
func (p *Poller[T]) Done() <-chan struct{} {
	return p.done
}

func (p *Poller[T]) run(ctx context.Context) {
	defer close(p.done)
	for {
		snapshot, err := p.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("poll fetch failed, keeping previous snapshot",
				zap.String("domain", p.name),
				zap.Error(err))
		} else if !p.slot.ReplaceIf(snapshot, func() bool { return ctx.Err() == nil }) {
			// Cancelled while the fetch was in flight. The cancellation
			// check shares the slot lock with Reset, so a result from a
			// stale context can never land after the slot was reset.
			return
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

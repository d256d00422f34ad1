package engine

import (
	"sync"
	"time"
)

// FireFunc performs the coalesced write for a debounced edit.
type FireFunc func(value interface{})

// CancelFunc stops a scheduled trailing fire.
type CancelFunc func()

// ScheduleFunc schedules fn after d. Injectable so tests can drive the
// debouncer without real timers.
type ScheduleFunc func(d time.Duration, fn func()) CancelFunc

// Debouncer coalesces rapid-fire edits into at most one outbound write per
// key per window. Leading edge: the first edit in a burst fires immediately
// and opens a cooldown window; edits arriving inside the window are coalesced
// into a single trailing fire carrying the latest value. Keys are independent
// of each other.
//
// Each key moves through a small state machine: idle (no recent fire),
// cooldown (a fire happened within the window) and pending (a trailing fire
// is scheduled).
type Debouncer struct {
	window   time.Duration
	now      func() time.Time
	schedule ScheduleFunc

	mu     sync.Mutex
	fields map[string]*fieldState
}

type fieldState struct {
	cooldownUntil time.Time
	pending       bool
	pendingValue  interface{}
	pendingFire   FireFunc
	cancel        CancelFunc
}

// NewDebouncer builds a debouncer with the given window, using the real
// clock and time.AfterFunc.
func NewDebouncer(window time.Duration) *Debouncer {
	return NewDebouncerWithClock(window, time.Now, func(d time.Duration, fn func()) CancelFunc {
		t := time.AfterFunc(d, fn)
		return func() { t.Stop() }
	})
}

// NewDebouncerWithClock builds a debouncer with an injected clock and
// scheduler.
func NewDebouncerWithClock(window time.Duration, now func() time.Time, schedule ScheduleFunc) *Debouncer {
	if window <= 0 {
		window = time.Second
	}
	return &Debouncer{
		window:   window,
		now:      now,
		schedule: schedule,
		fields:   make(map[string]*fieldState),
	}
}

// Submit records an edit for key. Either fires immediately (leading edge) or
// stores the value for the trailing fire, replacing any previously stored
// one. fire runs outside the debouncer's lock.
func (d *Debouncer) Submit(key string, value interface{}, fire FireFunc) {
	d.mu.Lock()
	st, ok := d.fields[key]
	if !ok {
		st = &fieldState{}
		d.fields[key] = st
	}

	now := d.now()
	if !st.pending && !now.Before(st.cooldownUntil) {
		st.cooldownUntil = now.Add(d.window)
		d.mu.Unlock()
		fire(value)
		return
	}

	st.pendingValue = value
	st.pendingFire = fire
	if !st.pending {
		st.pending = true
		st.cancel = d.schedule(st.cooldownUntil.Sub(now), func() { d.flush(key) })
	}
	d.mu.Unlock()
}

func (d *Debouncer) flush(key string) {
	d.mu.Lock()
	st, ok := d.fields[key]
	if !ok || !st.pending {
		d.mu.Unlock()
		return
	}
	value := st.pendingValue
	fire := st.pendingFire
	st.pending = false
	st.pendingValue = nil
	st.pendingFire = nil
	st.cancel = nil
	st.cooldownUntil = d.now().Add(d.window)
	d.mu.Unlock()

	fire(value)
}

// Stop cancels all scheduled trailing fires without running them.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, st := range d.fields {
		if st.pending && st.cancel != nil {
			st.cancel()
		}
		st.pending = false
		st.pendingValue = nil
		st.pendingFire = nil
		st.cancel = nil
	}
}

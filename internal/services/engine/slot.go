package engine

import "sync"

// Slot holds the latest snapshot of one data domain. Writes are whole-value
// replacements, so readers either see the previous snapshot or the new one,
// never a partially written mix. A slot starts unfetched; Reset returns it to
// that state when its context key no longer applies.
type Slot[T any] struct {
	mu    sync.RWMutex
	value T
	set   bool
	subs  []func()
}

// Get returns the current snapshot and whether one has been written since the
// slot was created or last reset.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set
}

// Replace atomically installs a new snapshot and notifies subscribers.
func (s *Slot[T]) Replace(v T) {
	s.mu.Lock()
	s.value = v
	s.set = true
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// ReplaceIf installs a new snapshot only if cond holds, evaluated under the
// write lock. A writer racing a Reset therefore either lands before the reset
// (and is cleared by it) or observes whatever state made the reset necessary
// and backs off; the check and the write cannot straddle it. Reports whether
// the snapshot was installed.
func (s *Slot[T]) ReplaceIf(v T, cond func() bool) bool {
	s.mu.Lock()
	if !cond() {
		s.mu.Unlock()
		return false
	}
	s.value = v
	s.set = true
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return true
}

// Mutate derives a replacement snapshot from the current one under the write
// lock. The transform must treat its input as immutable and return a fresh
// value. No-op when the slot is unfetched.
func (s *Slot[T]) Mutate(transform func(T) T) {
	s.mu.Lock()
	if !s.set {
		s.mu.Unlock()
		return
	}
	s.value = transform(s.value)
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Reset discards the snapshot, returning the slot to its unfetched state.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	var zero T
	s.value = zero
	s.set = false
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Subscribe registers a callback invoked after every replacement or reset.
// Callbacks run on the writer's goroutine and must not block.
func (s *Slot[T]) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

package rollupz

import "sync/atomic"

// Pool is a bounded, lock-free object pool used to recycle aggregators,
// aggregates, and values buffers between aggregation periods (§4.1).
//
// TryAdd and TryGet are wait-free up to the pool's capacity and lock-free
// under contention. Both may spuriously report "full" or "empty" under
// concurrent mutation; the fallback for a spurious failure is always
// allocation, never a retry loop, so callers never block on the pool.
type Pool[T any] struct {
	slots []atomic.Pointer[T]
}

// NewPool creates a Pool with the given capacity. Capacity must be in
// (0, maxPoolCapacity]; callers within this package always pass validated
// constants, so this panics rather than returning an error for a
// programmer mistake.
func NewPool[T any](capacity int) *Pool[T] {
	if capacity <= 0 || capacity > maxPoolCapacity {
		panic(&ConfigError{Reason: "pool capacity out of range"})
	}
	return &Pool[T]{slots: make([]atomic.Pointer[T], capacity)}
}

// TryAdd claims the first empty slot via CAS(nil -> x) and returns true.
// Returns false if every slot was occupied at scan time.
func (p *Pool[T]) TryAdd(x *T) bool {
	for i := range p.slots {
		if p.slots[i].CompareAndSwap(nil, x) {
			return true
		}
	}
	return false
}

// TryGet claims the first occupied slot via atomic swap with nil and
// returns it. Returns nil, false if every slot was empty at scan time.
func (p *Pool[T]) TryGet() (*T, bool) {
	for i := range p.slots {
		if v := p.slots[i].Swap(nil); v != nil {
			return v, true
		}
	}
	return nil, false
}

// Len scans the pool and counts occupied slots. Intended for tests and
// diagnostics only — the result may already be stale by the time it
// returns under concurrent mutation.
func (p *Pool[T]) Len() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].Load() != nil {
			n++
		}
	}
	return n
}

// Cap returns the pool's fixed capacity.
func (p *Pool[T]) Cap() int { return len(p.slots) }

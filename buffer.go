package rollupz

import "sync/atomic"

// valuesBuffer is a fixed-capacity, append-only, lock-free buffer (§3, §4.3)
// decoupling high-rate Collect calls from the more expensive fold into
// running aggregate state.
//
// Invariant: once locked via TryCountValuesAndLock, no further TryAdd can
// succeed until Reset.
type valuesBuffer[T any] struct {
	values       []T
	prevAddIndex atomic.Int64 // initially -1
	isLocked     atomic.Bool
}

func newValuesBuffer[T any](capacity int) *valuesBuffer[T] {
	if capacity <= 0 || capacity > maxBufferCapacity {
		panic(&ConfigError{Reason: "values buffer capacity out of range"})
	}
	b := &valuesBuffer[T]{values: make([]T, capacity)}
	b.prevAddIndex.Store(-1)
	return b
}

func (b *valuesBuffer[T]) capacity() int { return len(b.values) }

// TryAdd appends v. Returns false once the buffer is full or locked; the
// producer never retries internally, bounding its wait time.
func (b *valuesBuffer[T]) TryAdd(v T) bool {
	idx := b.prevAddIndex.Add(1)
	c := int64(len(b.values))
	if idx < c {
		b.values[idx] = v
		return true
	}
	// Clamp at capacity to avoid integer overflow on a hot path that keeps
	// calling TryAdd against an already-full buffer.
	if idx > c {
		b.prevAddIndex.Store(c)
	}
	return false
}

// TryCountValuesAndLock locks the buffer against further appends and
// reports how many values were successfully stored. Returns false (with
// count 0) if the buffer was already locked, so it succeeds at most once
// per buffer lifetime before Reset.
func (b *valuesBuffer[T]) TryCountValuesAndLock() (count int, ok bool) {
	if b.isLocked.Swap(true) {
		return 0, false
	}
	c := int64(len(b.values))
	prev := b.prevAddIndex.Swap(c)
	if prev+1 > c {
		return len(b.values), true
	}
	if prev < -1 {
		return 0, true
	}
	return int(prev + 1), true
}

// Reset clears the buffer for reuse. No producer may observe a half-reset
// buffer: the buffer is locked for the duration of the clear.
func (b *valuesBuffer[T]) Reset() {
	b.isLocked.Store(true)
	b.prevAddIndex.Store(int64(len(b.values)))
	var zero T
	for i := range b.values {
		b.values[i] = zero
	}
	b.prevAddIndex.Store(-1)
	b.isLocked.Store(false)
}

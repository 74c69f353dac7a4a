package rollupz

import (
	"context"
	"sync/atomic"
)

// rwLatch is a many-reader / single-writer coordinator with an async writer
// wait (§4.2). It gates per-metric buffer flushes against the
// period-boundary flush.
//
// Reader entry increments a counter; the first reader to enter acquires an
// underlying binary semaphore (a capacity-1 channel, the idiomatic Go
// substitute for a named binary semaphore), and the last reader to leave
// releases it. A writer acquires the semaphore directly. When readers
// overlap, only the first to enter and the last to leave touch the
// channel; the others pay only an interlocked increment and decrement.
type rwLatch struct {
	readers atomic.Int32
	sem     chan struct{} // capacity 1; held means "writer or first reader owns it"
}

func newRWLatch() *rwLatch {
	l := &rwLatch{sem: make(chan struct{}, 1)}
	l.sem <- struct{}{} // starts released
	return l
}

// EnterReader registers a reader, acquiring the semaphore if this is the
// first concurrent reader.
func (l *rwLatch) EnterReader() {
	if l.readers.Add(1) == 1 {
		<-l.sem
	}
}

// ExitReader deregisters a reader, releasing the semaphore if this was the
// last concurrent reader.
func (l *rwLatch) ExitReader() {
	if l.readers.Add(-1) == 0 {
		l.sem <- struct{}{}
	}
}

// EnterWriter blocks until all readers have exited and no other writer
// holds the latch.
func (l *rwLatch) EnterWriter() {
	<-l.sem
}

// EnterWriterCtx is the context-bounded form of EnterWriter, the Go
// substitute for an optional, awaitable timeout on writer acquisition.
func (l *rwLatch) EnterWriterCtx(ctx context.Context) error {
	select {
	case <-l.sem:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExitWriter releases the latch held by EnterWriter/EnterWriterCtx.
func (l *rwLatch) ExitWriter() {
	l.sem <- struct{}{}
}

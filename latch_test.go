package rollupz

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRWLatchWriterExcludesReaders(t *testing.T) {
	l := newRWLatch()

	l.EnterWriter()
	entered := make(chan struct{})
	go func() {
		l.EnterReader()
		close(entered)
		l.ExitReader()
	}()

	select {
	case <-entered:
		t.Fatal("reader entered while writer held the latch")
	case <-time.After(20 * time.Millisecond):
	}

	l.ExitWriter()
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("reader never entered after writer released the latch")
	}
}

func TestRWLatchManyReadersConcurrent(t *testing.T) {
	l := newRWLatch()
	const n = 16

	var wg sync.WaitGroup
	var active int32
	var mu sync.Mutex
	maxSeen := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.EnterReader()
			defer l.ExitReader()

			mu.Lock()
			active++
			if int(active) > maxSeen {
				maxSeen = int(active)
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen < 2 {
		t.Errorf("expected multiple readers concurrently active, max observed %d", maxSeen)
	}
}

func TestRWLatchEnterWriterCtxCancel(t *testing.T) {
	l := newRWLatch()
	l.EnterWriter() // hold it so the next acquire blocks

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.EnterWriterCtx(ctx); err == nil {
		t.Error("expected EnterWriterCtx to time out while the latch is held")
	}
}

package rollupz

import (
	"sync"
	"sync/atomic"
	"time"
)

// aggregator is the capability interface each concrete kind implements
// directly, collapsing the source's inheritance chain
// (Aggregator -> BufferedAggregator -> {Count, Measurement}) into a flat
// set of methods per the Design Notes.
type aggregator interface {
	// Collect absorbs one sample. Returns false if the sample is rejected
	// (non-integral for Count) or the period has already finished.
	Collect(v float64) bool
	// CanCollect is a fast, state-independent predictive check.
	CanCollect(v float64) bool
	// StartAggregationPeriod begins a fresh period window.
	StartAggregationPeriod(tsRounded time.Time, tickNow int64)
	// FinishAggregationPeriod finalizes the period and returns its Aggregate.
	FinishAggregationPeriod(tsRounded time.Time, tickNow int64) Aggregate
	// recycle zeroes running state so the aggregator can re-enter its
	// owning Metric's spare-aggregator pool. The caller must have already
	// observed !isActive.
	recycle()
	// isActive reports whether the aggregator is still accepting samples.
	isActive() bool
}

// bufferedCore implements the swap-and-flush buffered aggregation algorithm
// (§4.4) shared by any aggregator kind that batches samples through a
// values buffer rather than folding each one directly into running state.
// The owning kind supplies onFlush as the fold function invoked under the
// brief _updateAggregateLock critical section described in §4.4 and §4.6.
type bufferedCore struct {
	currentBuf   atomic.Pointer[valuesBuffer[float64]]
	spareBufs    *Pool[valuesBuffer[float64]]
	latch        *rwLatch
	capacity     int
	active       atomic.Bool
	synchronized bool
	updateMu     sync.Mutex // the "_updateAggregateLock" from §4.4

	onFlush func(values []float64)
}

func newBufferedCore(capacity int, synchronized bool, onFlush func([]float64)) *bufferedCore {
	c := &bufferedCore{
		capacity:     capacity,
		synchronized: synchronized,
		latch:        newRWLatch(),
		spareBufs:    NewPool[valuesBuffer[float64]](spareBufferPoolCapacity),
		onFlush:      onFlush,
	}
	c.currentBuf.Store(newValuesBuffer[float64](capacity))
	return c
}

func (c *bufferedCore) freshBuffer() *valuesBuffer[float64] {
	if b, ok := c.spareBufs.TryGet(); ok {
		b.Reset()
		return b
	}
	return newValuesBuffer[float64](c.capacity)
}

func (c *bufferedCore) recycleBuffer(b *valuesBuffer[float64]) {
	c.spareBufs.TryAdd(b) // spurious full -> drop; GC reclaims
}

// flush calls TryCountValuesAndLock and, if any value was stored, folds the
// buffer's contents into running state under updateMu.
func (c *bufferedCore) flush(buf *valuesBuffer[float64]) {
	count, locked := buf.TryCountValuesAndLock()
	if !locked || count == 0 {
		return
	}
	c.updateMu.Lock()
	c.onFlush(buf.values[:count])
	c.updateMu.Unlock()
}

// collect implements §4.4's Collect(v) loop, covering both the
// synchronized and unsynchronized modes.
func (c *bufferedCore) collect(v float64) bool {
	attempt := func() bool {
		for {
			buf := c.currentBuf.Load()
			if buf.TryAdd(v) {
				return true
			}
			if !c.active.Load() {
				return false
			}
			fresh := c.freshBuffer()
			fresh.TryAdd(v) // must succeed on a fresh buffer
			if c.currentBuf.CompareAndSwap(buf, fresh) {
				c.flush(buf)
				c.recycleBuffer(buf)
				return true
			}
			c.recycleBuffer(fresh)
		}
	}

	if !c.synchronized {
		if !c.active.Load() {
			return false
		}
		return attempt()
	}

	c.latch.EnterReader()
	defer c.latch.ExitReader()
	if !c.active.Load() {
		return false
	}
	return attempt()
}

// startPeriod installs a fresh buffer and marks the core active.
func (c *bufferedCore) startPeriod() {
	c.currentBuf.Store(c.freshBuffer())
	c.active.Store(true)
}

// finishPeriod marks the core inactive and drains whatever remains in the
// current buffer (FlushBuffersOnAggregationFinish, §4.4).
func (c *bufferedCore) finishPeriod() {
	c.active.Store(false)
	c.latch.EnterWriter()
	defer c.latch.ExitWriter()
	for {
		buf := c.currentBuf.Load()
		fresh := c.freshBuffer()
		if !c.currentBuf.CompareAndSwap(buf, fresh) {
			c.recycleBuffer(fresh)
			continue
		}
		c.flush(buf)
		c.recycleBuffer(buf)
		return
	}
}

func (c *bufferedCore) isActive() bool { return c.active.Load() }

package rollupz

import (
	"math"
	"sync/atomic"
	"time"
)

// countAggregator accumulates a running integer total. It needs no values
// buffer: each accepted sample is already a single atomic add (§4.5).
type countAggregator struct {
	sum    atomic.Int64
	active atomic.Bool

	periodStart   time.Time
	periodEnd     time.Time
	periodStartMs int64
	periodEndMs   int64

	spareAggregates *Pool[countAggregate]
	metric          *Metric
}

func newCountAggregator(m *Metric) aggregator {
	return &countAggregator{
		spareAggregates: NewPool[countAggregate](spareAggregatePoolCapacity),
		metric:          m,
	}
}

// asIntegral reports whether v is exactly representable as an int64 with no
// fractional part, per §4.5's "v == (int64)v" contract.
func asIntegral(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	iv := int64(v)
	if float64(iv) != v {
		return 0, false
	}
	return iv, true
}

// CanCollect rejects non-integral doubles; any integral value is accepted.
func (c *countAggregator) CanCollect(v float64) bool {
	_, ok := asIntegral(v)
	return ok
}

// Collect accepts v only if it is integral and the period is still active.
// A non-integral v is a dropped sample by contract, not an error.
func (c *countAggregator) Collect(v float64) bool {
	iv, ok := asIntegral(v)
	if !ok {
		return false
	}
	if !c.active.Load() {
		return false
	}
	c.sum.Add(iv)
	return true
}

func (c *countAggregator) StartAggregationPeriod(tsRounded time.Time, tickNow int64) {
	c.sum.Store(0)
	c.periodStart = tsRounded
	c.periodStartMs = tickNow
	c.active.Store(true)
}

func (c *countAggregator) FinishAggregationPeriod(tsRounded time.Time, tickNow int64) Aggregate {
	c.active.Store(false)
	c.periodEnd = tsRounded
	c.periodEndMs = tickNow

	agg, ok := c.spareAggregates.TryGet()
	if !ok {
		agg = &countAggregate{}
	}
	agg.sum = c.sum.Load()
	agg.periodStart = c.periodStart
	agg.periodEnd = c.periodEnd
	agg.periodStartMs = c.periodStartMs
	agg.periodEndMs = c.periodEndMs
	agg.owner = c
	return agg
}

func (c *countAggregator) recycle() {
	c.sum.Store(0)
}

func (c *countAggregator) isActive() bool { return c.active.Load() }

// countAggregate is the finalized per-period snapshot of a Count metric.
type countAggregate struct {
	sum           int64
	periodStart   time.Time
	periodEnd     time.Time
	periodStartMs int64
	periodEndMs   int64
	owner         *countAggregator
}

func (a *countAggregate) Kind() MetricKind           { return Count }
func (a *countAggregate) PeriodStart() time.Time     { return a.periodStart }
func (a *countAggregate) PeriodEnd() time.Time       { return a.periodEnd }
func (a *countAggregate) PeriodStartPreciseMs() int64 { return a.periodStartMs }
func (a *countAggregate) PeriodEndPreciseMs() int64   { return a.periodEndMs }
func (a *countAggregate) Sum() int64                  { return a.sum }

// ReinitializeAndReturnToOwner zeroes the aggregate and returns it to its
// owning aggregator's spare-aggregate pool. Callers (submission sinks) must
// call this exactly once per aggregate.
func (a *countAggregate) ReinitializeAndReturnToOwner() {
	owner := a.owner
	a.sum = 0
	a.periodStart = time.Time{}
	a.periodEnd = time.Time{}
	a.periodStartMs = 0
	a.periodEndMs = 0
	a.owner = nil
	if owner != nil {
		owner.spareAggregates.TryAdd(a)
	}
}

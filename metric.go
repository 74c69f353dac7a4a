package rollupz

import (
	"sync/atomic"
	"time"
)

// Metric owns exactly one current aggregator and a bounded pool of spare
// aggregators (§3). It carries its MetricIdentity, MetricKind, and a
// back-reference to the owning CollectionManager — at most one manager at
// a time (§3's "at most one" ownership rule).
type Metric struct {
	identity MetricIdentity
	kind     MetricKind

	current atomic.Pointer[aggregator]

	spareAggregators *Pool[aggregator]

	owner atomic.Pointer[CollectionManager]
}

func newMetric(id MetricIdentity, kind MetricKind) *Metric {
	m := &Metric{
		identity:         id,
		kind:             kind,
		spareAggregators: NewPool[aggregator](spareAggregatorPoolCapacity),
	}
	first := kind.newAggregator(m)
	// A metric must accept samples as soon as it is registered, not only
	// after the driver's first cycle boundary installs a "real" period —
	// so the initial aggregator starts its period immediately, with a
	// zero-value start timestamp the first real cycle boundary overwrites.
	first.StartAggregationPeriod(time.Time{}, 0)
	m.current.Store(&first)
	return m
}

// Identity returns the metric's canonical identity.
func (m *Metric) Identity() MetricIdentity { return m.identity }

// Kind returns the metric's aggregation kind.
func (m *Metric) Kind() MetricKind { return m.kind }

// Collect routes v to the current aggregator. Returns false if the sample
// is rejected by the kind (e.g. a non-integral double for Count) or if the
// period boundary finalized the aggregator before this call was applied.
func (m *Metric) Collect(v float64) bool {
	agg := *m.current.Load()
	return agg.Collect(v)
}

// CanCollect is a fast, state-independent predictive check: would Collect(v)
// be accepted by this metric's kind.
func (m *Metric) CanCollect(v float64) bool {
	agg := *m.current.Load()
	return agg.CanCollect(v)
}

// StartNextAggregationPeriod installs a fresh aggregator as current and
// returns the aggregator it replaced, per §4.4's period-boundary protocol.
func (m *Metric) StartNextAggregationPeriod(tsRounded time.Time, tickNow int64) aggregator {
	fresh := m.acquireAggregator()
	fresh.StartAggregationPeriod(tsRounded, tickNow)
	prev := m.current.Swap(&fresh)
	return *prev
}

// acquireAggregator pulls a spare aggregator from the pool or allocates one
// via the kind's factory.
func (m *Metric) acquireAggregator() aggregator {
	if ptr, ok := m.spareAggregators.TryGet(); ok {
		return *ptr
	}
	return m.kind.newAggregator(m)
}

// recycleAggregator returns a finished, inactive aggregator to the spare
// pool after zeroing its running state. Per the resolved Open Question
// (spec.md §9), an aggregator that is still active is never accepted.
func (m *Metric) recycleAggregator(agg aggregator) {
	if agg.isActive() {
		return
	}
	agg.recycle()
	m.spareAggregators.TryAdd(&agg)
}

// trySetOwner attaches this metric to a manager. Returns a MisuseError if
// the metric is already owned by a different manager.
func (m *Metric) trySetOwner(mgr *CollectionManager) error {
	for {
		cur := m.owner.Load()
		if cur == mgr {
			return nil
		}
		if cur != nil {
			return &MisuseError{Reason: "metric " + m.identity.String() + " already owned by a different manager"}
		}
		if m.owner.CompareAndSwap(nil, mgr) {
			return nil
		}
	}
}

// clearOwner detaches this metric from its manager, e.g. after TryRemoveMetric.
func (m *Metric) clearOwner(mgr *CollectionManager) {
	m.owner.CompareAndSwap(mgr, nil)
}

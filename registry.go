package rollupz

import "sync/atomic"

// metricsSet is an immutable snapshot of live metrics: an ordered list and
// an identity->metric map that share entries (§3). Mutations never touch an
// existing snapshot; they produce a new one.
type metricsSet struct {
	order []*Metric
	byID  map[string]*Metric
}

func emptyMetricsSet() *metricsSet {
	return &metricsSet{byID: make(map[string]*Metric)}
}

// with returns a new snapshot containing every entry of s plus m.
func (s *metricsSet) with(m *Metric) *metricsSet {
	order := make([]*Metric, len(s.order)+1)
	copy(order, s.order)
	order[len(s.order)] = m

	byID := make(map[string]*Metric, len(s.byID)+1)
	for k, v := range s.byID {
		byID[k] = v
	}
	byID[m.identity.String()] = m

	return &metricsSet{order: order, byID: byID}
}

// without returns a new snapshot with id's entry removed, or s unchanged if
// id was not present.
func (s *metricsSet) without(id MetricIdentity) *metricsSet {
	key := id.String()
	if _, ok := s.byID[key]; !ok {
		return s
	}

	order := make([]*Metric, 0, len(s.order))
	for _, m := range s.order {
		if m.identity.String() != key {
			order = append(order, m)
		}
	}

	byID := make(map[string]*Metric, len(s.byID))
	for k, v := range s.byID {
		if k != key {
			byID[k] = v
		}
	}

	return &metricsSet{order: order, byID: byID}
}

// CollectionManager holds an immutable MetricsSet and drives swap-and-submit
// cycles across it. Registration and removal are orders of magnitude rarer
// than lookups, so mutations go through copy-on-write CAS while reads are a
// single pointer load with no locks (§4.7).
type CollectionManager struct {
	metrics atomic.Pointer[metricsSet]
	sink    atomic.Pointer[SubmissionSink]
}

// NewCollectionManager creates an empty CollectionManager.
func NewCollectionManager() *CollectionManager {
	mgr := &CollectionManager{}
	mgr.metrics.Store(emptyMetricsSet())
	return mgr
}

// GetOrAddMetric returns the existing metric for id, or constructs, attaches,
// and registers a new one of the given kind. Returns a MisuseError if the
// identity is already owned by a different manager (which cannot happen
// through this call alone, but guards against a Metric value reused across
// managers by calling code) and a ConfigError if id fails validation (§6).
func (m *CollectionManager) GetOrAddMetric(id MetricIdentity, kind MetricKind) (*Metric, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	if !kind.valid() {
		return nil, &MisuseError{Reason: "unknown metric kind " + kind.String() + " for identity " + id.String()}
	}

	for {
		snap := m.metrics.Load()
		if existing, ok := snap.byID[id.String()]; ok {
			return existing, nil
		}

		metric := newMetric(id, kind)
		if err := metric.trySetOwner(m); err != nil {
			return nil, err
		}

		next := snap.with(metric)
		if m.metrics.CompareAndSwap(snap, next) {
			return metric, nil
		}
		metric.clearOwner(m)
	}
}

// Count is a convenience wrapper over GetOrAddMetric for the Count kind.
func (m *CollectionManager) Count(name string, tags ...MetricTag) (*Metric, error) {
	return m.GetOrAddMetric(NewIdentity(name, tags...), Count)
}

// Measurement is a convenience wrapper over GetOrAddMetric for the
// Measurement kind.
func (m *CollectionManager) Measurement(name string, tags ...MetricTag) (*Metric, error) {
	return m.GetOrAddMetric(NewIdentity(name, tags...), Measurement)
}

// TryGetMetric looks up id in the current snapshot without creating it.
func (m *CollectionManager) TryGetMetric(id MetricIdentity) (*Metric, bool) {
	snap := m.metrics.Load()
	metric, ok := snap.byID[id.String()]
	return metric, ok
}

// TryRemoveMetric detaches and removes id from the registry. Returns false
// if id was not present.
func (m *CollectionManager) TryRemoveMetric(id MetricIdentity) bool {
	for {
		snap := m.metrics.Load()
		existing, ok := snap.byID[id.String()]
		if !ok {
			return false
		}

		next := snap.without(id)
		if m.metrics.CompareAndSwap(snap, next) {
			existing.clearOwner(m)
			return true
		}
	}
}

// GetMetrics returns every metric in the current snapshot, in registration
// order. The returned slice is a copy; mutating it does not affect the
// registry.
func (m *CollectionManager) GetMetrics() []*Metric {
	snap := m.metrics.Load()
	out := make([]*Metric, len(snap.order))
	copy(out, snap.order)
	return out
}

// GetMetricsByName scans the current snapshot for every metric with the
// given name — names are not uniquely indexed, since the same name may
// carry many tag-distinct identities (§4.7). Returns an empty slice, never
// nil, when no metric matches.
func (m *CollectionManager) GetMetricsByName(name string) []*Metric {
	snap := m.metrics.Load()
	out := make([]*Metric, 0)
	for _, metric := range snap.order {
		if metric.identity.Name() == name {
			out = append(out, metric)
		}
	}
	return out
}

// SetSubmissionManager installs the sink that receives aggregate blocks at
// every cycle boundary. A nil sink disables submission; the manager still
// swaps, finalizes and recycles aggregators every cycle, and the finalized
// aggregates are dropped without being returned to their pools.
func (m *CollectionManager) SetSubmissionManager(sink SubmissionSink) {
	if sink == nil {
		m.sink.Store(nil)
		return
	}
	boxed := sink
	m.sink.Store(&boxed)
}

func (m *CollectionManager) submissionSink() SubmissionSink {
	if ptr := m.sink.Load(); ptr != nil {
		return *ptr
	}
	return nil
}

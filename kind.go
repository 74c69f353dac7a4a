package rollupz

// MetricKind is a closed variant set identifying which concrete aggregation
// math a Metric uses. Each kind is a factory: given the owning Metric, it
// returns a fresh aggregator of the matching concrete type (§3).
type MetricKind int

const (
	// Count aggregates a running integer total, fed by integers or
	// integral-valued floats (§4.5).
	Count MetricKind = iota + 1
	// Measurement aggregates count/sum/min/max/stddev over arbitrary
	// non-NaN floats via a buffered intake path (§4.6).
	Measurement
)

// String renders the kind's name, used in error messages and tests.
func (k MetricKind) String() string {
	switch k {
	case Count:
		return "Count"
	case Measurement:
		return "Measurement"
	default:
		return "Unknown"
	}
}

// valid reports whether k is a member of the closed variant set. Callers
// that construct a Metric from a caller-supplied kind must check this before
// ever reaching newAggregator — a kind outside the set is a MisuseError at
// registration time, never at the factory call site.
func (k MetricKind) valid() bool {
	switch k {
	case Count, Measurement:
		return true
	default:
		return false
	}
}

// newAggregator is the kind's factory, invoked by Metric whenever a fresh
// aggregator instance is needed (no spare available in the pool). Only
// called with a kind already checked by valid(), so the default case here
// is unreachable in practice; it returns nil rather than panicking so a
// caller that somehow skips the valid() check fails safe instead of
// crashing deep in aggregator plumbing.
func (k MetricKind) newAggregator(m *Metric) aggregator {
	switch k {
	case Count:
		return newCountAggregator(m)
	case Measurement:
		return newMeasurementAggregator(m)
	default:
		return nil
	}
}

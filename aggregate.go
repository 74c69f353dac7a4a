package rollupz

import (
	"math"
	"time"
)

// Aggregate is an immutable-after-finalization snapshot produced at the end
// of an aggregation period and handed to the SubmissionSink (§3, §6).
type Aggregate interface {
	// Kind identifies the concrete variant: Count or Measurement.
	Kind() MetricKind
	// PeriodStart and PeriodEnd are rounded instants identifying the period.
	PeriodStart() time.Time
	PeriodEnd() time.Time
	// PeriodStartPreciseMs and PeriodEndPreciseMs are the millisecond tick
	// readings passed to RunCycle, for computing the elapsed duration. The
	// driver supplies its clock's Unix milliseconds, a wall-clock reading
	// that is not monotonic.
	PeriodStartPreciseMs() int64
	PeriodEndPreciseMs() int64
	// ReinitializeAndReturnToOwner zeroes the aggregate and returns it to
	// its owning aggregator's spare-aggregate pool. The sink must call this
	// exactly once per aggregate after it is no longer needed.
	ReinitializeAndReturnToOwner()
}

// CountAggregate is the finalized snapshot of a Count metric's period.
type CountAggregate interface {
	Aggregate
	Sum() int64
}

// MeasurementAggregate is the finalized snapshot of a Measurement metric's
// period.
type MeasurementAggregate interface {
	Aggregate
	Count() int32
	Sum() float64
	Min() float64
	Max() float64
	StdDev() float64
}

// FinishedDurationMs returns PeriodEndPreciseMs - PeriodStartPreciseMs.
// Both readings are int64 milliseconds, so the difference does not wrap.
func FinishedDurationMs(a Aggregate) int64 {
	return a.PeriodEndPreciseMs() - a.PeriodStartPreciseMs()
}

const maxConcreteFloat = math.MaxFloat64

// ensureConcreteValue replaces +/-Inf with +/-MaxFloat64 and NaN with 0, per
// §4.4 step 4 and §4.6's EnsureConcreteValue guard, so every field the sink
// reads off a finalized aggregate is finite.
func ensureConcreteValue(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case math.IsInf(x, 1):
		return maxConcreteFloat
	case math.IsInf(x, -1):
		return -maxConcreteFloat
	default:
		return x
	}
}

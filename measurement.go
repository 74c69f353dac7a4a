package rollupz

import (
	"math"
	"time"
)

// measurementRunning holds the running aggregate state for a Measurement
// period. Flushes mutate it only under bufferedCore.updateMu, so none of
// its fields need to be atomics themselves (§4.6); StartAggregationPeriod
// and recycle reset it without the lock.
type measurementRunning struct {
	count  int64
	sum    float64
	min    float64
	max    float64
	sumSq  float64
	stdDev float64
}

// measurementAggregator accumulates count/sum/min/max/stddev over a buffered
// stream of samples (§4.6). It uses the unsynchronized buffered-intake mode
// and a 500-sample buffer.
type measurementAggregator struct {
	core    *bufferedCore
	running measurementRunning

	periodStart   time.Time
	periodEnd     time.Time
	periodStartMs int64
	periodEndMs   int64

	spareAggregates *Pool[measurementAggregate]
	metric          *Metric
}

func newMeasurementAggregator(m *Metric) aggregator {
	a := &measurementAggregator{
		spareAggregates: NewPool[measurementAggregate](spareAggregatePoolCapacity),
		metric:          m,
	}
	a.core = newBufferedCore(measurementBufferCapacity, false, a.onFlushBuffer)
	return a
}

// CanCollect always accepts for Measurement; NaN is handled (excluded) at
// fold time rather than rejected at intake.
func (a *measurementAggregator) CanCollect(float64) bool { return true }

func (a *measurementAggregator) Collect(v float64) bool {
	return a.core.collect(v)
}

func (a *measurementAggregator) StartAggregationPeriod(tsRounded time.Time, tickNow int64) {
	a.running = measurementRunning{min: math.Inf(1), max: math.Inf(-1)}
	a.periodStart = tsRounded
	a.periodStartMs = tickNow
	a.core.startPeriod()
}

func (a *measurementAggregator) FinishAggregationPeriod(tsRounded time.Time, tickNow int64) Aggregate {
	a.core.finishPeriod()
	a.periodEnd = tsRounded
	a.periodEndMs = tickNow

	a.core.updateMu.Lock()
	sum := ensureConcreteValue(a.running.sum)
	min := ensureConcreteValue(a.running.min)
	max := ensureConcreteValue(a.running.max)
	stdDev := ensureConcreteValue(a.running.stdDev)
	count := a.running.count
	a.core.updateMu.Unlock()

	agg, ok := a.spareAggregates.TryGet()
	if !ok {
		agg = &measurementAggregate{}
	}
	agg.count = int32(count)
	agg.sum = sum
	agg.min = min
	agg.max = max
	agg.stdDev = stdDev
	agg.periodStart = a.periodStart
	agg.periodEnd = a.periodEnd
	agg.periodStartMs = a.periodStartMs
	agg.periodEndMs = a.periodEndMs
	agg.owner = a
	return agg
}

func (a *measurementAggregator) recycle() {
	a.running = measurementRunning{}
}

func (a *measurementAggregator) isActive() bool { return a.core.isActive() }

// onFlushBuffer folds a flushed buffer's contents into running state under
// bufferedCore.updateMu (§4.6's OnFlushBuffer).
func (a *measurementAggregator) onFlushBuffer(values []float64) {
	if len(values) == 0 {
		return
	}

	// First pass, run while the caller (bufferedCore.flush) already holds
	// updateMu for the whole fold: accumulate local count/sum/sumSq
	// skipping NaN. min/max
	// are seeded from values[0] even if it is NaN — a NaN seed makes every
	// subsequent comparison false (IEEE 754), so this buffer's min/max
	// contribution is then discarded by the merge comparisons below. This
	// mirrors the documented edge behavior rather than special-casing it.
	bufMin := values[0]
	bufMax := values[0]
	var bufCount int64
	var bufSum, bufSumSq float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		bufCount++
		bufSum += v
		bufSumSq += v * v
		if v < bufMin {
			bufMin = v
		}
		if v > bufMax {
			bufMax = v
		}
	}

	a.running.count += bufCount
	a.running.sum += bufSum
	a.running.sumSq += bufSumSq
	if bufMin < a.running.min {
		a.running.min = bufMin
	}
	if bufMax > a.running.max {
		a.running.max = bufMax
	}
	a.recomputeStdDev()
}

// recomputeStdDev recomputes the population standard deviation from the
// running sum/sumSq/count, per §4.6. Must be called under updateMu.
func (a *measurementAggregator) recomputeStdDev() {
	r := &a.running
	switch {
	case r.count == 0:
		r.stdDev = 0
	case math.IsInf(r.sumSq, 0) || math.IsInf(r.sum, 0):
		r.stdDev = math.NaN()
	default:
		mean := r.sum / float64(r.count)
		variance := r.sumSq/float64(r.count) - mean*mean
		if variance < 0 {
			variance = 0 // float error can produce a tiny negative variance
		}
		r.stdDev = math.Sqrt(variance)
	}
}

// measurementAggregate is the finalized per-period snapshot of a
// Measurement metric.
type measurementAggregate struct {
	count  int32
	sum    float64
	min    float64
	max    float64
	stdDev float64

	periodStart   time.Time
	periodEnd     time.Time
	periodStartMs int64
	periodEndMs   int64

	owner *measurementAggregator
}

func (a *measurementAggregate) Kind() MetricKind            { return Measurement }
func (a *measurementAggregate) PeriodStart() time.Time      { return a.periodStart }
func (a *measurementAggregate) PeriodEnd() time.Time        { return a.periodEnd }
func (a *measurementAggregate) PeriodStartPreciseMs() int64 { return a.periodStartMs }
func (a *measurementAggregate) PeriodEndPreciseMs() int64   { return a.periodEndMs }
func (a *measurementAggregate) Count() int32                { return a.count }
func (a *measurementAggregate) Sum() float64                { return a.sum }
func (a *measurementAggregate) Min() float64                { return a.min }
func (a *measurementAggregate) Max() float64                { return a.max }
func (a *measurementAggregate) StdDev() float64              { return a.stdDev }

// ReinitializeAndReturnToOwner zeroes the aggregate and returns it to its
// owning aggregator's spare-aggregate pool.
func (a *measurementAggregate) ReinitializeAndReturnToOwner() {
	owner := a.owner
	*a = measurementAggregate{}
	if owner != nil {
		owner.spareAggregates.TryAdd(a)
	}
}

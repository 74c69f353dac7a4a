package rollupz

import "time"

// RunCycle performs one swap-and-submit boundary across every registered
// metric (§4.8), given the cycle's rounded start timestamp and a precise
// tick reading taken once for the whole cycle.
//
// Steps, matching §4.8 exactly:
//  1. Snapshot the metrics set.
//  2. Walk it in blocks of fetchSubmitBlockSize, keeping every allocation
//     below that size so none of them individually stress a large-object
//     boundary.
//  3. (tickNow is supplied by the caller, read once for the whole cycle.)
//  4. For each metric, swap in a fresh aggregator and record the previous
//     one — kept minimal to bound timestamp divergence across metrics.
//  5. Finalize each previous aggregator into an Aggregate.
//  6. Recycle each finished aggregator back to its metric's spare pool.
//  7. Hand each block of aggregates to the installed sink, in order.
func (m *CollectionManager) RunCycle(tsRounded time.Time, tickNow int64) {
	metrics := m.GetMetrics()
	if len(metrics) == 0 {
		return
	}
	sink := m.submissionSink()

	for start := 0; start < len(metrics); start += fetchSubmitBlockSize {
		end := start + fetchSubmitBlockSize
		if end > len(metrics) {
			end = len(metrics)
		}
		slice := metrics[start:end]

		prevAggregators := make([]aggregator, len(slice))
		for i, metric := range slice {
			prevAggregators[i] = metric.StartNextAggregationPeriod(tsRounded, tickNow)
		}

		aggregates := make([]Aggregate, len(slice))
		for i, metric := range slice {
			prev := prevAggregators[i]
			aggregates[i] = prev.FinishAggregationPeriod(tsRounded, tickNow)
			metric.recycleAggregator(prev)
			prevAggregators[i] = nil // release early
		}

		if sink != nil {
			sink.SubmitMetrics(aggregates)
		}
	}
}

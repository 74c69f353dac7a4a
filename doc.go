// Package rollupz is an in-process metrics aggregation library.
//
// # Core Philosophy
//
// Application code registers named metrics through a CollectionManager,
// records numeric samples on hot paths via Metric.Collect, and a dedicated
// AggregationCycleDriver periodically rolls samples into per-period
// Aggregates that are handed to a pluggable SubmissionSink. The hard
// engineering lives in the data path that absorbs high-frequency concurrent
// Collect calls with minimal contention, the periodic boundary at which
// per-metric aggregators are atomically swapped for fresh ones, and the
// object-pool lifecycle that keeps allocation off the steady-state path.
//
// # Metric Identity
//
// Metrics are addressed by a MetricIdentity: a name plus an optional set of
// MetricTag pairs, canonicalized into a single string at construction:
//
//	id := rollupz.NewIdentity("http.requests", rollupz.Tag("route", "PutItem"))
//	metric, err := manager.GetOrAddMetric(id, rollupz.Measurement)
//
// # Two Metric Kinds
//
// rollupz implements a closed set of two aggregation kinds:
//
// Count: an integer running total, fed with either integers or
// integral-valued floats:
//
//	counter, _ := manager.Count("errors.total", rollupz.Tag("scope", "app"))
//	counter.Collect(1)
//
// Measurement: a running count/sum/min/max/stddev over arbitrary floats:
//
//	latency, _ := manager.Measurement("api.latency", rollupz.Tag("route", "PutItem"))
//	latency.Collect(12.5)
//
// # Collection Manager
//
// The CollectionManager owns an immutable snapshot of live metrics and
// drives one swap-and-submit cycle per aggregation period:
//
//	manager := rollupz.NewCollectionManager()
//	manager.SetSubmissionManager(mySink)
//
//	driver, _ := rollupz.NewAggregationCycleDriver(rollupz.CollectionConfig{
//	    AggregationPeriodLengthSeconds: 10,
//	}, manager)
//	driver.Start()
//	defer driver.Shutdown(context.Background())
//
// # Thread-Safety Guarantees
//
// All metric operations are thread-safe and designed for high-concurrency
// producers:
//
//   - Collect uses lock-free buffer append with a deferred, briefly-locked
//     fold into running aggregate state.
//   - The metric registry is an immutable-snapshot, copy-on-write structure:
//     lookups are a single pointer load, no locks.
//   - Exactly one dedicated goroutine runs the aggregation cycle; it never
//     calls Collect and never shares stacks with producers.
//
// # Minimal Dependencies
//
// rollupz depends on the standard library plus github.com/zoobzio/clockz
// for injectable time, so the cycle driver and every timestamped aggregate
// field can be tested deterministically with a FakeClock.
package rollupz

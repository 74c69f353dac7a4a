package testing

import (
	"sync"
	"testing"

	"github.com/zoobzio/rollupz"
)

// LoadPlan configures concurrent sample generation against a single Metric
// for stress and race-detector tests. Samples are spread across Workers
// goroutines, each submitting Samples values computed by ValueAt — the
// worker and sample index are passed through so callers can build
// deterministic or per-worker-distinct value sequences.
type LoadPlan struct {
	Setup   func(workerID int)                    // Optional per-worker setup
	ValueAt func(workerID, sampleID int) float64  // Value to collect
	Workers int                                   // Number of concurrent workers
	Samples int                                   // Samples per worker
}

// CollectLoad drives metric.Collect concurrently according to plan, waiting
// on a shared WaitGroup so every goroutine's samples land before returning.
// Captures worker ID to prevent closure issues in concurrent execution.
func CollectLoad(_ *testing.T, metric *rollupz.Metric, plan LoadPlan) {
	var wg sync.WaitGroup

	for w := 0; w < plan.Workers; w++ {
		wg.Add(1)
		workerID := w // Capture for closure

		go func() {
			defer wg.Done()

			if plan.Setup != nil {
				plan.Setup(workerID)
			}

			for sample := 0; sample < plan.Samples; sample++ {
				metric.Collect(plan.ValueAt(workerID, sample))
			}
		}()
	}

	wg.Wait()
}

package testing

import (
	"context"
	"testing"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/rollupz"
)

// NewTestManager creates a CollectionManager for a single test. Kept for
// symmetry with NewTestManagerWithDriver below even though a bare manager
// has no background state to tear down.
func NewTestManager(_ *testing.T) *rollupz.CollectionManager {
	return rollupz.NewCollectionManager()
}

// NewTestManagers creates multiple isolated managers.
func NewTestManagers(t *testing.T, count int) []*rollupz.CollectionManager {
	managers := make([]*rollupz.CollectionManager, count)
	for i := range managers {
		managers[i] = NewTestManager(t)
	}
	return managers
}

// NewTestManagerWithDriver creates a CollectionManager plus a started
// AggregationCycleDriver bound to a FakeClock, with automatic shutdown via
// t.Cleanup. Advance the returned clock to cross period boundaries
// deterministically instead of sleeping real wall-clock seconds.
func NewTestManagerWithDriver(t *testing.T, periodSeconds int) (*rollupz.CollectionManager, *rollupz.AggregationCycleDriver, *clockz.FakeClock) {
	manager := rollupz.NewCollectionManager()
	clock := clockz.NewFakeClock()

	driver, err := rollupz.NewAggregationCycleDriver(
		rollupz.CollectionConfig{AggregationPeriodLengthSeconds: periodSeconds},
		manager,
		rollupz.WithClock(clock),
	)
	if err != nil {
		t.Fatalf("NewTestManagerWithDriver: %v", err)
	}
	if err := driver.Start(); err != nil {
		t.Fatalf("NewTestManagerWithDriver: start: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		_ = driver.Shutdown(ctx)
	})

	return manager, driver, clock
}

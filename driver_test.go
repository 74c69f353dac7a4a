package rollupz

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestNewAggregationCycleDriverRejectsInvalidConfig(t *testing.T) {
	m := NewCollectionManager()
	_, err := NewAggregationCycleDriver(CollectionConfig{AggregationPeriodLengthSeconds: 7}, m)
	if err == nil {
		t.Fatal("expected an invalid period to be rejected at construction")
	}
}

func TestDriverStartTwiceIsMisuse(t *testing.T) {
	m := NewCollectionManager()
	clock := clockz.NewFakeClock()
	d, err := NewAggregationCycleDriver(CollectionConfig{AggregationPeriodLengthSeconds: 10}, m, WithClock(clock))
	if err != nil {
		t.Fatalf("NewAggregationCycleDriver: %v", err)
	}

	if err := d.Start(); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := d.Start(); err == nil {
		t.Error("expected a second Start to fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = d.Shutdown(ctx)
}

func TestDriverRunsCycleOnClockAdvance(t *testing.T) {
	m := NewCollectionManager()
	sink := &recordingSink{}
	m.SetSubmissionManager(sink)

	counter, _ := m.Count("requests")
	counter.Collect(1)

	clock := clockz.NewFakeClock()
	d, err := NewAggregationCycleDriver(CollectionConfig{AggregationPeriodLengthSeconds: 10}, m, WithClock(clock))
	if err != nil {
		t.Fatalf("NewAggregationCycleDriver: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.Advance(15 * time.Second)
	deadline := time.Now().Add(2 * time.Second)
	for len(sink.blocks) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if len(sink.blocks) == 0 {
		t.Fatal("expected at least one cycle to have run after advancing the clock past a period boundary")
	}
}

func TestDriverShutdownBeforeStartDisposesDirectly(t *testing.T) {
	m := NewCollectionManager()
	d, err := NewAggregationCycleDriver(CollectionConfig{AggregationPeriodLengthSeconds: 10}, m)
	if err != nil {
		t.Fatalf("NewAggregationCycleDriver: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown on an unstarted driver: %v", err)
	}
	if d.State() != stateDisposed {
		t.Errorf("expected state Disposed, got %v", d.State())
	}
}

func TestDriverDoubleShutdownIsIdempotent(t *testing.T) {
	m := NewCollectionManager()
	clock := clockz.NewFakeClock()
	d, _ := NewAggregationCycleDriver(CollectionConfig{AggregationPeriodLengthSeconds: 10}, m, WithClock(clock))
	_ = d.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := d.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown should be a no-op, got %v", err)
	}
}

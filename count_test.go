package rollupz

import "testing"

func TestCountAggregatorCollectIntegralOnly(t *testing.T) {
	m := newMetric(NewIdentity("errors"), Count)

	if !m.Collect(1) {
		t.Error("expected integral sample 1 to be accepted")
	}
	if !m.Collect(2.0) {
		t.Error("expected integral-valued float 2.0 to be accepted")
	}
	if m.Collect(2.5) {
		t.Error("expected non-integral 2.5 to be rejected")
	}
	if !m.CanCollect(3) {
		t.Error("expected CanCollect(3) to report true")
	}
	if m.CanCollect(3.1) {
		t.Error("expected CanCollect(3.1) to report false")
	}
}

func TestCountAggregatorSumsAcrossPeriod(t *testing.T) {
	m := newMetric(NewIdentity("errors"), Count)
	m.Collect(1)
	m.Collect(2)
	m.Collect(3)

	prev := m.StartNextAggregationPeriod(fixedTime(), 1000)
	agg := prev.FinishAggregationPeriod(fixedTime(), 1000)

	countAgg, ok := agg.(CountAggregate)
	if !ok {
		t.Fatalf("expected a CountAggregate, got %T", agg)
	}
	if countAgg.Sum() != 6 {
		t.Errorf("expected Sum()==6, got %d", countAgg.Sum())
	}
	countAgg.ReinitializeAndReturnToOwner()
}

func TestCountAggregatorRejectsCollectAfterFinish(t *testing.T) {
	m := newMetric(NewIdentity("errors"), Count)
	prev := m.StartNextAggregationPeriod(fixedTime(), 0)
	prev.FinishAggregationPeriod(fixedTime(), 0)

	if prev.Collect(1) {
		t.Error("expected Collect on a finished aggregator to be rejected")
	}
}

func TestCountAggregateRecycledToPool(t *testing.T) {
	m := newMetric(NewIdentity("errors"), Count)
	prev := m.StartNextAggregationPeriod(fixedTime(), 0)
	agg := prev.FinishAggregationPeriod(fixedTime(), 0)

	ca := agg.(*countAggregate)
	owner := ca.owner
	before := owner.spareAggregates.Len()
	agg.ReinitializeAndReturnToOwner()
	after := owner.spareAggregates.Len()

	if after != before+1 {
		t.Errorf("expected spare-aggregate pool to gain one entry: before=%d after=%d", before, after)
	}
	if ca.owner != nil {
		t.Error("expected owner to be cleared after return")
	}
}

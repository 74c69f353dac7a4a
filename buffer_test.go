package rollupz

import "testing"

func TestValuesBufferTryAddUntilFull(t *testing.T) {
	b := newValuesBuffer[float64](3)

	if !b.TryAdd(1) || !b.TryAdd(2) || !b.TryAdd(3) {
		t.Fatal("expected three adds into a capacity-3 buffer to all succeed")
	}
	if b.TryAdd(4) {
		t.Error("expected a fourth add to fail")
	}
}

func TestValuesBufferTryCountValuesAndLockCountsOnlyStored(t *testing.T) {
	b := newValuesBuffer[float64](5)
	b.TryAdd(1)
	b.TryAdd(2)

	count, ok := b.TryCountValuesAndLock()
	if !ok {
		t.Fatal("expected first lock to succeed")
	}
	if count != 2 {
		t.Errorf("expected count==2, got %d", count)
	}

	if b.TryAdd(3) {
		t.Error("expected TryAdd to fail once the buffer is locked")
	}
	if _, ok := b.TryCountValuesAndLock(); ok {
		t.Error("expected a second lock attempt to fail")
	}
}

func TestValuesBufferOverflowClampsIndex(t *testing.T) {
	b := newValuesBuffer[float64](2)
	for i := 0; i < 10; i++ {
		b.TryAdd(float64(i))
	}

	count, ok := b.TryCountValuesAndLock()
	if !ok {
		t.Fatal("expected lock to succeed")
	}
	if count != 2 {
		t.Errorf("expected count clamped to capacity 2, got %d", count)
	}
}

func TestValuesBufferResetAllowsReuse(t *testing.T) {
	b := newValuesBuffer[float64](2)
	b.TryAdd(1)
	b.TryCountValuesAndLock()

	b.Reset()

	if !b.TryAdd(9) {
		t.Fatal("expected TryAdd to succeed after Reset")
	}
	count, ok := b.TryCountValuesAndLock()
	if !ok || count != 1 {
		t.Errorf("expected count==1 after reuse, got %d, ok=%v", count, ok)
	}
}

func TestValuesBufferCapacityOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected newValuesBuffer(0) to panic")
		}
	}()
	newValuesBuffer[float64](0)
}

package rollupz

import "time"

// fixedTime returns a deterministic instant for tests that only care about
// period-boundary bookkeeping, not wall-clock time.
func fixedTime() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

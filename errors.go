package rollupz

import "fmt"

// ConfigError signals an invalid configuration value: an aggregation period
// outside the allowed set, a malformed tag, or an out-of-range pool or
// buffer capacity. Configuration errors raise immediately at the API
// boundary and are never returned from Collect.
type ConfigError struct {
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rollupz: configuration error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("rollupz: configuration error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// MisuseError signals an API contract violation: attaching a Metric already
// owned by a different manager, registering a metric with a MetricKind
// outside the closed set (the only case in which a kind's factory would
// return nil), or starting an AggregationCycleDriver twice.
type MisuseError struct {
	Reason string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("rollupz: misuse: %s", e.Reason)
}

package rollupz

// CollectionConfig configures an AggregationCycleDriver.
type CollectionConfig struct {
	// AggregationPeriodLengthSeconds must be one of {5,10,15,20,30}, or any
	// whole multiple of 60 up to 86400. Any other value is a ConfigError.
	AggregationPeriodLengthSeconds int
}

var shortPeriodsSeconds = map[int]bool{5: true, 10: true, 15: true, 20: true, 30: true}

// Validate checks the aggregation period against §4.9's allowed set.
func (c CollectionConfig) Validate() error {
	p := c.AggregationPeriodLengthSeconds
	switch {
	case p < 60:
		if !shortPeriodsSeconds[p] {
			return &ConfigError{Reason: "aggregation period below 60s must be one of 5,10,15,20,30"}
		}
	case p <= 86400:
		if p%60 != 0 {
			return &ConfigError{Reason: "aggregation period at or above 60s must be a whole multiple of 60"}
		}
	default:
		return &ConfigError{Reason: "aggregation period must not exceed 86400 seconds"}
	}
	return nil
}

const (
	// spareAggregatorPoolCapacity bounds the per-metric spare-aggregator pool (§4.4).
	spareAggregatorPoolCapacity = 3
	// spareBufferPoolCapacity bounds the per-aggregator spare-buffer pool (§4.4).
	spareBufferPoolCapacity = 3
	// spareAggregatePoolCapacity bounds the per-aggregator spare-aggregate pool (§4.4 step 3).
	spareAggregatePoolCapacity = 3
	// measurementBufferCapacity is the values buffer capacity for Measurement aggregators (§4.6).
	measurementBufferCapacity = 500
	// fetchSubmitBlockSize is the block size B used by the fetch-and-submit cycle step (§4.8).
	fetchSubmitBlockSize = 2000
	// maxPoolCapacity is the hard ceiling on any object pool's capacity (§4.1).
	maxPoolCapacity = 10000
	// maxBufferCapacity is the hard ceiling on any values buffer's capacity (§3).
	maxBufferCapacity = 5000
)

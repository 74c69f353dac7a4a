package rollupz

// SubmissionSink is the external collaborator that receives finalized
// aggregates at every cycle boundary (§1, §6). The core never assumes
// anything about how the sink serializes or transports aggregates.
//
// Contract:
//   - SubmitMetrics may be called more than once per cycle boundary; a
//     single period's aggregates are not guaranteed to arrive contiguously
//     or in a single block (§4.8's ordering contract).
//   - The sink owns each aggregate until it calls
//     Aggregate.ReinitializeAndReturnToOwner() on it — exactly once, after
//     the aggregate is no longer needed. Forgetting this call leaks the
//     aggregate out of its spare-aggregate pool (it is still GC-reclaimed,
//     but the pool loses the benefit of recycling it).
//   - SubmitMetrics must not block the caller indefinitely; if it needs to
//     serialize asynchronously, it should hand the block off and return.
type SubmissionSink interface {
	SubmitMetrics(block []Aggregate)
}

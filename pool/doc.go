// Package pool provides a bounded, envelope-recycling worker pool for
// workloads where a small input yields a disproportionately large computed
// result (image tiling, stream processing, frame generation).
//
// The primary type is Pool[D, I, E], a fixed set of long-lived workers fed by
// a single coordinator that runs on the caller's goroutine. Inputs of type I
// are carried inside reusable envelopes of type E; each iteration step hands
// back one result of type D. The caller's payload types plug in through the
// envelope.Envelope contract.
//
// # Basic Usage
//
//	cfg := pool.DefaultConfig()
//	_ = cfg.SetWorkerCount(4) // derives queue capacity 4, in-flight budget 8
//
//	p := pool.New[Frame, Request](cfg, func() *FrameEnvelope { return &FrameEnvelope{} })
//	defer p.Close()
//
//	p.Feed(&requests) // requests is emptied; nothing blocks
//	for frame := range p.All() {
//	    encode(frame)
//	}
//
//	p.Feed(&moreRequests) // same pool, same workers
//	for frame := range p.All() {
//	    encode(frame)
//	}
//
// # Recycling
//
// The point of the pool is not parallelism alone but allocation behavior: in
// the steady state every collected envelope is immediately reloaded with the
// next pending input and dispatched again, so the number of envelopes ever
// constructed stays close to the in-flight budget regardless of how many
// inputs are processed. Feeding a million inputs does not build a million
// envelopes.
//
// # Backpressure and Ordering
//
// The dispatch and collection channels are bounded to the configured queue
// capacity, and the coordinator additionally caps outstanding envelopes at
// the in-flight budget. Peak memory is therefore independent of backlog
// size. Results are produced in no particular order; callers needing to
// correlate input and output must carry the pairing inside their own
// envelope type.
//
// # Configuration
//
//   - SetWorkerCount(n): workers kept alive (default GOMAXPROCS); resets the
//     derived queue capacity (n) and in-flight budget (2n)
//   - SetInFlightBudget(n): cap on dispatched-but-uncollected envelopes;
//     must exceed the worker count
//   - SetStackSize(n): recorded, unvalidated; goroutine stacks are runtime-managed
//   - SetLogger, SetRateLimit, SetPinWorkers: observability, pacing,
//     thread affinity
//
// # Error Handling
//
// Configuration errors surface synchronously as ErrInvalidConfig and never
// reach running workers. The iteration interface returns no errors at all:
// exhaustion is signaled by end-of-sequence. A panic inside the caller's
// transformation terminates only the worker running it; the pool keeps
// draining on the survivors and replaces the lost worker on the next
// iteration step, though any envelope the worker held is gone and its input
// will never produce a result.
package pool

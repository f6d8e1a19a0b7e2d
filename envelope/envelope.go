// Package envelope defines the contract a payload type must satisfy to be
// processed by a courier pool.
//
// An envelope is the reusable carrier that moves between the pool's
// coordinator and its workers. It holds exactly one input and one result at
// any time. The pool installs an input, a worker runs the transformation in
// place, and the coordinator extracts a copy of the result before either
// reusing the envelope for the next input or discarding it.
//
// Because envelopes are handed between goroutines over channels, exactly one
// goroutine holds a given envelope at any moment. Implementations therefore
// do not need internal locking, but Snapshot must return a value that is safe
// to keep after the envelope has been reused: deep-copy any memory the result
// aliases (slices, maps, pointers into internal buffers).
package envelope

// Envelope binds a result type D to the input type I that produces it.
//
// Type parameters:
//   - D: the result payload produced by the transformation
//   - I: the input describing one unit of work
//
// Inputs are treated as values by the pool; an implementation that retains
// an input past Work must copy anything the input aliases.
type Envelope[D, I any] interface {
	// SetInput installs an input, replacing any previously installed one.
	SetInput(I)

	// Work consumes the installed input and overwrites the envelope's
	// result state. Called by a worker goroutine; the pool never inspects
	// what Work computes.
	Work()

	// Snapshot returns a duplicate of the current result. The returned
	// value must remain valid after the envelope is reused for another
	// input.
	Snapshot() D
}

// Factory constructs one empty envelope. The pool calls it when
// bootstrapping the in-flight set and whenever a collected envelope was
// discarded instead of recycled, so the total number of calls stays close to
// the configured in-flight budget regardless of how many inputs are fed.
type Factory[D, I any, E Envelope[D, I]] func() E

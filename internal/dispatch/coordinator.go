// Package dispatch implements the machinery behind a courier pool: the
// coordinator that feeds and recycles envelopes, and the worker loop that
// transforms them.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/couriergo/courier/envelope"
)

// ErrProtocolViolation reports that a queue was found closed at a point
// where the dispatch protocol guarantees it is open. It is raised via panic:
// the condition is an internal defect, not a recoverable state.
var ErrProtocolViolation = errors.New("courier: protocol violation")

// Coordinator owns the sending half of the dispatch channel and the
// receiving half of the collection channel. It runs entirely on the caller's
// goroutine; none of its state is shared, so none of it is locked.
//
// Its central job is recycling: in the steady state each collected envelope
// is immediately reloaded with the next pending input and dispatched again,
// so envelope construction stays bounded by the in-flight budget no matter
// how many inputs pass through.
type Coordinator[D, I any, E envelope.Envelope[D, I]] struct {
	budget   int
	inFlight int
	backlog  []I

	build     envelope.Factory[D, I, E]
	dispatchC chan<- E
	collectC  <-chan E

	limiter *rate.Limiter
	ctx     context.Context
}

// NewCoordinator binds a coordinator to the channel ends it owns.
// budget is the maximum number of envelopes allowed in flight; limiter, when
// non-nil, paces dispatches. ctx is the pool's lifetime context, used only
// to abandon a limiter wait during teardown.
func NewCoordinator[D, I any, E envelope.Envelope[D, I]](
	ctx context.Context,
	budget int,
	build envelope.Factory[D, I, E],
	dispatchC chan<- E,
	collectC <-chan E,
	limiter *rate.Limiter,
) *Coordinator[D, I, E] {
	return &Coordinator[D, I, E]{
		budget:    budget,
		build:     build,
		dispatchC: dispatchC,
		collectC:  collectC,
		limiter:   limiter,
		ctx:       ctx,
	}
}

// Append moves the caller's inputs into the backlog and empties the caller's
// slice. Inputs are consumed from the end of the backlog, so the last input
// fed is the first dispatched; the pool makes no ordering promise either way.
func (c *Coordinator[D, I, E]) Append(inputs *[]I) {
	c.backlog = append(c.backlog, *inputs...)
	clear(*inputs)
	*inputs = (*inputs)[:0]
}

// Remaining reports how many results are still to be produced: envelopes in
// flight plus inputs not yet dispatched.
func (c *Coordinator[D, I, E]) Remaining() int {
	return c.inFlight + len(c.backlog)
}

// Step produces one result, or reports end-of-sequence when nothing is
// pending anywhere. Four cases, checked in order:
//
//  1. backlog empty, nothing in flight: end of sequence.
//  2. backlog empty, envelopes in flight: collect one, extract its result,
//     discard it.
//  3. backlog non-empty, nothing in flight (bootstrap): dispatch a fresh
//     envelope for the next input, top up to budget, collect one, extract,
//     discard, and top up again: the discard freed no envelope, so one
//     more dispatch may be possible.
//  4. backlog non-empty, envelopes in flight (steady state): top up, collect
//     one, extract its result, then reload that same envelope with the next
//     input and dispatch it.
//
// Case 4 is the recycling path: no envelope is constructed there at all.
// Case 3 discards the bootstrap envelope rather than recycling it; reusing
// it there would change the peak construction count.
func (c *Coordinator[D, I, E]) Step() (D, bool) {
	var zero D

	if len(c.backlog) == 0 {
		if c.inFlight == 0 {
			return zero, false
		}
		e := c.collect()
		return e.Snapshot(), true
	}

	in := c.pop()

	if c.inFlight == 0 {
		e := c.build()
		e.SetInput(in)
		c.send(e)
		c.topUp()
		got := c.collect()
		out := got.Snapshot()
		c.topUp()
		return out, true
	}

	c.topUp()
	got := c.collect()
	out := got.Snapshot()
	got.SetInput(in)
	c.send(got)
	return out, true
}

// topUp dispatches fresh envelopes until the in-flight budget is reached,
// the backlog runs dry, or the dispatch channel is full. The capacity check
// is safe because the coordinator is the channel's only sender: observed
// room cannot be taken by anyone else. Stopping at a full channel rather
// than waiting avoids stalling the caller when the budget exceeds what the
// pipes can physically hold.
func (c *Coordinator[D, I, E]) topUp() {
	for c.inFlight < c.budget && len(c.backlog) > 0 && len(c.dispatchC) < cap(c.dispatchC) {
		e := c.build()
		e.SetInput(c.pop())
		c.send(e)
	}
}

// send dispatches one envelope, blocking while the channel is full. A send
// on a closed dispatch channel panics, which is the intended escalation: the
// pool is the only closer, and it never steps the coordinator after closing.
func (c *Coordinator[D, I, E]) send(e E) {
	if c.limiter != nil {
		// The only wait error is a dead context during teardown; the
		// send below is then already a protocol violation.
		_ = c.limiter.Wait(c.ctx)
	}
	c.dispatchC <- e
	c.inFlight++
}

// collect receives one worked envelope, blocking until a worker delivers.
// The collection channel is closed by nobody while the coordinator lives, so
// a closed channel here means a worker tore down its send side unexpectedly.
func (c *Coordinator[D, I, E]) collect() E {
	e, ok := <-c.collectC
	if !ok {
		panic(fmt.Errorf("%w: collection channel closed with %d envelope(s) in flight", ErrProtocolViolation, c.inFlight))
	}
	c.inFlight--
	return e
}

// pop removes and returns the last pending input. The vacated slot is zeroed
// so the backlog does not pin the input's referents.
func (c *Coordinator[D, I, E]) pop() I {
	last := len(c.backlog) - 1
	in := c.backlog[last]
	var zero I
	c.backlog[last] = zero
	c.backlog = c.backlog[:last]
	return in
}

package pool

import (
	"context"
	"iter"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/couriergo/courier/envelope"
	"github.com/couriergo/courier/internal/dispatch"
)

// Pool transforms a stream of small inputs into large results on a fixed set
// of long-lived workers, recycling envelopes between dispatch cycles so that
// allocation stays bounded by the in-flight budget no matter how many inputs
// pass through.
//
// Usage is feed-then-iterate, repeatable on the same pool:
//
//	p := pool.NewDefault[Tile, Rect](func() *TileEnvelope { return &TileEnvelope{} })
//	defer p.Close()
//
//	p.Feed(&rects)
//	for tile := range p.All() {
//	    // consume tile
//	}
//
// Results come back in no particular order. The coordinator runs on the
// caller's goroutine: Feed, Remaining, Next, and All must not be called
// concurrently with each other. Close may be called from anywhere, but not
// while an iteration step is in progress.
//
// Type parameters:
//   - D: the result payload type
//   - I: the input type
//   - E: the caller's envelope type binding the two
type Pool[D, I any, E envelope.Envelope[D, I]] struct {
	cfg Config
	log *zap.Logger

	dispatchC chan E
	collectC  chan E
	coord     *dispatch.Coordinator[D, I, E]

	ctx    context.Context
	cancel context.CancelFunc

	workers errgroup.Group
	live    atomic.Int32
	nextID  int64
	closed  atomic.Bool
}

// New builds a pool from a configuration and an envelope factory. Both
// channels are allocated at the configured queue capacity; no workers are
// spawned until the first iteration step. A zero-value Config is treated as
// DefaultConfig.
func New[D, I any, E envelope.Envelope[D, I]](cfg Config, build envelope.Factory[D, I, E]) *Pool[D, I, E] {
	cfg = cfg.normalized()
	ctx, cancel := context.WithCancel(context.Background())

	dispatchC := make(chan E, cfg.QueueCapacity())
	collectC := make(chan E, cfg.QueueCapacity())

	return &Pool[D, I, E]{
		cfg:       cfg,
		log:       cfg.logger,
		dispatchC: dispatchC,
		collectC:  collectC,
		coord:     dispatch.NewCoordinator(ctx, cfg.InFlightBudget(), build, dispatchC, collectC, cfg.limiter),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// NewDefault builds a pool with DefaultConfig.
func NewDefault[D, I any, E envelope.Envelope[D, I]](build envelope.Factory[D, I, E]) *Pool[D, I, E] {
	return New(DefaultConfig(), build)
}

// Feed moves the caller's inputs into the pool's backlog and empties the
// caller's slice. It never blocks: nothing is dispatched until iteration.
// Feeding again after a drain is the intended way to reuse the pool and its
// workers.
func (p *Pool[D, I, E]) Feed(inputs *[]I) {
	if inputs == nil || len(*inputs) == 0 {
		return
	}
	p.coord.Append(inputs)
}

// Remaining reports how many results are still to be produced: envelopes in
// flight plus inputs not yet dispatched.
func (p *Pool[D, I, E]) Remaining() int {
	return p.coord.Remaining()
}

// Next performs one iteration step. It first tops the worker set back up to
// the configured count, so a worker lost to a panicking transformation is
// replaced here (IDs grow monotonically and are never reused), and then runs
// one coordinator step, returning either a result or ok=false for
// end-of-sequence.
//
// End-of-sequence is not terminal: Feed more inputs and Next resumes on the
// same workers. On a closed pool Next always reports end-of-sequence.
func (p *Pool[D, I, E]) Next() (D, bool) {
	if p.closed.Load() {
		var zero D
		return zero, false
	}
	p.ensureWorkers()
	return p.coord.Step()
}

// All returns a single-use iterator draining the pool to end-of-sequence.
// Ranging over it is equivalent to calling Next until ok is false.
func (p *Pool[D, I, E]) All() iter.Seq[D] {
	return func(yield func(D) bool) {
		for {
			d, ok := p.Next()
			if !ok {
				return
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Close tears the pool down: it cancels the pool context, closes the
// dispatch channel (the shutdown broadcast the workers poll for), and then
// drains the collection channel until every worker goroutine has exited, so
// none is left blocked on a delivery nobody will take. Pending inputs and
// in-flight envelopes are abandoned.
//
// Close is idempotent and returns nil on a normal teardown. A worker that
// had terminated fatally is logged here, not returned: its failure already
// surfaced in reduced parallelism, never through the iteration interface.
func (p *Pool[D, I, E]) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.cancel()
	close(p.dispatchC)

	done := make(chan struct{})
	var werr error
	go func() {
		werr = p.workers.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			if werr != nil {
				p.log.Warn("worker failed before teardown", zap.Error(werr))
			}
			p.log.Debug("pool closed")
			return nil
		case <-p.collectC:
			// Discard so no worker stays wedged mid-delivery.
		}
	}
}

// ensureWorkers spawns workers until the configured count is alive again.
// Only the iteration goroutine calls it, so nextID needs no synchronization;
// the live counter is atomic because workers decrement it as they exit.
func (p *Pool[D, I, E]) ensureWorkers() {
	for int(p.live.Load()) < p.cfg.WorkerCount() {
		p.nextID++
		w := dispatch.NewWorker[E](p.nextID, p.dispatchC, p.collectC, p.log, p.cfg.PinWorkers())
		p.live.Add(1)
		p.workers.Go(func() error {
			defer p.live.Add(-1)
			return w.Run(p.ctx)
		})
	}
}

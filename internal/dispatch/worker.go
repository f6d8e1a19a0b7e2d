package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/couriergo/courier/internal/cpu"
)

// Worker states, tracked for observability. A worker cycles
// polling → working → sending until it terminates.
const (
	stateIdle int32 = iota
	statePolling
	stateWorking
	stateSending
	stateTerminated
)

// Workable is the slice of the envelope contract a worker needs: it only
// ever runs the transformation in place.
type Workable interface {
	Work()
}

// Worker drains envelopes from the shared dispatch channel, transforms them,
// and delivers them on the collection channel. One Worker runs per
// goroutine; N of them share the dispatch channel's receive side, which Go
// channels support natively. The closed channel doubles as the shutdown
// broadcast, so the pool can tear down without coordinating with workers.
type Worker[E Workable] struct {
	id        int64
	dispatchC <-chan E
	collectC  chan<- E
	log       *zap.Logger
	pin       bool
	state     atomic.Int32
}

// NewWorker builds a worker bound to the pool's channels. IDs are assigned
// by the pool, monotonically, and never reused.
func NewWorker[E Workable](id int64, dispatchC <-chan E, collectC chan<- E, log *zap.Logger, pin bool) *Worker[E] {
	return &Worker[E]{
		id:        id,
		dispatchC: dispatchC,
		collectC:  collectC,
		log:       log,
		pin:       pin,
	}
}

// Run executes the worker loop until the dispatch channel closes (graceful,
// returns nil) or the transformation panics (fatal, returns the recovered
// panic as an error). ctx is the pool's lifetime context; cancellation
// unblocks a delivery stalled on a full collection channel during teardown.
//
// A panic inside the user transformation ends only this worker. The pool
// does not restart it on its own; the next iteration step notices the
// shortfall and spawns a replacement.
func (w *Worker[E]) Run(ctx context.Context) (err error) {
	if w.pin {
		defer cpu.PinThread(int(w.id))()
	}

	defer func() {
		w.state.Store(stateTerminated)
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("worker %d: transformation panic: %v\nstack trace:\n%s", w.id, r, buf[:n])
			w.log.Error("worker terminated", zap.Int64("worker", w.id), zap.Error(err))
			return
		}
		w.log.Debug("worker stopped", zap.Int64("worker", w.id))
	}()

	w.log.Debug("worker started", zap.Int64("worker", w.id))

	for {
		w.state.Store(statePolling)
		e, ok := <-w.dispatchC
		if !ok {
			// Dispatch side closed: the pool is tearing down.
			return nil
		}

		w.state.Store(stateWorking)
		e.Work()

		w.state.Store(stateSending)
		select {
		case w.collectC <- e:
		case <-ctx.Done():
			// Teardown began while the collection channel was full;
			// the envelope is abandoned along with the pool.
			return nil
		}
	}
}

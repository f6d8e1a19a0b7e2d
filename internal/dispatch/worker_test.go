package dispatch

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type panicEnvelope struct {
	fire bool
}

func (e *panicEnvelope) SetInput(fire bool) { e.fire = fire }
func (e *panicEnvelope) Work() {
	if e.fire {
		panic("transformation blew up")
	}
}
func (e *panicEnvelope) Snapshot() bool { return e.fire }

func runWorker[E Workable](ctx context.Context, id int64, dispatchC <-chan E, collectC chan<- E) <-chan error {
	errC := make(chan error, 1)
	go func() {
		errC <- NewWorker(id, dispatchC, collectC, zap.NewNop(), false).Run(ctx)
	}()
	return errC
}

func TestWorker_ProcessesAndDelivers(t *testing.T) {
	dispatchC := make(chan *echoEnvelope, 1)
	collectC := make(chan *echoEnvelope, 1)
	errC := runWorker(context.Background(), 1, dispatchC, collectC)

	e := &echoEnvelope{}
	e.SetInput(21)
	dispatchC <- e

	select {
	case got := <-collectC:
		if got.Snapshot() != 42 {
			t.Errorf("expected worked result 42, got %d", got.Snapshot())
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not deliver")
	}

	close(dispatchC)
	if err := <-errC; err != nil {
		t.Errorf("expected graceful exit, got %v", err)
	}
}

func TestWorker_GracefulExitOnClosedDispatch(t *testing.T) {
	dispatchC := make(chan *echoEnvelope)
	collectC := make(chan *echoEnvelope, 1)
	errC := runWorker(context.Background(), 7, dispatchC, collectC)

	close(dispatchC)

	select {
	case err := <-errC:
		if err != nil {
			t.Errorf("expected nil on shutdown broadcast, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after dispatch close")
	}
}

func TestWorker_FatalOnTransformationPanic(t *testing.T) {
	dispatchC := make(chan *panicEnvelope, 1)
	collectC := make(chan *panicEnvelope, 1)
	errC := runWorker(context.Background(), 3, dispatchC, collectC)

	e := &panicEnvelope{}
	e.SetInput(true)
	dispatchC <- e

	select {
	case err := <-errC:
		if err == nil {
			t.Fatal("expected a fatal error")
		}
		if !strings.Contains(err.Error(), "transformation panic") {
			t.Errorf("error should identify the panic, got %v", err)
		}
		if !strings.Contains(err.Error(), "worker 3") {
			t.Errorf("error should identify the worker, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not terminate on panic")
	}
}

func TestWorker_ContextCancelUnblocksDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dispatchC := make(chan *echoEnvelope, 1)
	collectC := make(chan *echoEnvelope) // nobody receives
	errC := runWorker(ctx, 5, dispatchC, collectC)

	e := &echoEnvelope{}
	e.SetInput(1)
	dispatchC <- e

	// The worker is now stuck delivering; teardown must free it.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errC:
		if err != nil {
			t.Errorf("expected graceful exit on cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker stayed blocked on delivery after cancellation")
	}
}

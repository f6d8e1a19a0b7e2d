package pool

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds the validated tunables of a pool. Construct it with
// DefaultConfig, adjust it through the setters, then hand it to New; the
// pool copies it, so later mutation of the Config does not affect a running
// pool.
//
// Derived defaults: the queue capacity tracks the worker count, and the
// in-flight budget defaults to twice the worker count. SetWorkerCount resets
// both to those derived values, so set the worker count first and the budget
// after.
type Config struct {
	workerCount    int
	queueCapacity  int
	inFlightBudget int
	stackSize      int

	pinWorkers bool
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// DefaultConfig returns a configuration sized to the machine:
// runtime.GOMAXPROCS(0) workers, queue capacity equal to the worker count,
// an in-flight budget of twice the worker count, and no logging, pacing, or
// thread pinning.
func DefaultConfig() Config {
	n := runtime.GOMAXPROCS(0)
	return Config{
		workerCount:    n,
		queueCapacity:  n,
		inFlightBudget: 2 * n,
		logger:         zap.NewNop(),
	}
}

// SetWorkerCount sets how many workers the pool keeps alive. There must be
// at least one. Queue capacity is reset to n and the in-flight budget to 2n,
// restoring the derived defaults for the new count.
func (c *Config) SetWorkerCount(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: worker count must be at least 1, got %d", ErrInvalidConfig, n)
	}
	c.workerCount = n
	c.queueCapacity = n
	c.inFlightBudget = 2 * n
	return nil
}

// SetInFlightBudget caps how many envelopes may be dispatched but not yet
// collected. The budget must exceed the worker count: every worker needs one
// envelope to hold plus at least one free to recycle.
func (c *Config) SetInFlightBudget(n int) error {
	if n <= c.workerCount {
		return fmt.Errorf("%w: in-flight budget must exceed worker count %d, got %d", ErrInvalidConfig, c.workerCount, n)
	}
	c.inFlightBudget = n
	return nil
}

// SetStackSize records a per-worker stack size. The value is not validated.
// Goroutine stacks are sized by the Go runtime, so the setting carries no
// scheduling effect; it is kept for callers that tune a pool from an
// external profile and read it back through StackSize.
func (c *Config) SetStackSize(n int) {
	c.stackSize = n
}

// SetPinWorkers controls whether each worker locks its goroutine to an OS
// thread and binds that thread to a CPU. Pinning can improve cache locality
// for long uniform workloads; platform support varies.
func (c *Config) SetPinWorkers(pin bool) {
	c.pinWorkers = pin
}

// SetLogger installs a structured logger for worker lifecycle and teardown
// events. The default is a no-op logger; a nil argument is ignored.
func (c *Config) SetLogger(log *zap.Logger) {
	if log != nil {
		c.logger = log
	}
}

// SetRateLimit paces dispatches to at most perSecond envelopes per second
// with the given burst. Useful when the transformation drives an external
// service. Non-positive arguments leave the pool unpaced.
func (c *Config) SetRateLimit(perSecond float64, burst int) {
	if perSecond > 0 && burst > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WorkerCount returns how many workers the pool keeps alive.
func (c *Config) WorkerCount() int { return c.workerCount }

// QueueCapacity returns the capacity of the dispatch and collection
// channels. It is always equal to the worker count of the most recent
// SetWorkerCount (or the default).
func (c *Config) QueueCapacity() int { return c.queueCapacity }

// InFlightBudget returns the cap on dispatched-but-uncollected envelopes.
func (c *Config) InFlightBudget() int { return c.inFlightBudget }

// StackSize returns the recorded per-worker stack size.
func (c *Config) StackSize() int { return c.stackSize }

// PinWorkers reports whether workers bind themselves to OS threads.
func (c *Config) PinWorkers() bool { return c.pinWorkers }

// normalized returns the config with zero-value gaps filled in, so that a
// literal Config{} behaves like DefaultConfig.
func (c Config) normalized() Config {
	if c.workerCount < 1 {
		d := DefaultConfig()
		d.pinWorkers = c.pinWorkers
		d.limiter = c.limiter
		if c.logger != nil {
			d.logger = c.logger
		}
		return d
	}
	if c.queueCapacity < 1 {
		c.queueCapacity = c.workerCount
	}
	if c.inFlightBudget <= c.workerCount {
		c.inFlightBudget = 2 * c.workerCount
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

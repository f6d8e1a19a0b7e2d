package pool

import (
	"errors"

	"github.com/couriergo/courier/internal/dispatch"
)

var (
	// ErrInvalidConfig is returned by Config setters when a value would
	// break a configuration invariant. The setter leaves the prior
	// configuration untouched, so the caller can correct the value and
	// retry.
	//
	// Example:
	//
	//	cfg := pool.DefaultConfig()
	//	if err := cfg.SetWorkerCount(0); errors.Is(err, pool.ErrInvalidConfig) {
	//	    // fix the value and try again
	//	}
	ErrInvalidConfig = errors.New("courier: invalid config")

	// ErrProtocolViolation marks a fatal internal defect: a channel
	// reported closed at a point where the dispatch protocol guarantees
	// it is open. It is raised via panic on the goroutine that detects
	// it and is never returned through the iteration interface.
	ErrProtocolViolation = dispatch.ErrProtocolViolation
)

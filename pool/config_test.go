package pool

import (
	"errors"
	"runtime"
	"testing"
)

func TestDefaultConfig_DerivedValues(t *testing.T) {
	cfg := DefaultConfig()

	n := runtime.GOMAXPROCS(0)
	if cfg.WorkerCount() != n {
		t.Errorf("expected worker count %d, got %d", n, cfg.WorkerCount())
	}
	if cfg.QueueCapacity() != n {
		t.Errorf("expected queue capacity %d, got %d", n, cfg.QueueCapacity())
	}
	if cfg.InFlightBudget() != 2*n {
		t.Errorf("expected in-flight budget %d, got %d", 2*n, cfg.InFlightBudget())
	}
	if cfg.InFlightBudget() <= cfg.WorkerCount() {
		t.Error("in-flight budget must exceed worker count")
	}
}

func TestConfig_SetWorkerCount(t *testing.T) {
	t.Run("resets derived values", func(t *testing.T) {
		cfg := DefaultConfig()
		if err := cfg.SetInFlightBudget(100); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := cfg.SetWorkerCount(4); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.WorkerCount() != 4 {
			t.Errorf("expected worker count 4, got %d", cfg.WorkerCount())
		}
		if cfg.QueueCapacity() != 4 {
			t.Errorf("expected queue capacity 4, got %d", cfg.QueueCapacity())
		}
		if cfg.InFlightBudget() != 8 {
			t.Errorf("expected in-flight budget reset to 8, got %d", cfg.InFlightBudget())
		}
	})

	t.Run("rejects zero and negative counts", func(t *testing.T) {
		for _, n := range []int{0, -1, -100} {
			cfg := DefaultConfig()
			before := cfg

			err := cfg.SetWorkerCount(n)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("SetWorkerCount(%d): expected ErrInvalidConfig, got %v", n, err)
			}
			if cfg != before {
				t.Errorf("SetWorkerCount(%d): failed setter mutated config", n)
			}
		}
	})
}

func TestConfig_SetInFlightBudget(t *testing.T) {
	t.Run("accepts budget above worker count", func(t *testing.T) {
		cfg := DefaultConfig()
		if err := cfg.SetWorkerCount(4); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := cfg.SetInFlightBudget(5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.InFlightBudget() != 5 {
			t.Errorf("expected in-flight budget 5, got %d", cfg.InFlightBudget())
		}
	})

	t.Run("rejects budget at or below worker count", func(t *testing.T) {
		cfg := DefaultConfig()
		if err := cfg.SetWorkerCount(4); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		before := cfg

		for _, n := range []int{4, 3, 0, -1} {
			err := cfg.SetInFlightBudget(n)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("SetInFlightBudget(%d): expected ErrInvalidConfig, got %v", n, err)
			}
			if cfg != before {
				t.Errorf("SetInFlightBudget(%d): failed setter mutated config", n)
			}
		}
	})
}

func TestConfig_SetStackSize(t *testing.T) {
	cfg := DefaultConfig()

	// Unchecked by contract: any value is recorded as-is.
	for _, n := range []int{0, -1, 1 << 20} {
		cfg.SetStackSize(n)
		if cfg.StackSize() != n {
			t.Errorf("expected stack size %d, got %d", n, cfg.StackSize())
		}
	}
}

func TestConfig_SetRateLimit(t *testing.T) {
	cfg := DefaultConfig()

	cfg.SetRateLimit(0, 10)
	cfg.SetRateLimit(5, 0)
	cfg.SetRateLimit(-1, -1)
	if cfg.limiter != nil {
		t.Error("non-positive rate arguments should leave the pool unpaced")
	}

	cfg.SetRateLimit(5, 10)
	if cfg.limiter == nil {
		t.Error("expected a limiter to be installed")
	}
}

func TestConfig_SetLogger(t *testing.T) {
	cfg := DefaultConfig()
	prev := cfg.logger

	cfg.SetLogger(nil)
	if cfg.logger != prev {
		t.Error("nil logger should be ignored")
	}
}

func TestConfig_ZeroValueNormalization(t *testing.T) {
	var cfg Config
	norm := cfg.normalized()

	def := DefaultConfig()
	if norm.WorkerCount() != def.WorkerCount() {
		t.Errorf("expected worker count %d, got %d", def.WorkerCount(), norm.WorkerCount())
	}
	if norm.QueueCapacity() != def.QueueCapacity() {
		t.Errorf("expected queue capacity %d, got %d", def.QueueCapacity(), norm.QueueCapacity())
	}
	if norm.InFlightBudget() != def.InFlightBudget() {
		t.Errorf("expected in-flight budget %d, got %d", def.InFlightBudget(), norm.InFlightBudget())
	}
	if norm.logger == nil {
		t.Error("normalized config must carry a logger")
	}
}

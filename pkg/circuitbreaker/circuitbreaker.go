package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CircuitState is the current circuit breaker state.
type CircuitState int

const (
	// Closed allows requests to pass through
	Closed CircuitState = iota
	// Open blocks all requests
	Open
	// HalfOpen allows limited requests to test recovery
	HalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker guards calls to a remote dependency and opens after repeated failures.
type CircuitBreaker interface {
	Call(ctx context.Context, fn func(context.Context) error) error
	State() CircuitState
	Reset()
}

type Config struct {
	FailureThreshold int           // Number of failures before opening
	RecoveryTimeout  time.Duration // Time to wait before trying HalfOpen
	SuccessThreshold int           // Number of successes needed to close from HalfOpen

	// IsFailure decides which errors count against the circuit. Nil counts every error.
	IsFailure func(error) bool
	Now       func() time.Time
}

func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 1,
	}
}

type circuitBreaker struct {
	config      Config
	state       CircuitState
	failures    int
	successes   int
	nextAttempt time.Time
	mutex       sync.Mutex
}

// NewCircuitBreaker applies defaults when config is nil.
func NewCircuitBreaker(config *Config) CircuitBreaker {
	if config == nil {
		config = DefaultConfig()
	}

	cfg := *config
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return err != nil }
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}

	return &circuitBreaker{config: cfg, state: Closed}
}

func (cb *circuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cb.mutex.Lock()
	if cb.state == Open && cb.config.Now().After(cb.nextAttempt) {
		cb.state = HalfOpen
		cb.successes = 0
	}
	allowed := cb.state != Open
	cb.mutex.Unlock()

	if !allowed {
		return ErrCircuitOpen
	}

	// Never call user code while holding locks.
	err := fn(ctx)

	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	if cb.config.IsFailure(err) {
		cb.recordFailure()
	} else {
		cb.recordSuccess()
	}
	return err
}

func (cb *circuitBreaker) State() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.state = Closed
	cb.failures = 0
	cb.successes = 0
}

func (cb *circuitBreaker) recordFailure() {
	cb.failures++

	switch cb.state {
	case Closed:
		if cb.failures >= cb.config.FailureThreshold {
			cb.trip()
		}
	case HalfOpen:
		cb.trip()
	}
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.nextAttempt = cb.config.Now().Add(cb.config.RecoveryTimeout)
}

func (cb *circuitBreaker) recordSuccess() {
	cb.failures = 0

	if cb.state == HalfOpen {
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = Closed
			cb.successes = 0
		}
	}
}

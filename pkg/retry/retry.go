package retry

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

type RetryPolicy interface {
	Execute(ctx context.Context, fn func(context.Context) error) error
}

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64

	// Retryable overrides the default transient-error patterns.
	Retryable func(error) bool
	// OnRetry is called before each wait, with the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns conservative defaults for backoff retries.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// ExponentialBackoff retries with exponential delay between attempts.
type ExponentialBackoff struct {
	config *Config
}

// NewExponentialBackoff applies defaults when config is nil.
func NewExponentialBackoff(config *Config) *ExponentialBackoff {
	if config == nil {
		config = DefaultConfig()
	}
	return &ExponentialBackoff{config: config}
}

func (eb *ExponentialBackoff) Execute(ctx context.Context, fn func(context.Context) error) error {
	return run(ctx, eb.config, eb.calculateDelay, fn)
}

func (eb *ExponentialBackoff) calculateDelay(attempt int) time.Duration {
	delay := float64(eb.config.BaseDelay) * math.Pow(eb.config.Multiplier, float64(attempt-1))
	if eb.config.MaxDelay > 0 && delay > float64(eb.config.MaxDelay) {
		delay = float64(eb.config.MaxDelay)
	}

	return time.Duration(delay)
}

// FixedDelay retries with a constant delay between attempts.
type FixedDelay struct {
	config *Config
}

// NewFixedDelay applies defaults when config is nil.
func NewFixedDelay(config *Config) *FixedDelay {
	if config == nil {
		config = DefaultConfig()
	}
	return &FixedDelay{config: config}
}

func (fd *FixedDelay) Execute(ctx context.Context, fn func(context.Context) error) error {
	return run(ctx, fd.config, func(int) time.Duration { return fd.config.BaseDelay }, fn)
}

func run(ctx context.Context, cfg *Config, delayFor func(int) time.Duration, fn func(context.Context) error) error {
	retryable := cfg.Retryable
	if retryable == nil {
		retryable = isRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}
		if !retryable(err) {
			return err
		}

		delay := delayFor(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return &MaxRetriesExceededError{
		LastError:   lastErr,
		MaxAttempts: cfg.MaxAttempts,
	}
}

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"i/o timeout",
	"temporary failure",
	"service unavailable",
	"too many requests",
	"eof",
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// MaxRetriesExceededError indicates that all retry attempts were exhausted.
type MaxRetriesExceededError struct {
	LastError   error
	MaxAttempts int
}

func (e *MaxRetriesExceededError) Error() string {
	return "max retries exceeded"
}

func (e *MaxRetriesExceededError) Unwrap() error {
	return e.LastError
}

// IsMaxRetriesExceeded reports whether err is a MaxRetriesExceededError.
func IsMaxRetriesExceeded(err error) bool {
	var maxRetriesErr *MaxRetriesExceededError
	return errors.As(err, &maxRetriesErr)
}

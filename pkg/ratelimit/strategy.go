package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Logger interface {
	Error(msg string, args ...interface{})
}

type Algorithm string

const (
	// TokenBucket refills continuously; suited to coarse global throttling.
	TokenBucket Algorithm = "token_bucket"
	// SlidingWindow counts requests over the trailing window.
	SlidingWindow Algorithm = "sliding_window"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter defines the strategy interface for rate limiting
type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	Allow(ctx context.Context, key string) (Decision, error)
	Close() error
}

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Requests  int
	Window    time.Duration
	Algorithm Algorithm
	Redis     *redis.Client // Optional, if nil uses in-memory
	Logger    Logger        // Optional logger for Redis operations
}

// NewRateLimiter creates a rate limiter based on configuration. Redis always
// counts with a sliding window; in memory the algorithm is selectable.
func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	if config.Redis != nil {
		return NewRedisRateLimiter(config.Redis, config.Requests, config.Window, config.Logger)
	}
	if config.Algorithm == SlidingWindow {
		return NewInMemorySlidingWindowLimiter(config.Requests, config.Window)
	}
	return NewInMemoryRateLimiter(config.Requests, config.Window)
}

type limiterOptions struct {
	now func() time.Time
}

type Option func(*limiterOptions)

// WithClock replaces time.Now for the in-memory limiters.
func WithClock(now func() time.Time) Option {
	return func(o *limiterOptions) {
		o.now = now
	}
}

func buildOptions(opts []Option) limiterOptions {
	o := limiterOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func normalizeKey(key string) string {
	if key == "" {
		return "__empty__"
	}
	return key
}

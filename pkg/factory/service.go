package factory

import (
	"time"

	"github.com/akeren/waitlist-api/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RateLimiterFactory interface {
	CreateRateLimiter(requests int, window time.Duration, algorithm ratelimit.Algorithm) ratelimit.RateLimiter
}

// DefaultRateLimiterFactory shares one Redis client across every limiter it
// builds and falls back to in-memory limiters when no client is available.
type DefaultRateLimiterFactory struct {
	redis  *redis.Client
	logger ratelimit.Logger
}

// NewDefaultRateLimiterFactory accepts any cache; only caches exposing a Redis
// client enable distributed limiting.
func NewDefaultRateLimiterFactory(cache any, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	var client *redis.Client
	if provider, ok := cache.(RedisClientProvider); ok && provider != nil {
		client = provider.GetClient()
	}

	return &DefaultRateLimiterFactory{redis: client, logger: logger}
}

func (f *DefaultRateLimiterFactory) Distributed() bool {
	return f.redis != nil
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter(requests int, window time.Duration, algorithm ratelimit.Algorithm) ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests:  requests,
		Window:    window,
		Algorithm: algorithm,
		Redis:     f.redis,
		Logger:    f.logger,
	})
}

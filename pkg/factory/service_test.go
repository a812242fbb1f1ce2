package factory

import (
	"testing"
	"time"

	pkgredis "github.com/akeren/waitlist-api/pkg/redis"
	"github.com/akeren/waitlist-api/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestCreateRateLimiter_InMemoryWithoutRedis(t *testing.T) {
	f := NewDefaultRateLimiterFactory(nil, nil)

	assert.False(t, f.Distributed())
	assert.IsType(t, &ratelimit.InMemorySlidingWindowLimiter{}, f.CreateRateLimiter(2, time.Minute, ratelimit.SlidingWindow))
	assert.IsType(t, &ratelimit.InMemoryRateLimiter{}, f.CreateRateLimiter(100, time.Minute, ratelimit.TokenBucket))
}

func TestCreateRateLimiter_RedisWhenCacheExposesClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	f := NewDefaultRateLimiterFactory(pkgredis.NewRedisCacheFromClient(client), nil)

	assert.True(t, f.Distributed())
	limiter := f.CreateRateLimiter(2, time.Minute, ratelimit.SlidingWindow)
	assert.IsType(t, &ratelimit.RedisRateLimiter{}, limiter)

	requests, window := limiter.GetLimitDetails()
	assert.Equal(t, 2, requests)
	assert.Equal(t, time.Minute, window)
}

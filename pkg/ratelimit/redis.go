package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Atomic sliding window over a sorted set scored in milliseconds.
// Returns {limited, count, retry_after_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
	local retry = window
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if oldest[2] then
		retry = tonumber(oldest[2]) + window - now
	end
	return {1, count, retry}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)

return {0, count + 1, 0}
`)

func generateUniqueID() string {
	bytes := make([]byte, 8)

	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// RedisRateLimiter implements sliding window rate limiting for distributed systems
type RedisRateLimiter struct {
	client    *redis.Client
	requests  int
	window    time.Duration
	keyPrefix string
	logger    Logger
}

func NewRedisRateLimiter(client *redis.Client, requests int, window time.Duration, logger Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		requests:  requests,
		window:    window,
		keyPrefix: "ratelimit:",
		logger:    logger,
	}
}

func (r *RedisRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	fullKey := normalizeKey(key)
	if r.keyPrefix != "" && !strings.HasPrefix(fullKey, r.keyPrefix) {
		fullKey = r.keyPrefix + fullKey
	}

	now := time.Now().UnixMilli()
	windowMs := r.window.Milliseconds()

	raw, err := slidingWindowScript.Run(ctx, r.client, []string{fullKey}, now, windowMs, r.requests, generateUniqueID()).Result()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script execution failed", "key", fullKey, "error", err)
		}
		// The caller decides whether a store error admits the request.
		return Decision{}, fmt.Errorf("rate limiter Redis error: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return Decision{}, fmt.Errorf("rate limiter Redis error: unexpected reply %v", raw)
	}

	limited, _ := values[0].(int64)
	count, _ := values[1].(int64)
	retryMs, _ := values[2].(int64)

	return Decision{
		Allowed:    limited == 0,
		Limit:      r.requests,
		Remaining:  max(0, r.requests-int(count)),
		RetryAfter: time.Duration(retryMs) * time.Millisecond,
	}, nil
}

// The Redis client is owned by the ApplicationConfig and closed there
func (r *RedisRateLimiter) Close() error {
	return nil
}

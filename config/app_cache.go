package config

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/akeren/waitlist-api/internal/log"
	pkgredis "github.com/akeren/waitlist-api/pkg/redis"
	"github.com/akeren/waitlist-api/pkg/retry"
	"github.com/akeren/waitlist-api/pkg/utils"
	"github.com/go-redis/redis/v8"
)

type Cache interface {
	// Get returns ("", nil) when a key is not found.
	Get(ctx context.Context, key string) (string, error)
	// Set uses ttl=0 for no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisClientProvider is implemented by caches that expose the underlying
// client, which the rate limiter needs for its Lua script.
type RedisClientProvider interface {
	GetClient() *redis.Client
}

var ErrCacheNotConfigured = errors.New("cache host is not configured")

type CacheConfig struct {
	URL      string
	Host     string
	Port     string
	Password string

	// StartupCheck governs the startup connectivity check.
	StartupCheck *retry.Config
}

func NewCacheConfig() *CacheConfig {
	return &CacheConfig{
		URL:      sanitizeEnv(os.Getenv("REDIS_URL")),
		Host:     sanitizeEnv(os.Getenv("REDIS_HOST")),
		Port:     utils.GetEnvTrimmedOrDefault("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		StartupCheck: &retry.Config{
			MaxAttempts: 3,
			BaseDelay:   200 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			Multiplier:  2,
		},
	}
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.URL != "" || cc.Host != ""
}

// NewCache connects and pings Redis, retrying transient failures so a cache
// that starts alongside the API is not dropped on boot.
func (cc *CacheConfig) NewCache(ctx context.Context, logger *log.Logger) (Cache, error) {
	if !cc.IsConfigured() {
		return nil, ErrCacheNotConfigured
	}

	cache, err := pkgredis.NewRedisCache(&pkgredis.Config{
		URL:         cc.URL,
		Host:        cc.Host,
		Port:        cc.Port,
		Password:    cc.Password,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		logger.Error("Failed to create Cache (Redis)", "error", err)
		return nil, err
	}

	checkCfg := *cc.StartupCheck
	checkCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn("Cache (Redis) not reachable yet; retrying", "attempt", attempt, "delay", delay, "error", err)
	}

	err = retry.NewExponentialBackoff(&checkCfg).Execute(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return cache.Ping(pingCtx)
	})
	if err != nil {
		_ = cache.Close()
		logger.Error("Cache (Redis) ping failed", "error", err)
		return nil, err
	}

	logger.Info("Cache (Redis) connected successfully")
	return cache, nil
}

// NewCacheOrNil degrades to no cache: limiters fall back to memory and
// referrer lookups go straight to the store.
func (cc *CacheConfig) NewCacheOrNil(ctx context.Context, logger *log.Logger) Cache {
	if !cc.IsConfigured() {
		logger.Warn("Cache (Redis) is not configured; rate limits are per-instance")
		return nil
	}

	cache, err := cc.NewCache(ctx, logger)
	if err != nil {
		logger.Error("Proceeding without cache (Redis)", "error", err)
		return nil
	}

	return cache
}

func CloseCache(cache Cache, logger *log.Logger) error {
	if cache == nil {
		return nil
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close cache", "error", err)
		return err
	}

	logger.Info("Cache connection closed")
	return nil
}

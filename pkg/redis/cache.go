package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-redis/redis/v8"
)

type Config struct {
	// URL takes precedence over the discrete fields when set (redis://, rediss://).
	URL      string
	Host     string
	Port     string
	Password string
	DB       int

	DialTimeout time.Duration
}

func (c *Config) options() (*redis.Options, error) {
	if c.URL != "" {
		opts, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
		if c.DialTimeout > 0 {
			opts.DialTimeout = c.DialTimeout
		}
		return opts, nil
	}

	if c.Host == "" {
		return nil, errors.New("redis: host is required")
	}

	port := c.Port
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:        net.JoinHostPort(c.Host, port),
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: c.DialTimeout,
	}, nil
}

// RedisCache is a string cache backed by a single Redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache builds the client without dialing; callers check with Ping.
func NewRedisCache(cfg *Config) (*RedisCache, error) {
	if cfg == nil {
		return nil, errors.New("redis: config is required")
	}

	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns ("", nil) when the key does not exist.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis: get %q: %w", key, err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: delete %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetClient() *redis.Client {
	return c.client
}

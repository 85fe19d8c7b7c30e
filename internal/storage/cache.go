package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/config"
	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
)

// ErrCacheMiss is returned by Get when the key is absent or the cache is down.
var ErrCacheMiss = errors.New("cache miss")

const cacheOpTimeout = 2 * time.Second

// RedisCache stores JSON values with a fixed TTL. A RedisCache whose server
// was unreachable at startup behaves as an always-empty cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache connects to redis. Connection failures are logged and the
// returned cache is disabled.
func NewRedisCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) *RedisCache {
	logger = logging.OrNop(logger).Named("cache")
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		logger.Warn("failed to connect to redis, retrieval will work without caching",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return &RedisCache{ttl: cfg.TTL, logger: logger}
	}
	logger.Info("connected to redis cache", zap.String("addr", cfg.RedisAddr))
	return &RedisCache{client: client, ttl: cfg.TTL, logger: logger}
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logging.OrNop(logger).Named("cache")}
}

// Enabled reports whether a redis connection is in use.
func (c *RedisCache) Enabled() bool { return c != nil && c.client != nil }

// Get decodes the value stored at key into dst.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) error {
	if !c.Enabled() {
		return ErrCacheMiss
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// Set stores v at key for the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Ping reports the redis connection state for health checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return errors.New("redis not available")
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

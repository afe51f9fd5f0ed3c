package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/metrics"
)

// RedisCache is a Cache implementation backed by Redis, letting multiple
// server replicas share one scan cache.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedisCache creates a Redis-backed cache and verifies connectivity
func NewRedisCache(cfg *config.RedisConfig, defaultTTL time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "courtside"
	}

	return &RedisCache{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

func (rc *RedisCache) wrapKey(key string) string {
	return rc.prefix + ":" + key
}

// Get retrieves a cached batch
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := rc.client.Get(ctx, rc.wrapKey(key)).Bytes()
	if err != nil {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return data, true
}

// Put stores a batch under the key; ttl <= 0 uses the default TTL
func (rc *RedisCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}
	if err := rc.client.Set(ctx, rc.wrapKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Has reports whether a live entry exists
func (rc *RedisCache) Has(ctx context.Context, key string) bool {
	n, err := rc.client.Exists(ctx, rc.wrapKey(key)).Result()
	return err == nil && n > 0
}

// Invalidate removes all entries belonging to the scope using SCAN so the
// server is never blocked by a KEYS call.
func (rc *RedisCache) Invalidate(ctx context.Context, scope Scope) error {
	pattern := rc.wrapKey(ScopePrefix(scope)) + "*"

	iter := rc.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to delete cache key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys for scope %s: %w", scope, err)
	}
	return nil
}

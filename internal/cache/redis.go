package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sidirok-cf-server/internal/domain"
)

// KeyPrefix namespaces every key this server writes to Redis.
const KeyPrefix = "sidirok:"

// cachedSnapshot is the Redis value format.
type cachedSnapshot struct {
	Data      *domain.KnowledgeBase `json:"data"`
	CachedAt  time.Time             `json:"cached_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// RedisCache is the shared tier.
type RedisCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
	stats      counters
}

// NewRedisCache connects to config.RedisURL and verifies the connection.
func NewRedisCache(config domain.CacheConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheFromClient(client, config.DefaultTTL), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, defaultTTL time.Duration) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &RedisCache{
		redis:      client,
		defaultTTL: defaultTTL,
	}
}

func (c *RedisCache) Name() string { return "redis" }

// Get returns the cached snapshot. Corrupt or expired entries are removed and reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*domain.KnowledgeBase, bool, error) {
	key = KeyPrefix + key

	val, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.stats.record(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get snapshot cache: %w", err)
	}

	var cached cachedSnapshot
	if err := json.Unmarshal(val, &cached); err != nil || cached.Data == nil {
		c.redis.Del(ctx, key)
		c.stats.record(false)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		c.stats.record(false)
		return nil, false, nil
	}

	c.stats.record(true)
	return cached.Data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, kb *domain.KnowledgeBase) error {
	now := time.Now()
	cached := cachedSnapshot{
		Data:      kb,
		CachedAt:  now,
		ExpiresAt: now.Add(c.defaultTTL),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return c.redis.Set(ctx, KeyPrefix+key, jsonData, c.defaultTTL).Err()
}

// Invalidate removes every key under KeyPrefix.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := c.redis.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

func (c *RedisCache) Stats() Stats {
	return c.stats.snapshot()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.redis.Close()
}

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidirok-cf-server/internal/catalog"
	"github.com/sidirok-cf-server/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(4, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.False(t, ok)

	kb := catalog.Default()
	require.NoError(t, cache.Set(ctx, SnapshotKey, kb))

	got, ok, err := cache.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, kb, got)

	assert.Equal(t, Stats{Hits: 1, Misses: 1}, cache.Stats())
	assert.Equal(t, "memory", cache.Name())
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache(4, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, SnapshotKey, catalog.Default()))
	time.Sleep(60 * time.Millisecond)

	_, ok, _ := cache.Get(ctx, SnapshotKey)
	assert.False(t, ok, "entry should have expired")
}

func TestMemoryCache_Invalidate(t *testing.T) {
	cache := NewMemoryCache(0, 0)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, SnapshotKey, catalog.Default()))
	require.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Invalidate(ctx))
	assert.Equal(t, 0, cache.Len())
}

func redisTestCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis tests")
	}

	cache, err := NewRedisCache(domain.CacheConfig{RedisURL: url, DefaultTTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() {
		cache.Invalidate(context.Background())
		cache.Close()
	})
	return cache
}

func TestRedisCache_RoundTrip(t *testing.T) {
	cache := redisTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Invalidate(ctx))

	_, ok, err := cache.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.False(t, ok)

	kb := catalog.Default()
	require.NoError(t, cache.Set(ctx, SnapshotKey, kb))

	got, ok, err := cache.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Rules, len(kb.Rules))
	assert.Equal(t, kb.Diseases, got.Diseases)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, Stats{Hits: 1, Misses: 2}, cache.Stats())
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	cache := redisTestCache(t)
	ctx := context.Background()

	opts, err := redis.ParseURL(os.Getenv("TEST_REDIS_URL"))
	require.NoError(t, err)
	raw := redis.NewClient(opts)
	defer raw.Close()
	require.NoError(t, raw.Set(ctx, KeyPrefix+SnapshotKey, "{not json", time.Minute).Err())

	_, ok, err := cache.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := raw.Exists(ctx, KeyPrefix+SnapshotKey).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "corrupt entry should be deleted")
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache(domain.CacheConfig{RedisURL: "not-a-url"})
	assert.Error(t, err)
}

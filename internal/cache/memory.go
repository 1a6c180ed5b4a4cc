package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/sidirok-cf-server/internal/domain"
)

const (
	defaultMemoryItems = 16
	defaultMemoryTTL   = time.Minute
)

// MemoryCache is the in-process tier.
type MemoryCache struct {
	lru   *expirable.LRU[string, *domain.KnowledgeBase]
	stats counters
}

// NewMemoryCache creates a memory tier holding at most size entries for ttl.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = defaultMemoryItems
	}
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, *domain.KnowledgeBase](size, nil, ttl),
	}
}

func (m *MemoryCache) Name() string { return "memory" }

// Get returns the cached snapshot. Callers must not modify it.
func (m *MemoryCache) Get(_ context.Context, key string) (*domain.KnowledgeBase, bool, error) {
	kb, ok := m.lru.Get(key)
	m.stats.record(ok)
	return kb, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, kb *domain.KnowledgeBase) error {
	m.lru.Add(key, kb)
	return nil
}

func (m *MemoryCache) Invalidate(_ context.Context) error {
	m.lru.Purge()
	return nil
}

// Len returns the number of live entries.
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

func (m *MemoryCache) Stats() Stats {
	return m.stats.snapshot()
}

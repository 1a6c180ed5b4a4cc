// Package cache holds knowledge base snapshots so diagnoses do not hit the
// store on every request. Tier 1 is an in-process expirable LRU, tier 2 an
// optional Redis shared by every server instance.
package cache

import (
	"context"
	"sync/atomic"

	"github.com/sidirok-cf-server/internal/domain"
)

// SnapshotKey is the key under which the full knowledge base is cached.
const SnapshotKey = "knowledge:snapshot"

// Tier is one level of the snapshot cache.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) (*domain.KnowledgeBase, bool, error)
	Set(ctx context.Context, key string, kb *domain.KnowledgeBase) error
	Invalidate(ctx context.Context) error
}

// Stats counts lookups on one tier.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *counters) record(hit bool) {
	if hit {
		c.hits.Add(1)
		return
	}
	c.misses.Add(1)
}

func (c *counters) snapshot() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Package cache provides the process-scoped season snapshot cache.
//
// The cache deliberately has no write invalidation: a pick submitted
// inside the TTL window does not evict the snapshot, and staleness up to
// the TTL is an accepted trade-off, not a correctness bug. The instance
// is passed explicitly to whoever constructs the aggregator so a shared
// backend can be swapped in behind the same surface.
package cache

import (
	"sync"
	"time"

	"github.com/backmarker/backmarker/internal/domain/types"
	"github.com/backmarker/backmarker/pkg/metrics"
)

const defaultTTL = 5 * time.Minute

// Option applies a configuration option to the SnapshotCache.
type Option func(*SnapshotCache)

// WithTTL sets how long a stored snapshot is served before expiring.
func WithTTL(ttl time.Duration) Option {
	return func(c *SnapshotCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source, for deterministic expiry in tests.
func WithClock(now func() time.Time) Option {
	return func(c *SnapshotCache) {
		if now != nil {
			c.now = now
		}
	}
}

type entry struct {
	value    any
	storedAt time.Time
}

// SnapshotCache memoizes season snapshots with time-based expiry. Writes
// are whole-value replacements, so a single mutex suffices.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[int]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a snapshot cache with configuration options.
func New(opts ...Option) *SnapshotCache {
	c := &SnapshotCache{
		entries: make(map[int]entry),
		ttl:     defaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot for the season, or a miss. An expired
// or malformed entry is dropped and reported as a miss; the caller
// recomputes rather than trusting it.
func (c *SnapshotCache) Get(season int) (*types.Snapshot, bool) {
	c.mu.RLock()
	e, ok := c.entries[season]
	c.mu.RUnlock()

	if !ok {
		metrics.RecordCacheMiss()
		return nil, false
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		c.evict(season)
		metrics.RecordCacheMiss()
		return nil, false
	}

	snap, ok := e.value.(*types.Snapshot)
	if !ok || snap == nil {
		// Corruption or type mismatch; never serve it.
		c.evict(season)
		metrics.RecordCacheMiss()
		return nil, false
	}

	metrics.RecordCacheHit()
	return snap, true
}

// Put stores a snapshot for the season, replacing any previous value.
// Concurrent writers race benignly; last write wins.
func (c *SnapshotCache) Put(season int, snap *types.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[season] = entry{value: snap, storedAt: c.now()}
}

// Len returns the number of stored snapshots, expired or not.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops every stored snapshot.
func (c *SnapshotCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]entry)
}

func (c *SnapshotCache) evict(season int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, season)
	metrics.RecordCacheEviction()
}

package reconcile

import (
	"context"
	"sync"
	"time"

	"collection-reconciler/core/document"

	"golang.org/x/sync/singleflight"
)

// Snapshot holds both sides of a collection as fetched at one point in time.
type Snapshot struct {
	// Source is the list of documents fetched from the source database.
	Source []document.Document

	// Target is the list of documents fetched from the target database.
	Target []document.Document

	// Built is the timestamp when this snapshot was fetched.
	Built time.Time

	// TTL is the time-to-live for this snapshot.
	TTL time.Duration
}

// IsExpired returns true if this snapshot has expired based on its TTL.
func (s *Snapshot) IsExpired(now time.Time) bool {
	if s.TTL == 0 {
		return true // No caching
	}
	return now.Sub(s.Built) > s.TTL
}

// LoadFunc fetches both sides of a collection.
type LoadFunc func(ctx context.Context) (source, target []document.Document, err error)

// SnapshotCache keeps recently fetched snapshots keyed by CollectionSpec.CacheKey.
// Concurrent loads of the same key share one fetch.
type SnapshotCache struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	sf        singleflight.Group
	ttl       time.Duration
	now       func() time.Time
}

// NewSnapshotCache creates a cache. A zero ttl disables caching: every Get loads.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		snapshots: make(map[string]*Snapshot),
		ttl:       ttl,
		now:       time.Now,
	}
}

// TTL returns the configured time-to-live.
func (c *SnapshotCache) TTL() time.Duration {
	return c.ttl
}

// Get retrieves a snapshot for the given spec from the cache,
// or loads a new one if it doesn't exist or has expired.
// Uses singleflight to prevent cache stampedes.
func (c *SnapshotCache) Get(ctx context.Context, spec CollectionSpec, load LoadFunc) (*Snapshot, error) {
	key := spec.CacheKey()

	// Fast path: check if snapshot exists and is fresh
	if snap := c.lookup(key); snap != nil {
		return snap, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		if snap := c.lookup(key); snap != nil {
			return snap, nil
		}

		source, target, err := load(ctx)
		if err != nil {
			return nil, err
		}

		snap := &Snapshot{
			Source: source,
			Target: target,
			Built:  c.now(),
			TTL:    c.ttl,
		}

		if c.ttl > 0 {
			c.mu.Lock()
			c.snapshots[key] = snap
			c.mu.Unlock()
		}

		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Snapshot), nil
}

func (c *SnapshotCache) lookup(key string) *Snapshot {
	c.mu.RLock()
	snap, ok := c.snapshots[key]
	c.mu.RUnlock()

	if ok && !snap.IsExpired(c.now()) {
		return snap
	}
	return nil
}

// Invalidate removes the snapshot for the given spec, forcing the next Get to load.
func (c *SnapshotCache) Invalidate(spec CollectionSpec) {
	c.mu.Lock()
	delete(c.snapshots, spec.CacheKey())
	c.mu.Unlock()
}

// Len returns the number of stored snapshots.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}

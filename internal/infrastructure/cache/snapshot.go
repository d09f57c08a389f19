package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Loader builds the snapshot of one tenant
type Loader[T any] func(ctx context.Context) (T, error)

// Stats are the cumulative counters of a snapshot cache
type Stats struct {
	Hits          uint64
	Misses        uint64
	Loads         uint64
	LoadErrors    uint64
	Invalidations uint64
	Entries       int
}

// HitRatio is hits over lookups, 0 before the first lookup
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type snapshotEntry[T any] struct {
	value    T
	loadedAt time.Time
}

// SnapshotCache keeps one immutable snapshot per tenant. Concurrent misses
// for the same tenant share a single load. A snapshot loaded while an
// invalidation happened is returned to its callers but never stored.
type SnapshotCache[T any] struct {
	name  string
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu         sync.RWMutex
	entries    map[uuid.UUID]snapshotEntry[T]
	generation map[uuid.UUID]uint64
	epoch      uint64

	hits, misses, loads, loadErrors, invalidations atomic.Uint64
}

// NewSnapshotCache creates a cache; ttl <= 0 keeps snapshots until invalidated
func NewSnapshotCache[T any](name string, ttl time.Duration) *SnapshotCache[T] {
	return &SnapshotCache[T]{
		name:       name,
		ttl:        ttl,
		now:        time.Now,
		entries:    make(map[uuid.UUID]snapshotEntry[T]),
		generation: make(map[uuid.UUID]uint64),
	}
}

// Name identifies the cache in invalidation messages and metrics
func (c *SnapshotCache[T]) Name() string { return c.name }

// Get returns the tenant snapshot, loading it on a miss or after expiry
func (c *SnapshotCache[T]) Get(ctx context.Context, tenantID uuid.UUID, load Loader[T]) (T, error) {
	c.mu.RLock()
	e, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if ok && !c.expired(e) {
		c.hits.Add(1)
		return e.value, nil
	}
	c.misses.Add(1)

	// The shared load outlives any one caller; each caller still stops
	// waiting when its own context ends.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(tenantID.String(), func() (interface{}, error) {
		gen := c.generationOf(tenantID)
		c.loads.Add(1)
		value, err := load(loadCtx)
		if err != nil {
			c.loadErrors.Add(1)
			return nil, err
		}
		c.mu.Lock()
		if c.generation[tenantID]+c.epoch == gen {
			c.entries[tenantID] = snapshotEntry[T]{value: value, loadedAt: c.now()}
		}
		c.mu.Unlock()
		return value, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *SnapshotCache[T]) generationOf(tenantID uuid.UUID) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation[tenantID] + c.epoch
}

func (c *SnapshotCache[T]) expired(e snapshotEntry[T]) bool {
	return c.ttl > 0 && c.now().Sub(e.loadedAt) >= c.ttl
}

// Invalidate drops the snapshot of one tenant
func (c *SnapshotCache[T]) Invalidate(tenantID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, tenantID)
	c.generation[tenantID]++
	c.mu.Unlock()
	c.invalidations.Add(1)
}

// InvalidateAll drops every snapshot
func (c *SnapshotCache[T]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]snapshotEntry[T])
	c.epoch++
	c.mu.Unlock()
	c.invalidations.Add(1)
}

// Stats returns the counters
func (c *SnapshotCache[T]) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Loads:         c.loads.Load(),
		LoadErrors:    c.loadErrors.Load(),
		Invalidations: c.invalidations.Load(),
		Entries:       n,
	}
}

// Invalidatable is the type-erased view used by the invalidation hub
type Invalidatable interface {
	Name() string
	Invalidate(tenantID uuid.UUID)
	InvalidateAll()
	Stats() Stats
}

var _ Invalidatable = (*SnapshotCache[int])(nil)

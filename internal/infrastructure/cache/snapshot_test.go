package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(calls *atomic.Int32, value string) Loader[string] {
	return func(ctx context.Context) (string, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestSnapshotCache_HitAndMiss(t *testing.T) {
	c := NewSnapshotCache[string]("rules", time.Minute)
	tenant := uuid.New()
	var calls atomic.Int32

	v, err := c.Get(context.Background(), tenant, countingLoader(&calls, "v1"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	v, err = c.Get(context.Background(), tenant, countingLoader(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v, "second read is served from the cache")
	assert.Equal(t, int32(1), calls.Load())

	st := c.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Entries)
	assert.InDelta(t, 0.5, st.HitRatio(), 0.0001)
}

func TestSnapshotCache_TenantsAreIsolated(t *testing.T) {
	c := NewSnapshotCache[string]("rules", 0)
	var calls atomic.Int32
	a, _ := c.Get(context.Background(), uuid.New(), countingLoader(&calls, "a"))
	b, _ := c.Get(context.Background(), uuid.New(), countingLoader(&calls, "b"))
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSnapshotCache_TTL(t *testing.T) {
	c := NewSnapshotCache[string]("flags", time.Minute)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	tenant := uuid.New()
	var calls atomic.Int32

	_, _ = c.Get(context.Background(), tenant, countingLoader(&calls, "old"))
	now = now.Add(59 * time.Second)
	v, _ := c.Get(context.Background(), tenant, countingLoader(&calls, "new"))
	assert.Equal(t, "old", v)

	now = now.Add(time.Second)
	v, _ = c.Get(context.Background(), tenant, countingLoader(&calls, "new"))
	assert.Equal(t, "new", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	c := NewSnapshotCache[string]("rules", 0)
	t1, t2 := uuid.New(), uuid.New()
	var calls atomic.Int32
	_, _ = c.Get(context.Background(), t1, countingLoader(&calls, "x"))
	_, _ = c.Get(context.Background(), t2, countingLoader(&calls, "y"))

	c.Invalidate(t1)
	assert.Equal(t, 1, c.Stats().Entries)
	v, _ := c.Get(context.Background(), t1, countingLoader(&calls, "x2"))
	assert.Equal(t, "x2", v)

	c.InvalidateAll()
	assert.Equal(t, 0, c.Stats().Entries)
	assert.Equal(t, uint64(2), c.Stats().Invalidations)
}

func TestSnapshotCache_LoadErrorIsNotCached(t *testing.T) {
	c := NewSnapshotCache[string]("rules", 0)
	tenant := uuid.New()
	boom := errors.New("db down")

	_, err := c.Get(context.Background(), tenant, func(ctx context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	var calls atomic.Int32
	v, err := c.Get(context.Background(), tenant, countingLoader(&calls, "ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, uint64(1), c.Stats().LoadErrors)
}

func TestSnapshotCache_SingleFlight(t *testing.T) {
	c := NewSnapshotCache[string]("rules", 0)
	tenant := uuid.New()
	release := make(chan struct{})
	var calls atomic.Int32
	loader := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const readers = 8
	var started, wg sync.WaitGroup
	started.Add(readers)
	wg.Add(readers)
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], _ = c.Get(context.Background(), tenant, loader)
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestSnapshotCache_InvalidationDuringLoadIsNotStored(t *testing.T) {
	c := NewSnapshotCache[string]("rules", 0)
	tenant := uuid.New()

	v, err := c.Get(context.Background(), tenant, func(ctx context.Context) (string, error) {
		c.Invalidate(tenant)
		return "stale", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "stale", v)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestSnapshotCache_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	c := NewSnapshotCache[string]("rules", 0)
	tenant := uuid.New()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	load := func(ctx context.Context) (string, error) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "rules", nil
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(firstCtx, tenant, load)
		firstErr <- err
	}()
	<-started

	type result struct {
		v   string
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := c.Get(context.Background(), tenant, load)
		second <- result{v, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	// Give the second caller time to join the in-flight load
	time.Sleep(20 * time.Millisecond)
	close(release)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "rules", got.v)
	assert.Equal(t, int32(1), calls.Load())

	v, err := c.Get(context.Background(), tenant, load)
	require.NoError(t, err)
	assert.Equal(t, "rules", v, "the shared load was stored")
	assert.Equal(t, uint64(0), c.Stats().LoadErrors)
}

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBroadcaster connects hubs in the same process
type memoryBroadcaster struct {
	mu   sync.Mutex
	subs []chan Invalidation
	fail bool
}

func (b *memoryBroadcaster) Publish(_ context.Context, msg Invalidation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("redis unavailable")
	}
	for _, s := range b.subs {
		s <- msg
	}
	return nil
}

func (b *memoryBroadcaster) Subscribe(ctx context.Context, fn func(Invalidation)) error {
	ch := make(chan Invalidation, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-ch:
			fn(m)
		}
	}
}

func (b *memoryBroadcaster) Close() error { return nil }

func (b *memoryBroadcaster) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func warm(t *testing.T, c *SnapshotCache[string], tenant uuid.UUID) {
	t.Helper()
	_, err := c.Get(context.Background(), tenant, func(ctx context.Context) (string, error) { return "v", nil })
	require.NoError(t, err)
}

func TestHub_LocalInvalidation(t *testing.T) {
	hub := NewHub(nil, nil)
	rules := NewSnapshotCache[string]("rules", 0)
	flags := NewSnapshotCache[string]("flags", 0)
	hub.Register(rules)
	hub.Register(flags)
	tenant := uuid.New()
	warm(t, rules, tenant)
	warm(t, flags, tenant)

	hub.For("rules").Invalidate(context.Background(), tenant)
	assert.Equal(t, 0, rules.Stats().Entries)
	assert.Equal(t, 1, flags.Stats().Entries)

	hub.For("flags").InvalidateAll(context.Background())
	assert.Equal(t, 0, flags.Stats().Entries)

	stats := hub.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "flags", stats[0].Name)
}

func TestHub_BroadcastsToPeers(t *testing.T) {
	bus := &memoryBroadcaster{}
	local, peer := NewHub(bus, nil), NewHub(bus, nil)
	localRules, peerRules := NewSnapshotCache[string]("rules", 0), NewSnapshotCache[string]("rules", 0)
	local.Register(localRules)
	peer.Register(peerRules)
	tenant := uuid.New()
	warm(t, localRules, tenant)
	warm(t, peerRules, tenant)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = peer.Run(ctx) }()
	go func() { _ = local.Run(ctx) }()
	require.Eventually(t, func() bool { return bus.subscribers() == 2 }, time.Second, 5*time.Millisecond)

	local.Invalidate(ctx, "rules", tenant)
	assert.Equal(t, 0, localRules.Stats().Entries)
	require.Eventually(t, func() bool { return peerRules.Stats().Entries == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_PublishFailureKeepsLocalInvalidation(t *testing.T) {
	bus := &memoryBroadcaster{fail: true}
	hub := NewHub(bus, nil)
	rules := NewSnapshotCache[string]("rules", 0)
	hub.Register(rules)
	tenant := uuid.New()
	warm(t, rules, tenant)

	hub.Invalidate(context.Background(), "rules", tenant)
	assert.Equal(t, 0, rules.Stats().Entries)
}

func TestHub_UnknownCacheIsIgnored(t *testing.T) {
	hub := NewHub(nil, nil)
	assert.NotPanics(t, func() { hub.Invalidate(context.Background(), "missing", uuid.New()) })
}

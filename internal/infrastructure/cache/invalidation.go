package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCloseTimeout = 5 * time.Second

// Invalidation tells other instances to drop a snapshot
type Invalidation struct {
	Cache     string    `json:"cache"`
	TenantID  uuid.UUID `json:"tenant_id"`
	All       bool      `json:"all,omitempty"`
	Origin    string    `json:"origin"`
	Timestamp int64     `json:"ts"`
}

// Broadcaster fans invalidations out to the other instances
type Broadcaster interface {
	Publish(ctx context.Context, msg Invalidation) error
	// Subscribe blocks, invoking fn for every received message, until ctx ends
	Subscribe(ctx context.Context, fn func(Invalidation)) error
	Close() error
}

// Hub owns the snapshot caches of the process. Writes invalidate the local
// cache immediately and are broadcast when a Broadcaster is configured.
type Hub struct {
	mu          sync.RWMutex
	caches      map[string]Invalidatable
	broadcaster Broadcaster
	origin      string
	logger      *zap.Logger
}

// NewHub creates a hub; broadcaster may be nil for single-instance setups
func NewHub(broadcaster Broadcaster, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		caches:      make(map[string]Invalidatable),
		broadcaster: broadcaster,
		origin:      uuid.NewString(),
		logger:      logger.Named("cache"),
	}
}

// Register adds a cache to the hub
func (h *Hub) Register(c Invalidatable) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.caches[c.Name()] = c
}

// Invalidate drops a tenant snapshot locally and on the other instances
func (h *Hub) Invalidate(ctx context.Context, cache string, tenantID uuid.UUID) {
	h.apply(Invalidation{Cache: cache, TenantID: tenantID})
	h.publish(ctx, Invalidation{Cache: cache, TenantID: tenantID})
}

// InvalidateAll drops every snapshot of a cache everywhere
func (h *Hub) InvalidateAll(ctx context.Context, cache string) {
	h.apply(Invalidation{Cache: cache, All: true})
	h.publish(ctx, Invalidation{Cache: cache, All: true})
}

func (h *Hub) publish(ctx context.Context, msg Invalidation) {
	if h.broadcaster == nil {
		return
	}
	msg.Origin = h.origin
	msg.Timestamp = time.Now().UnixNano()
	// Local state is already correct; peers fall back to their TTL
	if err := h.broadcaster.Publish(ctx, msg); err != nil {
		h.logger.Warn("Failed to broadcast cache invalidation",
			zap.String("cache", msg.Cache),
			zap.Error(err))
	}
}

func (h *Hub) apply(msg Invalidation) {
	h.mu.RLock()
	c, ok := h.caches[msg.Cache]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if msg.All {
		c.InvalidateAll()
		return
	}
	c.Invalidate(msg.TenantID)
}

// Run applies invalidations from other instances until ctx is cancelled
func (h *Hub) Run(ctx context.Context) error {
	if h.broadcaster == nil {
		<-ctx.Done()
		return nil
	}
	return h.broadcaster.Subscribe(ctx, func(msg Invalidation) {
		if msg.Origin == h.origin {
			return
		}
		h.logger.Debug("Applying remote cache invalidation",
			zap.String("cache", msg.Cache),
			zap.String("tenant_id", msg.TenantID.String()),
			zap.Bool("all", msg.All))
		h.apply(msg)
	})
}

// For returns an invalidator bound to one cache
func (h *Hub) For(cache string) *TenantInvalidator {
	return &TenantInvalidator{hub: h, cache: cache}
}

// Stats returns the counters of every registered cache, sorted by name
func (h *Hub) Stats() []NamedStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]NamedStats, 0, len(h.caches))
	for name, c := range h.caches {
		out = append(out, NamedStats{Name: name, Stats: c.Stats()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NamedStats pairs a cache name with its counters
type NamedStats struct {
	Name string
	Stats
}

// TenantInvalidator invalidates one cache through the hub
type TenantInvalidator struct {
	hub   *Hub
	cache string
}

func (t *TenantInvalidator) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	t.hub.Invalidate(ctx, t.cache, tenantID)
}

func (t *TenantInvalidator) InvalidateAll(ctx context.Context) {
	t.hub.InvalidateAll(ctx, t.cache)
}

// RedisInvalidationBroadcaster broadcasts invalidations over Redis pub/sub
type RedisInvalidationBroadcaster struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger

	mu       sync.Mutex
	running  bool
	cancelFn context.CancelFunc
	doneCh   chan struct{}
	doneOnce sync.Once
}

// NewRedisInvalidationBroadcaster uses a shared client; the caller closes it
func NewRedisInvalidationBroadcaster(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisInvalidationBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisInvalidationBroadcaster{
		client:  client,
		channel: channel,
		logger:  logger,
		doneCh:  make(chan struct{}),
	}
}

func (b *RedisInvalidationBroadcaster) Publish(ctx context.Context, msg Invalidation) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal invalidation: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

func (b *RedisInvalidationBroadcaster) Subscribe(ctx context.Context, fn func(Invalidation)) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	subCtx, cancel := context.WithCancel(ctx)
	b.running = true
	b.cancelFn = cancel
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		b.doneOnce.Do(func() { close(b.doneCh) })
	}()

	pubsub := b.client.Subscribe(subCtx, b.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("Subscribed to cache invalidation channel", zap.String("channel", b.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				b.logger.Warn("Cache invalidation channel closed")
				return nil
			}
			var msg Invalidation
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				b.logger.Error("Failed to decode cache invalidation",
					zap.String("payload", m.Payload),
					zap.Error(err))
				continue
			}
			fn(msg)
		}
	}
}

// Close stops the subscription, waiting a bounded time for it to end
func (b *RedisInvalidationBroadcaster) Close() error {
	b.mu.Lock()
	cancel := b.cancelFn
	b.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-b.doneCh:
	case <-time.After(defaultCloseTimeout):
		b.logger.Warn("Timeout waiting for invalidation subscription to stop")
	}
	return nil
}

var _ Broadcaster = (*RedisInvalidationBroadcaster)(nil)

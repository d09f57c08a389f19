package event

import (
	"context"
	"sync"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"go.uber.org/zap"
)

// OutboxProcessorConfig holds configuration for the outbox processor
type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxProcessorConfig returns default configuration
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// OutboxProcessor relays committed outbox messages to the event bus and
// retries failures with backoff until they are dead-lettered
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	publisher  shared.EventPublisher
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger
	now        func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(
	repo shared.OutboxRepository,
	publisher shared.EventPublisher,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		publisher:  publisher,
		serializer: serializer,
		config:     config,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start starts the background polling loops
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(ctx, p.config.PollInterval, func(ctx context.Context) { _, _ = p.ProcessDue(ctx) })

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.loop(ctx, p.config.CleanupInterval, p.cleanup)
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the processor
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) loop(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	defer p.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// ProcessDue relays one batch of due messages and returns how many were delivered.
// Batches never overlap within one process.
func (p *OutboxProcessor) ProcessDue(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	messages, err := p.repo.FindDue(ctx, p.now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to load due outbox messages", zap.Error(err))
		return 0, err
	}
	delivered := 0
	for _, m := range messages {
		if p.relay(ctx, m) {
			delivered++
		}
	}
	return delivered, nil
}

// relay publishes one message and records the outcome
func (p *OutboxProcessor) relay(ctx context.Context, m *shared.OutboxMessage) bool {
	err := p.publish(ctx, m)
	if err == nil {
		m.MarkDelivered(p.now())
	} else {
		m.MarkFailed(err, p.now())
		fields := []zap.Field{
			zap.String("event_id", m.EventID.String()),
			zap.String("event_type", m.EventType),
			zap.String("aggregate_id", m.AggregateID.String()),
			zap.Int("attempts", m.Attempts),
			zap.Error(err),
		}
		if m.Status == shared.OutboxDead {
			p.logger.Warn("outbox message dead-lettered", fields...)
		} else {
			p.logger.Error("failed to relay outbox message", fields...)
		}
	}
	if updErr := p.repo.Update(ctx, m); updErr != nil {
		p.logger.Error("failed to update outbox message",
			zap.String("event_id", m.EventID.String()),
			zap.Error(updErr))
	}
	return err == nil
}

func (p *OutboxProcessor) publish(ctx context.Context, m *shared.OutboxMessage) error {
	event, err := p.serializer.Deserialize(m.EventType, m.Payload)
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, event)
}

// cleanup removes delivered messages past the retention window
func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := p.now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteDeliveredBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to clean up outbox", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("cleaned up delivered outbox messages",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
}

package event

import (
	"context"
	"errors"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxAdminRepository is the read and requeue side of the outbox used by operators
type OutboxAdminRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxMessage, error)
	FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxMessage, int64, error)
	Update(ctx context.Context, message *shared.OutboxMessage) error
	CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error)
}

// OutboxService handles outbox event management operations
type OutboxService struct {
	repo   OutboxAdminRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewOutboxService creates a new outbox service
func NewOutboxService(repo OutboxAdminRepository, logger *zap.Logger) *OutboxService {
	return &OutboxService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// OutboxMessageDTO is an outbox message without its payload
type OutboxMessageDTO struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	MaxAttempts   int        `json:"max_attempts"`
	LastError     string     `json:"last_error,omitempty"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// OutboxFilter represents filter for querying outbox messages
type OutboxFilter struct {
	Page     int `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// OutboxStatsDTO represents outbox statistics
type OutboxStatsDTO struct {
	Pending   int64 `json:"pending"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dead      int64 `json:"dead"`
	Total     int64 `json:"total"`
}

// ListDead retrieves dead-lettered messages with pagination
func (s *OutboxService) ListDead(ctx context.Context, filter OutboxFilter) (shared.Paginated[OutboxMessageDTO], error) {
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	messages, total, err := s.repo.FindDead(ctx, f.Page, f.PageSize)
	if err != nil {
		s.logger.Error("Failed to find dead outbox messages", zap.Error(err))
		return shared.Paginated[OutboxMessageDTO]{}, shared.NewDomainError("INTERNAL_ERROR", "Failed to retrieve dead outbox messages")
	}
	items := make([]OutboxMessageDTO, len(messages))
	for i, m := range messages {
		items[i] = toOutboxMessageDTO(m)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Get retrieves a single outbox message by ID
func (s *OutboxService) Get(ctx context.Context, id uuid.UUID) (*OutboxMessageDTO, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toOutboxMessageDTO(m)
	return &dto, nil
}

// Requeue resets a dead message so the processor picks it up again
func (s *OutboxService) Requeue(ctx context.Context, id uuid.UUID) (*OutboxMessageDTO, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.Requeue(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		s.logger.Error("Failed to requeue outbox message", zap.Error(err), zap.String("id", id.String()))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to requeue outbox message")
	}

	s.logger.Info("Outbox message requeued",
		zap.String("id", id.String()),
		zap.String("event_type", m.EventType),
	)
	dto := toOutboxMessageDTO(m)
	return &dto, nil
}

// RequeueAllDead requeues every dead message and returns how many were reset
func (s *OutboxService) RequeueAllDead(ctx context.Context) (int64, error) {
	const pageSize = 100
	var count int64
	for {
		// requeued messages leave the dead set, so the first page always holds the rest
		messages, _, err := s.repo.FindDead(ctx, 1, pageSize)
		if err != nil {
			s.logger.Error("Failed to find dead outbox messages", zap.Error(err))
			return count, shared.NewDomainError("INTERNAL_ERROR", "Failed to retrieve dead outbox messages")
		}
		progressed := false
		for _, m := range messages {
			if err := m.Requeue(s.now()); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, m); err != nil {
				s.logger.Error("Failed to requeue outbox message", zap.Error(err), zap.String("id", m.ID.String()))
				continue
			}
			progressed = true
			count++
		}
		if len(messages) < pageSize || !progressed {
			break
		}
	}

	s.logger.Info("Requeued dead outbox messages", zap.Int64("count", count))
	return count, nil
}

// Stats returns message counts per status
func (s *OutboxService) Stats(ctx context.Context) (*OutboxStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to get outbox stats", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to get outbox stats")
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	return &OutboxStatsDTO{
		Pending:   counts[shared.OutboxPending],
		Delivered: counts[shared.OutboxDelivered],
		Failed:    counts[shared.OutboxFailed],
		Dead:      counts[shared.OutboxDead],
		Total:     total,
	}, nil
}

func (s *OutboxService) find(ctx context.Context, id uuid.UUID) (*shared.OutboxMessage, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Outbox message not found")
		}
		s.logger.Error("Failed to find outbox message", zap.Error(err), zap.String("id", id.String()))
		return nil, err
	}
	return m, nil
}

func toOutboxMessageDTO(m *shared.OutboxMessage) OutboxMessageDTO {
	return OutboxMessageDTO{
		ID:            m.ID,
		TenantID:      m.TenantID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Status:        string(m.Status),
		Attempts:      m.Attempts,
		MaxAttempts:   m.MaxAttempts,
		LastError:     m.LastError,
		NextAttemptAt: m.NextAttemptAt,
		DeliveredAt:   m.DeliveredAt,
		CreatedAt:     m.CreatedAt,
	}
}

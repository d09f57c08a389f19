package event

import (
	"context"
	"errors"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOutboxRepository implements shared.OutboxRepository using GORM
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM-based outbox repository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

// Save inserts messages in one statement
func (r *GormOutboxRepository) Save(ctx context.Context, messages ...*shared.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]*models.OutboxMessageModel, len(messages))
	for i, m := range messages {
		rows[i] = models.OutboxMessageModelFromDomain(m)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindDue returns pending or failed messages whose next attempt is due, oldest first
func (r *GormOutboxRepository) FindDue(ctx context.Context, at time.Time, limit int) ([]*shared.OutboxMessage, error) {
	var rows []models.OutboxMessageModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND next_attempt_at <= ?", []shared.OutboxStatus{shared.OutboxPending, shared.OutboxFailed}, at).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*shared.OutboxMessage, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByID returns one message
func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxMessage, error) {
	var row models.OutboxMessageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// FindDead returns dead-lettered messages newest first
func (r *GormOutboxRepository) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxMessage, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OutboxMessageModel{}).Where("status = ?", shared.OutboxDead)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.OutboxMessageModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*shared.OutboxMessage, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Update writes the delivery state of a message
func (r *GormOutboxRepository) Update(ctx context.Context, message *shared.OutboxMessage) error {
	return r.db.WithContext(ctx).
		Model(&models.OutboxMessageModel{}).
		Where("id = ?", message.ID).
		Updates(map[string]any{
			"status":          message.Status,
			"attempts":        message.Attempts,
			"last_error":      message.LastError,
			"next_attempt_at": message.NextAttemptAt,
			"delivered_at":    message.DeliveredAt,
		}).Error
}

// DeleteDeliveredBefore purges relayed messages delivered before the cutoff
func (r *GormOutboxRepository) DeleteDeliveredBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND delivered_at < ?", shared.OutboxDelivered, before).
		Delete(&models.OutboxMessageModel{})
	return result.RowsAffected, result.Error
}

// CountByStatus returns the number of messages per status
func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	type statusCount struct {
		Status shared.OutboxStatus
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.OutboxMessageModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	counts := make(map[shared.OutboxStatus]int64, len(results))
	for _, c := range results {
		counts[c.Status] = c.Count
	}
	return counts, nil
}

// Ensure GormOutboxRepository implements OutboxRepository
var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)

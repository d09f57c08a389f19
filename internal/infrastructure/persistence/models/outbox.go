package models

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// OutboxMessageModel stores a serialized domain event until the relay has
// published it.
type OutboxMessageModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	EventID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string              `gorm:"type:varchar(255);not null"`
	AggregateID   uuid.UUID           `gorm:"type:uuid;not null"`
	AggregateType string              `gorm:"type:varchar(255);not null"`
	Payload       []byte              `gorm:"type:jsonb;not null"`
	Status        shared.OutboxStatus `gorm:"type:varchar(20);default:PENDING;index:idx_outbox_status_next,priority:1"`
	Attempts      int                 `gorm:"default:0"`
	MaxAttempts   int                 `gorm:"default:5"`
	LastError     string              `gorm:"type:text"`
	NextAttemptAt time.Time           `gorm:"not null;index:idx_outbox_status_next,priority:2"`
	DeliveredAt   *time.Time
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OutboxMessageModel) TableName() string {
	return "outbox_messages"
}

// ToDomain converts the persistence model to a domain OutboxMessage
func (m *OutboxMessageModel) ToDomain() *shared.OutboxMessage {
	return &shared.OutboxMessage{
		ID:            m.ID,
		TenantID:      m.TenantID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		Status:        m.Status,
		Attempts:      m.Attempts,
		MaxAttempts:   m.MaxAttempts,
		LastError:     m.LastError,
		NextAttemptAt: m.NextAttemptAt,
		DeliveredAt:   m.DeliveredAt,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain OutboxMessage
func (m *OutboxMessageModel) FromDomain(e *shared.OutboxMessage) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.EventID = e.EventID
	m.EventType = e.EventType
	m.AggregateID = e.AggregateID
	m.AggregateType = e.AggregateType
	m.Payload = e.Payload
	m.Status = e.Status
	m.Attempts = e.Attempts
	m.MaxAttempts = e.MaxAttempts
	m.LastError = e.LastError
	m.NextAttemptAt = e.NextAttemptAt
	m.DeliveredAt = e.DeliveredAt
	m.CreatedAt = e.CreatedAt
}

// OutboxMessageModelFromDomain creates a new persistence model from a domain OutboxMessage
func OutboxMessageModelFromDomain(e *shared.OutboxMessage) *OutboxMessageModel {
	m := &OutboxMessageModel{}
	m.FromDomain(e)
	return m
}

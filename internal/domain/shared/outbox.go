package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox message
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxDelivered OutboxStatus = "DELIVERED"
	OutboxFailed    OutboxStatus = "FAILED"
	OutboxDead      OutboxStatus = "DEAD"
)

const (
	DefaultOutboxMaxAttempts = 5
	outboxBaseBackoff        = 2 * time.Second
	outboxMaxBackoff         = 5 * time.Minute
)

// OutboxMessage is a serialized domain event waiting to be relayed
type OutboxMessage struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	Attempts      int
	MaxAttempts   int
	LastError     string
	NextAttemptAt time.Time
	DeliveredAt   *time.Time
	CreatedAt     time.Time
}

// NewOutboxMessage wraps a serialized event
func NewOutboxMessage(event DomainEvent, payload []byte) *OutboxMessage {
	now := time.Now().UTC()
	return &OutboxMessage{
		ID:            uuid.New(),
		TenantID:      event.TenantID(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxPending,
		MaxAttempts:   DefaultOutboxMaxAttempts,
		NextAttemptAt: now,
		CreatedAt:     now,
	}
}

// MarkDelivered records a successful relay
func (m *OutboxMessage) MarkDelivered(at time.Time) {
	m.Status = OutboxDelivered
	m.DeliveredAt = &at
	m.LastError = ""
}

// MarkFailed records a failed attempt and schedules the next one with
// exponential backoff. After MaxAttempts the message is dead-lettered.
func (m *OutboxMessage) MarkFailed(err error, at time.Time) {
	m.Attempts++
	if err != nil {
		m.LastError = err.Error()
	}
	if m.Attempts >= m.MaxAttempts {
		m.Status = OutboxDead
		return
	}
	backoff := outboxBaseBackoff << uint(m.Attempts-1)
	if backoff > outboxMaxBackoff {
		backoff = outboxMaxBackoff
	}
	m.Status = OutboxFailed
	m.NextAttemptAt = at.Add(backoff)
}

// Due reports whether the message should be attempted at the given time
func (m *OutboxMessage) Due(at time.Time) bool {
	if m.Status != OutboxPending && m.Status != OutboxFailed {
		return false
	}
	return !m.NextAttemptAt.After(at)
}

// Requeue puts a dead message back in the queue with a fresh attempt budget
func (m *OutboxMessage) Requeue(at time.Time) error {
	if m.Status != OutboxDead {
		return NewDomainError("INVALID_STATUS", "Only dead outbox messages can be requeued")
	}
	m.Status = OutboxPending
	m.Attempts = 0
	m.NextAttemptAt = at
	return nil
}

// OutboxRepository persists outbox messages
type OutboxRepository interface {
	Save(ctx context.Context, messages ...*OutboxMessage) error
	// FindDue returns up to limit pending or failed messages whose next attempt is due
	FindDue(ctx context.Context, at time.Time, limit int) ([]*OutboxMessage, error)
	Update(ctx context.Context, message *OutboxMessage) error
	// DeleteDeliveredBefore purges relayed messages older than before
	DeleteDeliveredBefore(ctx context.Context, before time.Time) (int64, error)
}

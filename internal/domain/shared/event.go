package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened inside an aggregate
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent carries the envelope fields shared by every event
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggID         uuid.UUID `json:"aggregate_id"`
	AggType       string    `json:"aggregate_type"`
	TenantIDValue uuid.UUID `json:"tenant_id"`
	ActorID       uuid.UUID `json:"actor_id,omitempty"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.AggType }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.TenantIDValue }

// Actor returns the user who triggered the event, uuid.Nil for system actions
func (e *BaseDomainEvent) Actor() uuid.UUID { return e.ActorID }

// ActorAware is implemented by events that know who caused them
type ActorAware interface {
	Actor() uuid.UUID
}

// NewBaseDomainEvent creates the event envelope
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now().UTC(),
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: tenantID,
	}
}

// WithActor returns a copy of the envelope attributed to actorID
func (e BaseDomainEvent) WithActor(actorID uuid.UUID) BaseDomainEvent {
	e.ActorID = actorID
	return e
}

// SetActor attributes the event to actorID unless it already has an actor
func (e *BaseDomainEvent) SetActor(actorID uuid.UUID) {
	if e.ActorID == uuid.Nil {
		e.ActorID = actorID
	}
}

// StampActor attributes events raised by an aggregate to the acting user
func StampActor(events []DomainEvent, actorID uuid.UUID) []DomainEvent {
	for _, e := range events {
		if s, ok := e.(interface{ SetActor(uuid.UUID) }); ok {
			s.SetActor(actorID)
		}
	}
	return events
}

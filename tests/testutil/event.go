package testutil

import (
	"github.com/google/uuid"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
)

// TestEvent is a bare domain event for subscribers that only inspect the envelope
type TestEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

// NewTestEvent builds an event of eventType about a random order of tenantID
func NewTestEvent(eventType string, tenantID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New(), tenantID),
	}
}

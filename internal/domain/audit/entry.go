package audit

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// Entry is an append-only record of who did what to which entity
type Entry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	ActorID    *uuid.UUID
	ActorRole  shared.Role
	Action     string
	EntityType string
	EntityID   string
	Details    json.RawMessage
	IP         string
	RequestID  string
	CreatedAt  time.Time
}

// NewEntry creates an entry; details are marshalled to JSON
func NewEntry(tenantID uuid.UUID, actorID *uuid.UUID, role shared.Role, action, entityType, entityID string, details any) (*Entry, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Audit action is required")
	}
	e := &Entry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ActorID:    actorID,
		ActorRole:  role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DETAILS", "Audit details must be JSON serializable")
		}
		e.Details = raw
	}
	return e, nil
}

// WithRequest attaches the HTTP origin of the action
func (e *Entry) WithRequest(ip, requestID string) *Entry {
	e.IP = ip
	e.RequestID = requestID
	return e
}

// Filter narrows the admin audit query
type Filter struct {
	shared.Filter
	ActorID    *uuid.UUID
	EntityType string
	EntityID   string
	Action     string
	From       *time.Time
	To         *time.Time
}

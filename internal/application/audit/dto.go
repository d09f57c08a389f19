package audit

import (
	"encoding/json"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/google/uuid"
)

// QueryRequest filters the admin audit log
type QueryRequest struct {
	ActorID    *uuid.UUID `form:"-"`
	EntityType string     `form:"entity_type" binding:"max=50"`
	EntityID   string     `form:"entity_id" binding:"max=100"`
	Action     string     `form:"action" binding:"max=100"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// EntryResponse is one audit entry
type EntryResponse struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	ActorRole  string          `json:"actor_role,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	IP         string          `json:"ip,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToEntryResponse converts a domain entry
func ToEntryResponse(e *audit.Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID,
		ActorID:    e.ActorID,
		ActorRole:  string(e.ActorRole),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		IP:         e.IP,
		RequestID:  e.RequestID,
		CreatedAt:  e.CreatedAt,
	}
}

// RequestRecord describes one mutating admin HTTP request
type RequestRecord struct {
	TenantID  uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
	Method    string
	Path      string
	Route     string
	Status    int
	IP        string
	RequestID string
}

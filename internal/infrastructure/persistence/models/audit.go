package models

import (
	"encoding/json"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditEntryModel is an append-only audit log row.
type AuditEntryModel struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_audit_tenant_created,priority:1"`
	ActorID    *uuid.UUID  `gorm:"type:uuid;index"`
	ActorRole  shared.Role `gorm:"type:varchar(20)"`
	Action     string      `gorm:"type:varchar(200);not null;index"`
	EntityType string      `gorm:"type:varchar(100);index:idx_audit_entity,priority:1"`
	EntityID   string      `gorm:"type:varchar(100);index:idx_audit_entity,priority:2"`
	Details    string      `gorm:"type:jsonb"`
	IP         string      `gorm:"type:varchar(64)"`
	RequestID  string      `gorm:"type:varchar(64)"`
	CreatedAt  time.Time   `gorm:"not null;index:idx_audit_tenant_created,priority:2"`
}

// TableName returns the table name for GORM
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// ToDomain converts the persistence model to a domain audit Entry
func (m *AuditEntryModel) ToDomain() audit.Entry {
	e := audit.Entry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ActorID:    m.ActorID,
		ActorRole:  m.ActorRole,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		IP:         m.IP,
		RequestID:  m.RequestID,
		CreatedAt:  m.CreatedAt,
	}
	if m.Details != "" {
		e.Details = json.RawMessage(m.Details)
	}
	return e
}

// AuditEntryModelFromDomain creates a new persistence model from a domain audit Entry
func AuditEntryModelFromDomain(e *audit.Entry) *AuditEntryModel {
	m := &AuditEntryModel{
		ID:         e.ID,
		TenantID:   e.TenantID,
		ActorID:    e.ActorID,
		ActorRole:  e.ActorRole,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		IP:         e.IP,
		RequestID:  e.RequestID,
		CreatedAt:  e.CreatedAt,
	}
	if len(e.Details) > 0 {
		m.Details = string(e.Details)
	} else {
		m.Details = "null"
	}
	return m
}

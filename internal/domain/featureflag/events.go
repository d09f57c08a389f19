package featureflag

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeFeatureFlag = "FeatureFlag"

const EventTypeFeatureFlagChanged = "FeatureFlagChanged"

// Change is what happened to a flag
type Change string

const (
	ChangeCreated  Change = "created"
	ChangeUpdated  Change = "updated"
	ChangeEnabled  Change = "enabled"
	ChangeDisabled Change = "disabled"
	ChangeDeleted  Change = "deleted"
)

// FeatureFlagChangedEvent is raised on every flag write; it drives cache
// invalidation and the audit log
type FeatureFlagChangedEvent struct {
	shared.BaseDomainEvent
	Key            string        `json:"key"`
	Change         Change        `json:"change"`
	Enabled        bool          `json:"enabled"`
	RolloutPercent int           `json:"rollout_percent"`
	TargetRoles    []shared.Role `json:"target_roles,omitempty"`
	TargetTenants  []uuid.UUID   `json:"target_tenants,omitempty"`
}

func NewFeatureFlagChangedEvent(f *FeatureFlag, change Change, by uuid.UUID) *FeatureFlagChangedEvent {
	return &FeatureFlagChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFeatureFlagChanged, AggregateTypeFeatureFlag, f.ID, uuid.Nil).WithActor(by),
		Key:             f.Key,
		Change:          change,
		Enabled:         f.Enabled,
		RolloutPercent:  f.RolloutPercent,
		TargetRoles:     f.TargetRoles,
		TargetTenants:   f.TargetTenants,
	}
}

package models

import (
	"encoding/json"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeatureFlagModel is the persistence model for the FeatureFlag aggregate root.
// Feature flags are GLOBAL (not tenant-scoped); tenant targeting lives in
// the target_tenants column.
type FeatureFlagModel struct {
	AggregateModel
	Key               string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description       string     `gorm:"type:text"`
	Enabled           bool       `gorm:"not null;default:false"`
	RolloutPercent    int        `gorm:"not null"`
	TargetRolesJSON   string     `gorm:"column:target_roles;type:jsonb;default:'[]'"`
	TargetTenantsJSON string     `gorm:"column:target_tenants;type:jsonb;default:'[]'"`
	UpdatedBy         *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (FeatureFlagModel) TableName() string {
	return "feature_flags"
}

// ToDomain converts the persistence model to a domain FeatureFlag entity.
func (m *FeatureFlagModel) ToDomain() *featureflag.FeatureFlag {
	flag := &featureflag.FeatureFlag{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Key:               m.Key,
		Description:       m.Description,
		Enabled:           m.Enabled,
		RolloutPercent:    m.RolloutPercent,
		UpdatedBy:         m.UpdatedBy,
	}

	if m.TargetRolesJSON != "" && m.TargetRolesJSON != "[]" {
		var roles []shared.Role
		if err := json.Unmarshal([]byte(m.TargetRolesJSON), &roles); err != nil {
			modelLogger.Warn("failed to parse target_roles JSON",
				zap.String("flag_key", m.Key),
				zap.String("raw_json", m.TargetRolesJSON),
				zap.Error(err))
		} else {
			flag.TargetRoles = roles
		}
	}

	if m.TargetTenantsJSON != "" && m.TargetTenantsJSON != "[]" {
		var tenants []uuid.UUID
		if err := json.Unmarshal([]byte(m.TargetTenantsJSON), &tenants); err != nil {
			modelLogger.Warn("failed to parse target_tenants JSON",
				zap.String("flag_key", m.Key),
				zap.String("raw_json", m.TargetTenantsJSON),
				zap.Error(err))
		} else {
			flag.TargetTenants = tenants
		}
	}

	return flag
}

// FromDomain populates the persistence model from a domain FeatureFlag entity.
func (m *FeatureFlagModel) FromDomain(f *featureflag.FeatureFlag) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.Key = f.Key
	m.Description = f.Description
	m.Enabled = f.Enabled
	m.RolloutPercent = f.RolloutPercent
	m.UpdatedBy = f.UpdatedBy

	roles := f.TargetRoles
	if roles == nil {
		roles = []shared.Role{}
	}
	m.TargetRolesJSON = toJSON(roles, "[]")

	tenants := f.TargetTenants
	if tenants == nil {
		tenants = []uuid.UUID{}
	}
	m.TargetTenantsJSON = toJSON(tenants, "[]")
}

// FeatureFlagModelFromDomain creates a new persistence model from a domain FeatureFlag entity.
func FeatureFlagModelFromDomain(f *featureflag.FeatureFlag) *FeatureFlagModel {
	m := &FeatureFlagModel{}
	m.FromDomain(f)
	return m
}

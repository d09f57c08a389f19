package dto

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateFlagRequest represents a request to create a feature flag
type CreateFlagRequest struct {
	Key            string      `json:"key" binding:"required,min=1,max=100"`
	Description    string      `json:"description" binding:"max=500"`
	Enabled        bool        `json:"enabled"`
	RolloutPercent *int        `json:"rollout_percent" binding:"omitempty,min=0,max=100"`
	TargetRoles    []string    `json:"target_roles" binding:"omitempty,dive,oneof=BUYER SELLER ADMIN"`
	TargetTenants  []uuid.UUID `json:"target_tenants"`
}

// UpdateFlagRequest replaces the configurable fields of a flag
type UpdateFlagRequest struct {
	Description    string      `json:"description" binding:"max=500"`
	RolloutPercent int         `json:"rollout_percent" binding:"min=0,max=100"`
	TargetRoles    []string    `json:"target_roles" binding:"omitempty,dive,oneof=BUYER SELLER ADMIN"`
	TargetTenants  []uuid.UUID `json:"target_tenants"`
}

// ToggleFlagRequest switches a flag on or off
type ToggleFlagRequest struct {
	Enabled bool `json:"enabled"`
}

// Roles converts the role names
func Roles(names []string) []shared.Role {
	roles := make([]shared.Role, len(names))
	for i, n := range names {
		roles[i] = shared.Role(n)
	}
	return roles
}

// FlagResponse represents a feature flag in API responses
type FlagResponse struct {
	ID             uuid.UUID   `json:"id"`
	Key            string      `json:"key"`
	Description    string      `json:"description"`
	Enabled        bool        `json:"enabled"`
	RolloutPercent int         `json:"rollout_percent"`
	TargetRoles    []string    `json:"target_roles"`
	TargetTenants  []uuid.UUID `json:"target_tenants"`
	Version        int         `json:"version"`
	UpdatedBy      *uuid.UUID  `json:"updated_by,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ToFlagResponse converts a domain FeatureFlag to FlagResponse
func ToFlagResponse(f *featureflag.FeatureFlag) *FlagResponse {
	roles := make([]string, len(f.TargetRoles))
	for i, r := range f.TargetRoles {
		roles[i] = string(r)
	}
	tenants := f.TargetTenants
	if tenants == nil {
		tenants = []uuid.UUID{}
	}
	return &FlagResponse{
		ID:             f.ID,
		Key:            f.Key,
		Description:    f.Description,
		Enabled:        f.Enabled,
		RolloutPercent: f.RolloutPercent,
		TargetRoles:    roles,
		TargetTenants:  tenants,
		Version:        f.Version,
		UpdatedBy:      f.UpdatedBy,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// ToFlagResponses converts a list of flags
func ToFlagResponses(flags []featureflag.FeatureFlag) []FlagResponse {
	out := make([]FlagResponse, len(flags))
	for i := range flags {
		out[i] = *ToFlagResponse(&flags[i])
	}
	return out
}

// EvaluateRequest asks for specific flags; empty Keys means all
type EvaluateRequest struct {
	Keys []string `json:"keys" binding:"omitempty,max=100"`
}

// EvaluationResponse maps flag keys to their results for the caller
type EvaluationResponse struct {
	Flags map[string]featureflag.Result `json:"flags"`
}

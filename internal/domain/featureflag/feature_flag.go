package featureflag

import (
	"regexp"
	"sort"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// Well-known flags read by the application
const (
	FlagCheckoutEnabled = "checkout.enabled"
	FlagReturnsEnabled  = "returns.enabled"
	FlagDataExport      = "privacy.export"
)

var keyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z0-9_]+)*$`)

// FeatureFlag is a platform-wide switch with optional role and tenant
// targeting and a percentage rollout
type FeatureFlag struct {
	shared.BaseAggregateRoot
	Key            string
	Description    string
	Enabled        bool
	RolloutPercent int
	TargetRoles    []shared.Role
	TargetTenants  []uuid.UUID
	UpdatedBy      *uuid.UUID
}

// NewFeatureFlag creates a disabled flag with a full rollout
func NewFeatureFlag(key, description string, createdBy uuid.UUID) (*FeatureFlag, error) {
	key = strings.TrimSpace(key)
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	f := &FeatureFlag{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Key:               key,
		Description:       strings.TrimSpace(description),
		RolloutPercent:    100,
		UpdatedBy:         &createdBy,
	}
	f.AddDomainEvent(NewFeatureFlagChangedEvent(f, ChangeCreated, createdBy))
	return f, nil
}

// Update replaces the configurable fields
func (f *FeatureFlag) Update(description string, rollout int, roles []shared.Role, tenants []uuid.UUID, by uuid.UUID) error {
	if rollout < 0 || rollout > 100 {
		return shared.NewDomainError("INVALID_ROLLOUT", "Rollout percent must be between 0 and 100")
	}
	for _, r := range roles {
		if !r.IsValid() {
			return shared.NewDomainError("INVALID_ROLE", "Unknown role "+string(r))
		}
	}
	f.Description = strings.TrimSpace(description)
	f.RolloutPercent = rollout
	f.TargetRoles = dedupeRoles(roles)
	f.TargetTenants = dedupeIDs(tenants)
	f.changed(ChangeUpdated, by)
	return nil
}

// Toggle switches the flag on or off
func (f *FeatureFlag) Toggle(enabled bool, by uuid.UUID) {
	if f.Enabled == enabled {
		return
	}
	f.Enabled = enabled
	change := ChangeDisabled
	if enabled {
		change = ChangeEnabled
	}
	f.changed(change, by)
}

// MarkDeleted records the deletion event before the repository removes it
func (f *FeatureFlag) MarkDeleted(by uuid.UUID) {
	f.AddDomainEvent(NewFeatureFlagChangedEvent(f, ChangeDeleted, by))
}

// HasTargets reports whether role or tenant targeting is configured
func (f *FeatureFlag) HasTargets() bool {
	return len(f.TargetRoles) > 0 || len(f.TargetTenants) > 0
}

func (f *FeatureFlag) changed(change Change, by uuid.UUID) {
	f.UpdatedBy = &by
	f.Touch()
	f.IncrementVersion()
	f.AddDomainEvent(NewFeatureFlagChangedEvent(f, change, by))
}

// ValidateKey checks the dotted lower-case key format, e.g. checkout.enabled
func ValidateKey(key string) error {
	if key == "" || len(key) > 100 {
		return shared.NewDomainError("INVALID_FLAG_KEY", "Flag key must be 1-100 characters")
	}
	if !keyRegex.MatchString(key) {
		return shared.NewDomainError("INVALID_FLAG_KEY", "Flag key must be lower-case segments separated by dots")
	}
	return nil
}

func dedupeRoles(roles []shared.Role) []shared.Role {
	seen := make(map[shared.Role]bool, len(roles))
	out := make([]shared.Role, 0, len(roles))
	for _, r := range roles {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

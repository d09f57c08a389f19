package featureflag

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// EvalContext is who is asking
type EvalContext struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     shared.Role
}

// Reason explains an evaluation result
type Reason string

const (
	ReasonNotFound  Reason = "NOT_FOUND"
	ReasonDisabled  Reason = "DISABLED"
	ReasonNotTarget Reason = "NOT_TARGETED"
	ReasonRollout   Reason = "ROLLOUT"
	ReasonExcluded  Reason = "ROLLOUT_EXCLUDED"
)

// Result is the outcome of evaluating one flag
type Result struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	Reason  Reason `json:"reason"`
}

// Evaluate applies the flag to a context: disabled flags are off, then
// targets must match, then the user's bucket must fall inside the rollout
func (f *FeatureFlag) Evaluate(ec EvalContext) Result {
	if !f.Enabled {
		return Result{Key: f.Key, Reason: ReasonDisabled}
	}
	if !f.targets(ec) {
		return Result{Key: f.Key, Reason: ReasonNotTarget}
	}
	if !InRollout(f.Key, ec.UserID.String(), f.RolloutPercent) {
		return Result{Key: f.Key, Reason: ReasonExcluded}
	}
	return Result{Key: f.Key, Enabled: true, Reason: ReasonRollout}
}

func (f *FeatureFlag) targets(ec EvalContext) bool {
	if len(f.TargetRoles) > 0 {
		found := false
		for _, r := range f.TargetRoles {
			if r == ec.Role {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.TargetTenants) > 0 {
		for _, id := range f.TargetTenants {
			if id == ec.TenantID {
				return true
			}
		}
		return false
	}
	return true
}

// Snapshot is an immutable copy of all flags used for evaluation
type Snapshot struct {
	LoadedAt time.Time
	flags    map[string]FeatureFlag
}

// NewSnapshot indexes flags by key
func NewSnapshot(flags []FeatureFlag) *Snapshot {
	s := &Snapshot{LoadedAt: time.Now().UTC(), flags: make(map[string]FeatureFlag, len(flags))}
	for _, f := range flags {
		f.TargetRoles = append([]shared.Role(nil), f.TargetRoles...)
		f.TargetTenants = append([]uuid.UUID(nil), f.TargetTenants...)
		s.flags[f.Key] = f
	}
	return s
}

// Evaluate looks up and evaluates a flag; unknown flags are off
func (s *Snapshot) Evaluate(key string, ec EvalContext) Result {
	f, ok := s.flags[key]
	if !ok {
		return Result{Key: key, Reason: ReasonNotFound}
	}
	return f.Evaluate(ec)
}

// IsEnabled is Evaluate reduced to a bool
func (s *Snapshot) IsEnabled(key string, ec EvalContext) bool {
	return s.Evaluate(key, ec).Enabled
}

// EvaluateAll evaluates every flag for the context
func (s *Snapshot) EvaluateAll(ec EvalContext) map[string]Result {
	out := make(map[string]Result, len(s.flags))
	for k, f := range s.flags {
		out[k] = f.Evaluate(ec)
	}
	return out
}

func (s *Snapshot) Len() int { return len(s.flags) }

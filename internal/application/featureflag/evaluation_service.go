package featureflag

import (
	"context"
	"fmt"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotCacheName is the snapshot cache holding feature flags
const SnapshotCacheName = "feature_flags"

// SnapshotKey is the cache key of the flag snapshot; flags are platform-wide
var SnapshotKey = uuid.Nil

// EvaluationService evaluates flags against the cached snapshot
type EvaluationService struct {
	flagRepo  featureflag.Repository
	snapshots *cache.SnapshotCache[*featureflag.Snapshot]
	defaults  map[string]bool
	logger    *zap.Logger
}

// NewEvaluationService creates a new evaluation service. defaults answers
// for flags that do not exist yet.
func NewEvaluationService(flagRepo featureflag.Repository, snapshots *cache.SnapshotCache[*featureflag.Snapshot], defaults map[string]bool, logger *zap.Logger) *EvaluationService {
	if defaults == nil {
		defaults = map[string]bool{}
	}
	return &EvaluationService{
		flagRepo:  flagRepo,
		snapshots: snapshots,
		defaults:  defaults,
		logger:    logger,
	}
}

// Snapshot returns the cached flag snapshot
func (s *EvaluationService) Snapshot(ctx context.Context) (*featureflag.Snapshot, error) {
	return s.snapshots.Get(ctx, SnapshotKey, func(ctx context.Context) (*featureflag.Snapshot, error) {
		flags, err := s.flagRepo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load feature flags: %w", err)
		}
		return featureflag.NewSnapshot(flags), nil
	})
}

// Evaluate evaluates one flag. When the snapshot cannot be loaded the flag
// falls back to its default.
func (s *EvaluationService) Evaluate(ctx context.Context, key string, ec featureflag.EvalContext) featureflag.Result {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("Feature flag snapshot unavailable",
			zap.String("key", key),
			zap.Error(err))
		return featureflag.Result{Key: key, Enabled: s.defaults[key], Reason: featureflag.ReasonNotFound}
	}
	res := snap.Evaluate(key, ec)
	if res.Reason == featureflag.ReasonNotFound {
		res.Enabled = s.defaults[key]
	}
	return res
}

// IsEnabled is Evaluate reduced to a bool
func (s *EvaluationService) IsEnabled(ctx context.Context, key string, ec featureflag.EvalContext) bool {
	return s.Evaluate(ctx, key, ec).Enabled
}

// EvaluateMany evaluates the given keys, or every known flag and default
// when keys is empty
func (s *EvaluationService) EvaluateMany(ctx context.Context, keys []string, ec featureflag.EvalContext) (map[string]featureflag.Result, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		out := snap.EvaluateAll(ec)
		for k, v := range s.defaults {
			if _, ok := out[k]; !ok {
				out[k] = featureflag.Result{Key: k, Enabled: v, Reason: featureflag.ReasonNotFound}
			}
		}
		return out, nil
	}
	out := make(map[string]featureflag.Result, len(keys))
	for _, k := range keys {
		res := snap.Evaluate(k, ec)
		if res.Reason == featureflag.ReasonNotFound {
			res.Enabled = s.defaults[k]
		}
		out[k] = res
	}
	return out, nil
}

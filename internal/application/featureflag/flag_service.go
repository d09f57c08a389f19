package featureflag

import (
	"context"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/featureflag/dto"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrFlagExists = shared.NewDomainError("FLAG_EXISTS", "Flag with this key already exists")

// SnapshotInvalidator drops the cached flag snapshot on every instance
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// FlagService handles feature flag management operations
type FlagService struct {
	flagRepo       featureflag.Repository
	invalidator    SnapshotInvalidator
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewFlagService creates a new flag service
func NewFlagService(flagRepo featureflag.Repository, invalidator SnapshotInvalidator, logger *zap.Logger) *FlagService {
	return &FlagService{
		flagRepo:    flagRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *FlagService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateFlag creates a new feature flag
func (s *FlagService) CreateFlag(ctx context.Context, req dto.CreateFlagRequest, actor shared.Actor) (*dto.FlagResponse, error) {
	key := strings.TrimSpace(req.Key)
	exists, err := s.flagRepo.ExistsByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrFlagExists
	}

	flag, err := featureflag.NewFeatureFlag(key, req.Description, actor.UserID)
	if err != nil {
		return nil, err
	}
	rollout := 100
	if req.RolloutPercent != nil {
		rollout = *req.RolloutPercent
	}
	if rollout != 100 || len(req.TargetRoles) > 0 || len(req.TargetTenants) > 0 {
		if err := flag.Update(req.Description, rollout, dto.Roles(req.TargetRoles), req.TargetTenants, actor.UserID); err != nil {
			return nil, err
		}
	}
	flag.Toggle(req.Enabled, actor.UserID)

	if err := s.flagRepo.Save(ctx, flag); err != nil {
		return nil, err
	}
	s.changed(ctx, flag)

	s.logger.Info("Feature flag created",
		zap.String("key", flag.Key),
		zap.Bool("enabled", flag.Enabled))
	return dto.ToFlagResponse(flag), nil
}

// UpdateFlag replaces description, rollout and targets
func (s *FlagService) UpdateFlag(ctx context.Context, key string, req dto.UpdateFlagRequest, actor shared.Actor) (*dto.FlagResponse, error) {
	flag, err := s.flagRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := flag.Update(req.Description, req.RolloutPercent, dto.Roles(req.TargetRoles), req.TargetTenants, actor.UserID); err != nil {
		return nil, err
	}
	if err := s.flagRepo.Save(ctx, flag); err != nil {
		return nil, err
	}
	s.changed(ctx, flag)

	s.logger.Info("Feature flag updated",
		zap.String("key", flag.Key),
		zap.Int("rollout_percent", flag.RolloutPercent))
	return dto.ToFlagResponse(flag), nil
}

// ToggleFlag switches a flag on or off
func (s *FlagService) ToggleFlag(ctx context.Context, key string, req dto.ToggleFlagRequest, actor shared.Actor) (*dto.FlagResponse, error) {
	flag, err := s.flagRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if flag.Enabled == req.Enabled {
		return dto.ToFlagResponse(flag), nil
	}
	flag.Toggle(req.Enabled, actor.UserID)
	if err := s.flagRepo.Save(ctx, flag); err != nil {
		return nil, err
	}
	s.changed(ctx, flag)

	s.logger.Info("Feature flag toggled",
		zap.String("key", flag.Key),
		zap.Bool("enabled", flag.Enabled))
	return dto.ToFlagResponse(flag), nil
}

// DeleteFlag removes a flag; evaluation treats it as off afterwards
func (s *FlagService) DeleteFlag(ctx context.Context, key string, actor shared.Actor) error {
	flag, err := s.flagRepo.FindByKey(ctx, key)
	if err != nil {
		return err
	}
	flag.MarkDeleted(actor.UserID)
	if err := s.flagRepo.Delete(ctx, flag.ID); err != nil {
		return err
	}
	s.changed(ctx, flag)

	s.logger.Info("Feature flag deleted", zap.String("key", flag.Key))
	return nil
}

// GetFlag returns one flag by key
func (s *FlagService) GetFlag(ctx context.Context, key string) (*dto.FlagResponse, error) {
	flag, err := s.flagRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return dto.ToFlagResponse(flag), nil
}

// ListFlags returns every flag ordered by key
func (s *FlagService) ListFlags(ctx context.Context) ([]dto.FlagResponse, error) {
	flags, err := s.flagRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToFlagResponses(flags), nil
}

// changed drops cached snapshots and publishes FeatureFlagChanged
func (s *FlagService) changed(ctx context.Context, flag *featureflag.FeatureFlag) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, SnapshotKey)
	}
	events := flag.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish flag events",
			zap.String("key", flag.Key),
			zap.Error(err))
	}
}

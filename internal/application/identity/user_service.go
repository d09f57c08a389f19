package identity

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles admin user management
type UserService struct {
	userRepo       identity.UserRepository
	revoker        auth.TokenRevoker
	revocationTTL  time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service. revocationTTL should cover the
// longest token lifetime so that every outstanding token of a suspended user
// stays rejected.
func NewUserService(
	userRepo identity.UserRepository,
	revoker auth.TokenRevoker,
	revocationTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		revoker:       revoker,
		revocationTTL: revocationTTL,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns users of a tenant
func (s *UserService) List(ctx context.Context, input ListUsersInput) (shared.Paginated[UserInfo], error) {
	filter := input.Filter.Normalize()
	users, total, err := s.userRepo.FindAllForTenant(ctx, input.TenantID, identity.UserFilter{
		Filter: filter,
		Role:   input.Role,
		Status: input.Status,
	})
	if err != nil {
		return shared.Paginated[UserInfo]{}, err
	}

	items := make([]UserInfo, len(users))
	for i := range users {
		items[i] = ToUserInfo(&users[i], nil)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, tenantID, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user, nil)
	return &info, nil
}

// Suspend blocks a user and revokes all of the user's tokens
func (s *UserService) Suspend(ctx context.Context, tenantID, userID uuid.UUID, actor shared.Actor) (*UserInfo, error) {
	if actor.UserID == userID {
		return nil, shared.NewDomainError("CANNOT_SUSPEND_SELF", "Administrators cannot suspend their own account")
	}
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Suspend(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user, actor)

	if s.revoker != nil {
		if err := s.revoker.RevokeUser(ctx, user.ID, s.revocationTTL); err != nil {
			s.logger.Error("Failed to revoke tokens of suspended user",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("User suspended",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", actor.UserID.String()))
	info := ToUserInfo(user, nil)
	return &info, nil
}

// Reactivate lifts a suspension
func (s *UserService) Reactivate(ctx context.Context, tenantID, userID uuid.UUID, actor shared.Actor) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Reactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user, actor)

	s.logger.Info("User reactivated",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", actor.UserID.String()))
	info := ToUserInfo(user, nil)
	return &info, nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User, actor shared.Actor) {
	events := shared.StampActor(user.PullDomainEvents(), actor.UserID)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}

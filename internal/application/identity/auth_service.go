package identity

import (
	"context"
	"errors"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles sign-up, login and token lifecycle
type AuthService struct {
	userRepo       identity.UserRepository
	sellerRepo     catalog.SellerRepository
	txScope        txscope.TransactionScope
	jwtService     *auth.JWTService
	revoker        auth.TokenRevoker
	eventPublisher shared.EventPublisher
	config         AuthServiceConfig
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	sellerRepo catalog.SellerRepository,
	txScope txscope.TransactionScope,
	jwtService *auth.JWTService,
	revoker auth.TokenRevoker,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		sellerRepo: sellerRepo,
		txScope:    txScope,
		jwtService: jwtService,
		revoker:    revoker,
		config:     config,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterBuyer creates a buyer account
func (s *AuthService) RegisterBuyer(ctx context.Context, input RegisterBuyerInput) (*UserInfo, error) {
	email := identity.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, input.TenantID, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	user, err := identity.NewUser(input.TenantID, email, input.DisplayName, input.Password, shared.RoleBuyer)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Buyer registered",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("user_id", user.ID.String()))

	info := ToUserInfo(user, nil)
	return &info, nil
}

// RegisterSeller creates a seller user and its pending storefront in one
// transaction
func (s *AuthService) RegisterSeller(ctx context.Context, input RegisterSellerInput) (*RegisterSellerResult, error) {
	email := identity.NormalizeEmail(input.Email)
	if input.ContactEmail == "" {
		input.ContactEmail = email
	}

	var result *RegisterSellerResult
	err := s.txScope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		exists, err := repos.Users().ExistsByEmail(ctx, input.TenantID, email)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
		}

		user, err := identity.NewUser(input.TenantID, email, input.DisplayName, input.Password, shared.RoleSeller)
		if err != nil {
			return err
		}
		seller, err := catalog.NewSeller(input.TenantID, user.ID, input.StoreName, input.SellerType, input.Country, input.ContactEmail)
		if err != nil {
			return err
		}
		taken, err := repos.Sellers().ExistsBySlug(ctx, input.TenantID, seller.Slug)
		if err != nil {
			return err
		}
		if taken {
			return shared.NewDomainError("STORE_NAME_TAKEN", "A store with this name already exists")
		}
		if input.VATNumber != "" {
			seller.SetVATRegistration(input.VATNumber)
		}

		if err := repos.Users().Save(ctx, user); err != nil {
			return err
		}
		if err := repos.Sellers().Save(ctx, seller); err != nil {
			return err
		}
		if err := repos.Events().Record(ctx, user.PullDomainEvents()...); err != nil {
			return err
		}
		if err := repos.Events().Record(ctx, seller.PullDomainEvents()...); err != nil {
			return err
		}

		result = &RegisterSellerResult{
			User:         ToUserInfo(user, &seller.ID),
			SellerID:     seller.ID,
			SellerStatus: seller.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Seller registered",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("user_id", result.User.ID.String()),
		zap.String("seller_id", result.SellerID.String()))
	return result, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := identity.NormalizeEmail(input.Email)
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, input.TenantID, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("email", email))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}

	if !user.CanLogin() {
		switch {
		case user.IsAnonymized():
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		case user.IsLocked():
			s.logger.Warn("Login attempt for locked account", zap.String("user_id", user.ID.String()))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
		case user.Status == identity.UserStatusSuspended:
			s.logger.Warn("Login attempt for suspended account", zap.String("user_id", user.ID.String()))
			return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account has been suspended")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	sellerID, err := s.sellerIDOf(ctx, user)
	if err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		SellerID: sellerID,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the tokens are already issued, a stale last-login is acceptable
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  ToUserInfo(user, sellerID),
	}, nil
}

// RefreshToken issues a new token pair. Role and storefront are re-read
// from the database so suspensions and approvals apply on the next refresh.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	tenantID, err := claims.TenantUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid tenant in token")
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user in token")
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if !revoked {
			revoked, err = s.revoker.IsUserRevoked(ctx, userID, claims.IssuedAtTime())
			if err != nil {
				return nil, err
			}
		}
		if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
		}
	}

	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	sellerID, err := s.sellerIDOf(ctx, user)
	if err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:     user.TenantID,
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		SellerID:     sellerID,
		RefreshCount: claims.RefreshCount + 1,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to refresh token")
	}

	// the old refresh token must not be usable twice
	if s.revoker != nil {
		if err := s.revoker.RevokeToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the access token that made the request
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("User logout",
		zap.String("user_id", input.UserID.String()),
		zap.String("tenant_id", input.TenantID.String()))

	if s.revoker == nil || input.TokenJTI == "" {
		return nil
	}
	return s.revoker.RevokeToken(ctx, input.TokenJTI, input.TokenTTL)
}

// GetCurrentUser returns the profile of the authenticated user
func (s *AuthService) GetCurrentUser(ctx context.Context, tenantID, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	sellerID, err := s.sellerIDOf(ctx, user)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user, sellerID)
	return &info, nil
}

// ChangePassword changes a user's password and revokes the user's other tokens
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, input.TenantID, input.UserID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return err
	}
	s.publish(ctx, user)

	if s.revoker != nil {
		if err := s.revoker.RevokeUser(ctx, user.ID, s.jwtService.RefreshTokenExpiration()); err != nil {
			s.logger.Warn("Failed to revoke tokens after password change", zap.Error(err))
		}
	}

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))
	return nil
}

// sellerIDOf returns the storefront of a seller user, nil for other roles
func (s *AuthService) sellerIDOf(ctx context.Context, user *identity.User) (*uuid.UUID, error) {
	if user.Role != shared.RoleSeller {
		return nil, nil
	}
	seller, err := s.sellerRepo.FindByUserID(ctx, user.TenantID, user.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seller.ID, nil
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	if s.eventPublisher == nil {
		user.ClearDomainEvents()
		return
	}
	if err := s.eventPublisher.Publish(ctx, user.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
	user.ClearDomainEvents()
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
}

package identity

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// RegisterBuyerInput contains the input for buyer sign-up
type RegisterBuyerInput struct {
	TenantID    uuid.UUID
	Email       string
	DisplayName string
	Password    string
}

// RegisterSellerInput contains the input for seller sign-up. The storefront
// is created pending admin approval.
type RegisterSellerInput struct {
	TenantID     uuid.UUID
	Email        string
	DisplayName  string
	Password     string
	StoreName    string
	SellerType   catalog.SellerType
	Country      string
	ContactEmail string
	VATNumber    string
}

// RegisterSellerResult is the created user and storefront
type RegisterSellerResult struct {
	User         UserInfo
	SellerID     uuid.UUID
	SellerStatus catalog.SellerStatus
}

// LoginInput contains the input for user login
type LoginInput struct {
	TenantID uuid.UUID
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information
type UserInfo struct {
	ID          uuid.UUID   `json:"id"`
	TenantID    uuid.UUID   `json:"tenant_id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        shared.Role `json:"role"`
	Status      string      `json:"status"`
	SellerID    *uuid.UUID  `json:"seller_id,omitempty"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User, sellerID *uuid.UUID) UserInfo {
	return UserInfo{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Status:      string(u.Status),
		SellerID:    sellerID,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	TokenJTI string
	// TokenTTL is the remaining lifetime of the access token
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// ListUsersInput filters the admin user list
type ListUsersInput struct {
	TenantID uuid.UUID
	Role     *shared.Role
	Status   *identity.UserStatus
	Filter   shared.Filter
}

// TenantInfo is the public view of a tenant
type TenantInfo struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	DefaultCurrency string    `json:"default_currency"`
	Country         string    `json:"country"`
	Domain          string    `json:"domain,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToTenantInfo converts a domain tenant
func ToTenantInfo(t *identity.Tenant) TenantInfo {
	return TenantInfo{
		ID:              t.ID,
		Code:            t.Code,
		Name:            t.Name,
		Status:          string(t.Status),
		DefaultCurrency: string(t.DefaultCurrency),
		Country:         t.Country,
		Domain:          t.Domain,
		CreatedAt:       t.CreatedAt,
	}
}

// CreateTenantInput contains input for creating a marketplace instance
type CreateTenantInput struct {
	Code     string
	Name     string
	Currency string
	Country  string
	Domain   string
}

package handler

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/identity"
	"github.com/google/uuid"
)

// RegisterBuyerRequest represents a buyer sign-up
// @Description Buyer sign-up request
type RegisterBuyerRequest struct {
	Email       string `json:"email" binding:"required,email,max=254" example:"anna@example.com"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100" example:"Anna"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
}

// RegisterSellerRequest represents a seller sign-up with the new storefront
// @Description Seller sign-up request
type RegisterSellerRequest struct {
	Email        string `json:"email" binding:"required,email,max=254"`
	DisplayName  string `json:"display_name" binding:"required,min=1,max=100"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	StoreName    string `json:"store_name" binding:"required,min=2,max=100" example:"Baltic Amber"`
	SellerType   string `json:"seller_type" binding:"required,oneof=INDIVIDUAL BUSINESS PREMIUM"`
	Country      string `json:"country" binding:"required,country" example:"PL"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	VATNumber    string `json:"vat_number" binding:"omitempty,max=20"`
}

// LoginRequest represents a login request
// @Description Login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"anna@example.com"`
	Password string `json:"password" binding:"required,min=1,max=72"`
}

// RefreshTokenRequest represents a token refresh request
// @Description Token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents a password change request
// @Description Password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// TokenResponse represents the issued token pair
// @Description Token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type" example:"Bearer"`
}

// LoginResponse represents a successful login
// @Description Login response
type LoginResponse struct {
	Token TokenResponse     `json:"token"`
	User  identity.UserInfo `json:"user"`
}

// RegisterSellerResponse is the created seller account and storefront
// @Description Seller sign-up response
type RegisterSellerResponse struct {
	User         identity.UserInfo `json:"user"`
	SellerID     uuid.UUID         `json:"seller_id"`
	SellerStatus string            `json:"seller_status" example:"PENDING"`
}

// MessageResponse carries a human readable confirmation
// @Description Confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

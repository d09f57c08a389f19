package auth

import (
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "access-secret-for-tests-0123456789",
		RefreshSecret:          "refresh-secret-for-tests-012345678",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "mercato-test",
		MaxRefreshCount:        3,
	})
}

func sellerInput() GenerateTokenInput {
	sellerID := uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	return GenerateTokenInput{
		TenantID: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		UserID:   uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		Email:    "seller@example.com",
		Role:     shared.RoleSeller,
		SellerID: &sellerID,
	}
}

func TestJWTService_AccessToken(t *testing.T) {
	svc := newTestJWTService()
	in := sellerInput()

	pair, err := svc.GenerateTokenPair(in)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, in.TenantID.String(), claims.TenantID)
	assert.Equal(t, shared.RoleSeller, claims.Role)

	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, in.UserID, actor.UserID)
	require.NotNil(t, actor.SellerID)
	assert.Equal(t, *in.SellerID, *actor.SellerID)
	assert.True(t, actor.OwnsStore(*in.SellerID))
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(sellerInput())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh tokens are signed with another secret")

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, claims.Role)
	assert.Empty(t, claims.SellerID)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	pair, err := svc.GenerateTokenPair(sellerInput())
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := newTestJWTService()

	other := NewJWTService(config.JWTConfig{Secret: "someone-else", AccessTokenExpiration: time.Minute, Issuer: "mercato-test"})
	pair, err := other.GenerateTokenPair(sellerInput())
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{TenantID: "t", UserID: "u", TokenType: TokenTypeAccess})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RefreshLimit(t *testing.T) {
	svc := newTestJWTService()
	in := sellerInput()
	in.RefreshCount = 3

	pair, err := svc.GenerateTokenPair(in)
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}

func TestClaims_Actor(t *testing.T) {
	c := &Claims{UserID: uuid.NewString(), Role: shared.RoleSystem}
	_, err := c.Actor()
	assert.ErrorIs(t, err, ErrInvalidClaims, "system tokens are never issued")

	c.Role = shared.RoleBuyer
	actor, err := c.Actor()
	require.NoError(t, err)
	assert.Nil(t, actor.SellerID)
}

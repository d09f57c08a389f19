package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/auth"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, input auth.GenerateTokenInput) *auth.TokenPair {
	t.Helper()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair
}

func buyerInput() auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Email:    "buyer@example.com",
		Role:     shared.RoleBuyer,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type failingRevoker struct{ auth.TokenRevoker }

func (failingRevoker) IsTokenRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestJWTAuth_ValidTokenSetsActor(t *testing.T) {
	svc := newTestJWTService()
	input := buyerInput()
	pair := issueToken(t, svc, input)

	router := gin.New()
	router.Use(JWTAuth(JWTConfig{Validator: svc}))
	router.GET("/me", func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.Equal(t, input.UserID, actor.UserID)
		assert.Equal(t, shared.RoleBuyer, actor.Role)
		assert.Nil(t, actor.SellerID)
		assert.Equal(t, input.TenantID.String(), GetJWTTenantID(c))
		assert.NotNil(t, GetJWTClaims(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
}

func TestJWTAuth_SellerToken(t *testing.T) {
	svc := newTestJWTService()
	input := buyerInput()
	sellerID := uuid.New()
	input.Role = shared.RoleSeller
	input.SellerID = &sellerID
	pair := issueToken(t, svc, input)

	router := gin.New()
	router.Use(JWTAuth(JWTConfig{Validator: svc}), RequireSeller())
	router.GET("/seller", func(c *gin.Context) {
		actor, _ := GetActor(c)
		require.NotNil(t, actor.SellerID)
		assert.Equal(t, sellerID, *actor.SellerID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/seller", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWTService()
	pair := issueToken(t, svc, buyerInput())

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "TOKEN_INVALID"},
		{"wrong scheme", "Basic abc", "TOKEN_INVALID"},
		{"garbage token", BearerPrefix + "not.a.jwt", "TOKEN_INVALID"},
		{"refresh token used as access", BearerPrefix + pair.RefreshToken, "TOKEN_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(JWTAuth(JWTConfig{Validator: svc}))
			router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			rec := serve(router, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestJWTAuth_OptionalLetsAnonymousThrough(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuth(JWTConfig{Validator: newTestJWTService(), Optional: true}))
	router.GET("/catalog", func(c *gin.Context) {
		_, ok := GetActor(c)
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuth_Revocation(t *testing.T) {
	svc := newTestJWTService()
	input := buyerInput()
	pair := issueToken(t, svc, input)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	t.Run("revoked jti", func(t *testing.T) {
		revoker := auth.NewInMemoryTokenRevoker()
		require.NoError(t, revoker.RevokeToken(context.Background(), claims.ID, time.Minute))

		router := gin.New()
		router.Use(JWTAuth(JWTConfig{Validator: svc, Revoker: revoker}))
		router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		rec := serve(router, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_REVOKED", decodeError(t, rec).Code)
	})

	t.Run("suspended user", func(t *testing.T) {
		revoker := auth.NewInMemoryTokenRevoker()
		require.NoError(t, revoker.RevokeUser(context.Background(), input.UserID, time.Hour))

		router := gin.New()
		router.Use(JWTAuth(JWTConfig{Validator: svc, Revoker: revoker}))
		router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)
	})

	t.Run("store outage fails open", func(t *testing.T) {
		router := gin.New()
		router.Use(JWTAuth(JWTConfig{Validator: svc, Revoker: failingRevoker{}}))
		router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusOK, serve(router, req).Code)
	})
}

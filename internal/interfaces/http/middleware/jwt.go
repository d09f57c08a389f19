package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/auth"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	ActorKey       = "actor"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// TokenValidator validates access tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// JWTConfig configures JWTAuth
type JWTConfig struct {
	Validator TokenValidator
	// Revoker is optional; when set, logged-out tokens and tokens of
	// suspended users are rejected
	Revoker auth.TokenRevoker
	// Optional lets anonymous requests through while still reading a
	// valid token when one is sent
	Optional bool
	Logger   *zap.Logger
}

// JWTAuth authenticates the bearer token and stores the claims and the
// domain actor in the gin context
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" && cfg.Optional {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortAuth(c, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.Validator.ValidateAccessToken(token)
		if err != nil {
			log.Debug("Token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			abortAuth(c, err)
			return
		}
		actor, err := claims.Actor()
		if err != nil {
			abortAuth(c, err)
			return
		}

		if cfg.Revoker != nil {
			ctx := c.Request.Context()
			revoked, err := cfg.Revoker.IsTokenRevoked(ctx, claims.ID)
			if err == nil && !revoked {
				revoked, err = cfg.Revoker.IsUserRevoked(ctx, actor.UserID, claims.IssuedAtTime())
			}
			if err != nil {
				// revocation store outage must not lock every user out
				log.Error("Token revocation check failed", zap.Error(err))
			} else if revoked {
				abortAuth(c, auth.ErrTokenRevoked)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)
		c.Set(ActorKey, actor)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortAuth(c *gin.Context, err error) {
	code, message := "TOKEN_INVALID", "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = "TOKEN_REVOKED", "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType):
		message = "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token is not yet valid"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope(c, code, message))
}

// GetJWTClaims returns the authenticated claims or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetActor returns the authenticated actor
func GetActor(c *gin.Context) (shared.Actor, bool) {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(shared.Actor); ok {
			return actor, true
		}
	}
	return shared.Actor{}, false
}

// GetJWTUserID returns the user ID claim
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTTenantID returns the tenant ID claim
func GetJWTTenantID(c *gin.Context) string {
	return c.GetString(JWTTenantIDKey)
}

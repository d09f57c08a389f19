package middleware

import (
	"context"
	"net/http"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/logger"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tenant context keys and headers
const (
	TenantIDKey         = "tenant_id"
	TenantUUIDKey       = "tenant_uuid"
	TenantHeaderKey     = "X-Tenant-ID"
	TenantCodeHeaderKey = "X-Tenant-Code"
)

// TenantResolver finds an active marketplace by its code
type TenantResolver interface {
	Resolve(ctx context.Context, code string) (*identity.Tenant, error)
}

// TenantConfig configures TenantContext
type TenantConfig struct {
	Resolver TenantResolver
	Logger   *zap.Logger
}

// TenantContext decides which marketplace a request targets. An
// authenticated request uses the token's tenant and may not name another one.
// Anonymous requests name it with X-Tenant-ID or X-Tenant-Code.
func TenantContext(cfg TenantConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(TenantHeaderKey)
		var tenantID uuid.UUID

		if claimed := GetJWTTenantID(c); claimed != "" {
			id, err := uuid.Parse(claimed)
			if err != nil {
				abortTenant(c, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid tenant claim")
				return
			}
			if header != "" && header != claimed {
				abortTenant(c, http.StatusForbidden, dto.ErrCodeForbidden, "Token belongs to another marketplace")
				return
			}
			tenantID = id
		} else if header != "" {
			id, err := uuid.Parse(header)
			if err != nil {
				abortTenant(c, http.StatusBadRequest, "INVALID_TENANT", "Invalid tenant ID format")
				return
			}
			tenantID = id
		} else if code := c.GetHeader(TenantCodeHeaderKey); code != "" && cfg.Resolver != nil {
			tenant, err := cfg.Resolver.Resolve(c.Request.Context(), code)
			if err != nil {
				log.Debug("Tenant resolution failed", zap.String("code", code), zap.Error(err))
				status := dto.GetHTTPStatus(shared.CodeOf(err))
				abortTenant(c, status, shared.CodeOf(err), "Unknown or unavailable marketplace")
				return
			}
			tenantID = tenant.ID
		}

		if tenantID == uuid.Nil {
			abortTenant(c, http.StatusBadRequest, dto.ErrCodeTenantMissing, "Tenant identification required")
			return
		}

		c.Set(TenantIDKey, tenantID.String())
		c.Set(TenantUUIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortTenant(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = dto.ErrCodeInternal
	}
	c.AbortWithStatusJSON(status, errorEnvelope(c, code, message))
}

// GetTenantID returns the resolved tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(TenantUUIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

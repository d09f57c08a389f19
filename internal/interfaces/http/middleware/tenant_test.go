package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	tenants map[string]*identity.Tenant
	err     error
}

func (s stubResolver) Resolve(_ context.Context, code string) (*identity.Tenant, error) {
	if s.err != nil {
		return nil, s.err
	}
	if t, ok := s.tenants[code]; ok {
		return t, nil
	}
	return nil, shared.NewDomainError("TENANT_NOT_FOUND", "tenant not found")
}

func tenantRouter(cfg TenantConfig, seen *uuid.UUID) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), TenantContext(cfg))
	router.GET("/t", func(c *gin.Context) {
		id, _ := GetTenantID(c)
		*seen = id
		c.Status(http.StatusOK)
	})
	return router
}

func TestTenantContext_Header(t *testing.T) {
	var seen uuid.UUID
	router := tenantRouter(TenantConfig{}, &seen)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(TenantHeaderKey, id.String())
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
	assert.Equal(t, id, seen)
}

func TestTenantContext_InvalidHeader(t *testing.T) {
	var seen uuid.UUID
	router := tenantRouter(TenantConfig{}, &seen)

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(TenantHeaderKey, "not-a-uuid")
	rec := serve(router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	info := decodeError(t, rec)
	assert.Equal(t, "INVALID_TENANT", info.Code)
	assert.NotEmpty(t, info.RequestID)
}

func TestTenantContext_Missing(t *testing.T) {
	var seen uuid.UUID
	router := tenantRouter(TenantConfig{}, &seen)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/t", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TENANT_REQUIRED", decodeError(t, rec).Code)
}

func TestTenantContext_Code(t *testing.T) {
	tenant, err := identity.NewTenant("MAIN", "Main marketplace", valueobject.EUR, "PL")
	require.NoError(t, err)

	var seen uuid.UUID
	router := tenantRouter(TenantConfig{Resolver: stubResolver{
		tenants: map[string]*identity.Tenant{"MAIN": tenant},
	}}, &seen)

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(TenantCodeHeaderKey, "MAIN")
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
	assert.Equal(t, tenant.ID, seen)

	req = httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(TenantCodeHeaderKey, "NOPE")
	rec := serve(router, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TENANT_NOT_FOUND", decodeError(t, rec).Code)
}

func TestTenantContext_SuspendedTenant(t *testing.T) {
	var seen uuid.UUID
	router := tenantRouter(TenantConfig{Resolver: stubResolver{
		err: shared.NewDomainError("TENANT_SUSPENDED", "tenant suspended"),
	}}, &seen)

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(TenantCodeHeaderKey, "MAIN")
	rec := serve(router, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "TENANT_SUSPENDED", decodeError(t, rec).Code)
}

func TestTenantContext_TokenWinsAndMismatchForbidden(t *testing.T) {
	svc := newTestJWTService()
	input := buyerInput()
	pair := issueToken(t, svc, input)

	var seen uuid.UUID
	router := gin.New()
	router.Use(JWTAuth(JWTConfig{Validator: svc}), TenantContext(TenantConfig{}))
	router.GET("/t", func(c *gin.Context) {
		seen, _ = GetTenantID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	assert.Equal(t, http.StatusOK, serve(router, req).Code)
	assert.Equal(t, input.TenantID, seen)

	req = httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	req.Header.Set(TenantHeaderKey, uuid.NewString())
	assert.Equal(t, http.StatusForbidden, serve(router, req).Code)
}

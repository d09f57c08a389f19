package identity

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantService manages marketplace instances
type TenantService struct {
	tenantRepo identity.TenantRepository
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo identity.TenantRepository, logger *zap.Logger) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// Create registers a new marketplace
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*TenantInfo, error) {
	existing, err := s.tenantRepo.FindByCode(ctx, input.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Tenant with this code already exists")
	}

	tenant, err := identity.NewTenant(input.Code, input.Name, valueobject.Currency(input.Currency), input.Country)
	if err != nil {
		return nil, err
	}
	tenant.Domain = input.Domain
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code))
	info := ToTenantInfo(tenant)
	return &info, nil
}

// Get returns a tenant by ID
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*TenantInfo, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := ToTenantInfo(tenant)
	return &info, nil
}

// Resolve finds an active tenant by code, used by the tenant middleware
func (s *TenantService) Resolve(ctx context.Context, code string) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, shared.NewDomainError("TENANT_SUSPENDED", "Marketplace is currently unavailable")
	}
	return tenant, nil
}

// List returns all tenants
func (s *TenantService) List(ctx context.Context) ([]TenantInfo, error) {
	tenants, err := s.tenantRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TenantInfo, len(tenants))
	for i := range tenants {
		out[i] = ToTenantInfo(&tenants[i])
	}
	return out, nil
}

// Suspend takes a marketplace offline
func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID) (*TenantInfo, error) {
	return s.changeStatus(ctx, id, (*identity.Tenant).Suspend)
}

// Activate brings a marketplace back online
func (s *TenantService) Activate(ctx context.Context, id uuid.UUID) (*TenantInfo, error) {
	return s.changeStatus(ctx, id, (*identity.Tenant).Activate)
}

func (s *TenantService) changeStatus(ctx context.Context, id uuid.UUID, apply func(*identity.Tenant) error) (*TenantInfo, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(tenant); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	s.logger.Info("Tenant status changed",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("status", string(tenant.Status)))
	info := ToTenantInfo(tenant)
	return &info, nil
}

package identity

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByIDForTenant finds a user by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email within a tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)

	// FindAllForTenant lists users, optionally restricted to a role and status
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter UserFilter) ([]User, int64, error)

	// ExistsByEmail checks if an email is already registered in the tenant
	ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	shared.Filter
	Role   *shared.Role
	Status *UserStatus
}

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	FindAll(ctx context.Context) ([]Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

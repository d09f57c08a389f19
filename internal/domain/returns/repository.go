package returns

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// ReturnFilter narrows return listings. BuyerID and SellerID restrict the
// result to one party.
type ReturnFilter struct {
	shared.Filter
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   *ReturnStatus
}

// ReturnRepository defines the interface for return persistence
type ReturnRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ReturnRequest, error)

	// FindBySubOrder lists every return of a sub-order
	FindBySubOrder(ctx context.Context, tenantID, subOrderID uuid.UUID) ([]ReturnRequest, error)

	FindAll(ctx context.Context, tenantID uuid.UUID, filter ReturnFilter) ([]ReturnRequest, int64, error)

	// FindForUser lists returns where the user is the buyer, for data export
	FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]ReturnRequest, error)

	Save(ctx context.Context, r *ReturnRequest) error

	// SaveWithLock updates the return if its version is unchanged
	SaveWithLock(ctx context.Context, r *ReturnRequest) error
}

// DisputeFilter narrows dispute listings
type DisputeFilter struct {
	shared.Filter
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   *DisputeStatus
}

// DisputeRepository defines the interface for dispute persistence
type DisputeRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Dispute, error)

	// ExistsActiveForSubOrder checks for an OPEN or UNDER_REVIEW dispute
	ExistsActiveForSubOrder(ctx context.Context, tenantID, subOrderID uuid.UUID) (bool, error)

	FindAll(ctx context.Context, tenantID uuid.UUID, filter DisputeFilter) ([]Dispute, int64, error)

	// FindForUser lists disputes where the user is the buyer
	FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]Dispute, error)

	// CountActiveForUser counts active disputes the user takes part in as
	// buyer, or as seller when sellerID is set
	CountActiveForUser(ctx context.Context, tenantID, userID uuid.UUID, sellerID *uuid.UUID) (int64, error)

	// FindStale returns active disputes without activity since before,
	// across tenants
	FindStale(ctx context.Context, before time.Time, limit int) ([]Dispute, error)

	// Create inserts a new dispute; ErrAlreadyExists when the sub-order
	// already has an active one
	Create(ctx context.Context, d *Dispute) error

	Save(ctx context.Context, d *Dispute) error

	SaveWithLock(ctx context.Context, d *Dispute) error
}

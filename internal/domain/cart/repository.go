package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for cart persistence
type Repository interface {
	// FindByIDForTenant finds a cart by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Cart, error)

	// FindByBuyer returns the buyer's open cart or shared.ErrNotFound
	FindByBuyer(ctx context.Context, tenantID, buyerID uuid.UUID) (*Cart, error)

	// Save creates or replaces a cart together with its items
	Save(ctx context.Context, cart *Cart) error

	// Delete removes a cart
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// DeleteExpired removes carts that expired before the given time and
	// returns how many were removed
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for payment persistence
type Repository interface {
	// FindByID loads a payment without tenant scoping; provider callbacks
	// identify payments only by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByOrder returns the latest payment of an order
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*Payment, error)

	Save(ctx context.Context, p *Payment) error

	// SaveWithLock updates the payment if its version is unchanged
	SaveWithLock(ctx context.Context, p *Payment) error
}

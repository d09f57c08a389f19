package order

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SubOrderView is a seller-facing sub-order with its parent context
type SubOrderView struct {
	SubOrder
	OrderID         uuid.UUID
	OrderNumber     string
	BuyerID         uuid.UUID
	ShippingAddress valueobject.Address
	PlacedAt        time.Time
}

// Settlement summarises what a seller earned over a period
type Settlement struct {
	SellerID   uuid.UUID
	From       time.Time
	To         time.Time
	Currency   valueobject.Currency
	SubOrders  int64
	Gross      valueobject.Money
	Commission valueobject.Money
	Refunded   valueobject.Money
	Payout     valueobject.Money
}

// Repository persists orders with their sub-orders
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Order, error)
	FindBySubOrderID(ctx context.Context, tenantID, subOrderID uuid.UUID) (*Order, error)
	// FindForBuyer lists a buyer's orders; filter.Filters["status"] narrows by parent status
	FindForBuyer(ctx context.Context, tenantID, buyerID uuid.UUID, filter shared.Filter) ([]Order, int64, error)
	// FindAllForTenant lists orders for admins
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, int64, error)
	FindSubOrdersForSeller(ctx context.Context, tenantID, sellerID uuid.UUID, status *Status, filter shared.Filter) ([]SubOrderView, int64, error)
	// FindUnpaidPlacedBefore returns unpaid orders of any tenant placed before the cutoff
	FindUnpaidPlacedBefore(ctx context.Context, before time.Time, limit int) ([]Order, error)
	// CountOpenForUser counts non-terminal sub-orders where the user is buyer or seller
	CountOpenForUser(ctx context.Context, tenantID, userID uuid.UUID, sellerID *uuid.UUID) (int64, error)
	// AnonymizeBuyerAddresses scrubs the shipping addresses of a buyer's orders
	AnonymizeBuyerAddresses(ctx context.Context, tenantID, buyerID uuid.UUID) (int64, error)
	Settlement(ctx context.Context, tenantID, sellerID uuid.UUID, from, to time.Time) (*Settlement, error)
	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error)
	Save(ctx context.Context, order *Order) error
	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, order *Order) error
}

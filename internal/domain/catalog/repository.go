package catalog

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRepository persists the category tree
type CategoryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	// FindAllForTenant returns every category of the tenant ordered by path
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Category, error)
	// FindDescendants returns categories strictly below id
	FindDescendants(ctx context.Context, tenantID, id uuid.UUID) ([]Category, error)
	ExistsBySlug(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID, slug string) (bool, error)
	Save(ctx context.Context, category *Category) error
	// SaveAll saves categories in one transaction, used after a move
	SaveAll(ctx context.Context, categories []*Category) error
}

// SellerRepository persists storefronts
type SellerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Seller, error)
	FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*Seller, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Seller, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Seller, int64, error)
	ExistsBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error)
	Save(ctx context.Context, seller *Seller) error
}

// ProductSearch narrows product listings
type ProductSearch struct {
	CategoryIDs []uuid.UUID
	SellerID    *uuid.UUID
	Status      *ProductStatus
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
}

// ProductRepository persists listings
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	// Search lists products; filter.Search matches name and SKU
	Search(ctx context.Context, tenantID uuid.UUID, search ProductSearch, filter shared.Filter) ([]Product, int64, error)
	ExistsBySKU(ctx context.Context, tenantID, sellerID uuid.UUID, sku string) (bool, error)
	Save(ctx context.Context, product *Product) error
	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, product *Product) error
}

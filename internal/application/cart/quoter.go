package cart

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/google/uuid"
)

// CategoryTreeSource serves the cached category tree
type CategoryTreeSource interface {
	Tree(ctx context.Context, tenantID uuid.UUID) (*catalog.CategoryTree, error)
}

// RuleSnapshotSource serves the cached pricing rules
type RuleSnapshotSource interface {
	Snapshot(ctx context.Context, tenantID uuid.UUID) (*pricing.RuleSnapshot, error)
}

// Quoter prices a cart against the tenant's rule snapshot. Checkout uses it
// after refreshing the cart lines from the catalog.
type Quoter struct {
	sellerRepo catalog.SellerRepository
	categories CategoryTreeSource
	rules      RuleSnapshotSource
	calculator *pricing.Calculator
}

// NewQuoter creates a new Quoter
func NewQuoter(sellerRepo catalog.SellerRepository, categories CategoryTreeSource, rules RuleSnapshotSource) *Quoter {
	return &Quoter{
		sellerRepo: sellerRepo,
		categories: categories,
		rules:      rules,
		calculator: pricing.NewCalculator(),
	}
}

// Quote prices the cart for delivery to country. promo may be nil.
func (q *Quoter) Quote(ctx context.Context, c *cart.Cart, country string, promo *pricing.Promotion, at time.Time) (*pricing.Quote, error) {
	in, snapshot, err := q.input(ctx, c, country, at)
	if err != nil {
		return nil, err
	}
	in.Promotion = promo
	return q.calculator.Quote(snapshot, in)
}

// AvailableMethods lists the shipping methods each seller group can use
func (q *Quoter) AvailableMethods(ctx context.Context, c *cart.Cart, country string, at time.Time) (map[uuid.UUID][]pricing.ShippingMethod, error) {
	in, snapshot, err := q.input(ctx, c, country, at)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]pricing.ShippingMethod, len(in.SellerTypes))
	for sellerID, sellerType := range in.SellerTypes {
		out[sellerID] = snapshot.AvailableMethods(pricing.MatchContext{
			At:         at,
			SellerType: sellerType,
			Country:    country,
		})
	}
	return out, nil
}

func (q *Quoter) input(ctx context.Context, c *cart.Cart, country string, at time.Time) (pricing.QuoteInput, *pricing.RuleSnapshot, error) {
	snapshot, err := q.rules.Snapshot(ctx, c.TenantID)
	if err != nil {
		return pricing.QuoteInput{}, nil, err
	}
	tree, err := q.categories.Tree(ctx, c.TenantID)
	if err != nil {
		return pricing.QuoteInput{}, nil, err
	}

	groups := c.GroupBySeller()
	sellerIDs := make([]uuid.UUID, len(groups))
	methods := make(map[uuid.UUID]pricing.ShippingMethod, len(groups))
	for i, g := range groups {
		sellerIDs[i] = g.SellerID
		methods[g.SellerID] = g.Method
	}
	sellers, err := q.sellerRepo.FindByIDs(ctx, c.TenantID, sellerIDs)
	if err != nil {
		return pricing.QuoteInput{}, nil, err
	}
	sellerTypes := make(map[uuid.UUID]catalog.SellerType, len(sellers))
	for _, s := range sellers {
		sellerTypes[s.ID] = s.Type
	}

	in := pricing.QuoteInput{
		Currency:    c.Currency,
		At:          at,
		Country:     country,
		SellerTypes: sellerTypes,
		Methods:     methods,
	}
	for _, it := range c.Items {
		path := tree.PathOf(it.CategoryID)
		if path == nil {
			path = []uuid.UUID{it.CategoryID}
		}
		in.Lines = append(in.Lines, pricing.QuoteLine{
			ProductID:    it.ProductID,
			SellerID:     it.SellerID,
			CategoryPath: path,
			SKU:          it.SKU,
			Name:         it.Name,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
		})
	}
	return in, snapshot, nil
}

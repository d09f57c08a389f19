package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromotionResolver looks up a promo code and checks it applies to subtotal
type PromotionResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, code string, subtotal valueobject.Money) (*pricing.Promotion, error)
}

// Config holds cart settings
type Config struct {
	TTL            time.Duration
	Currency       valueobject.Currency
	DefaultCountry string
}

// Service manages buyer carts
type Service struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	sellerRepo  catalog.SellerRepository
	promotions  PromotionResolver
	quoter      *Quoter
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new cart Service
func NewService(
	cartRepo cart.Repository,
	productRepo catalog.ProductRepository,
	sellerRepo catalog.SellerRepository,
	promotions PromotionResolver,
	quoter *Quoter,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.Currency == "" {
		cfg.Currency = valueobject.DefaultCurrency
	}
	return &Service{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		sellerRepo:  sellerRepo,
		promotions:  promotions,
		quoter:      quoter,
		cfg:         cfg,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the buyer's cart. A buyer without a cart gets an empty one
// that is not persisted until the first change.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, actor shared.Actor) (*CartResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// AddItem puts a product in the cart. The product must be listed and in stock
// and its seller must be active.
func (s *Service) AddItem(ctx context.Context, tenantID uuid.UUID, req AddItemRequest, actor shared.Actor) (*CartResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != catalog.ProductStatusActive {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}
	wanted := req.Quantity
	for _, it := range c.Items {
		if it.ProductID == product.ID {
			wanted += it.Quantity
		}
	}
	if product.Available() < wanted {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for "+product.SKU)
	}
	seller, err := s.sellerRepo.FindByIDForTenant(ctx, tenantID, product.SellerID)
	if err != nil {
		return nil, err
	}
	if !seller.CanSell() {
		return nil, shared.NewDomainError("SELLER_UNAVAILABLE", "Seller is not accepting orders")
	}

	err = c.AddItem(cart.Item{
		ProductID:  product.ID,
		SellerID:   product.SellerID,
		CategoryID: product.CategoryID,
		SKU:        product.SKU,
		Name:       product.Name,
		UnitPrice:  product.Price,
		Quantity:   req.Quantity,
	}, s.cfg.TTL)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// UpdateQuantity changes a line's quantity; zero removes it
func (s *Service) UpdateQuantity(ctx context.Context, tenantID, productID uuid.UUID, req UpdateQuantityRequest, actor shared.Actor) (*CartResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	if req.Quantity > 0 {
		product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
		if err != nil {
			return nil, err
		}
		if product.Available() < req.Quantity {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for "+product.SKU)
		}
	}
	if err := c.UpdateQuantity(productID, req.Quantity, s.cfg.TTL); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// RemoveItem drops a product from the cart
func (s *Service) RemoveItem(ctx context.Context, tenantID, productID uuid.UUID, actor shared.Actor) (*CartResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(productID, s.cfg.TTL); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// SelectShipping chooses the shipping method for one seller's group
func (s *Service) SelectShipping(ctx context.Context, tenantID uuid.UUID, req SelectShippingRequest, actor shared.Actor) (*CartResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	if err := c.SelectShipping(req.SellerID, pricing.ShippingMethod(req.Method), s.cfg.TTL); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// ApplyPromotion validates a promo code against the current subtotal and
// attaches it to the cart
func (s *Service) ApplyPromotion(ctx context.Context, tenantID uuid.UUID, req ApplyPromotionRequest, actor shared.Actor) (*CartResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Add products before applying a promotion")
	}
	if _, err := s.promotions.Resolve(ctx, tenantID, req.Code, ToCartResponse(c).Subtotal); err != nil {
		return nil, err
	}
	if err := c.ApplyPromotion(req.Code, s.cfg.TTL); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// RemovePromotion detaches the promo code
func (s *Service) RemovePromotion(ctx context.Context, tenantID uuid.UUID, actor shared.Actor) (*CartResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	c.RemovePromotion(s.cfg.TTL)
	return s.save(ctx, c)
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, tenantID uuid.UUID, actor shared.Actor) (*CartResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	c.Clear(s.cfg.TTL)
	return s.save(ctx, c)
}

// Quote prices the cart for the given destination country. A promo code
// that no longer applies is left out and reported in PromotionWarning.
func (s *Service) Quote(ctx context.Context, tenantID uuid.UUID, req QuoteRequest, actor shared.Actor) (*CartQuoteResponse, error) {
	c, err := s.load(ctx, tenantID, actor)
	if err != nil {
		return nil, err
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = s.cfg.DefaultCountry
	}
	at := s.now()

	resp := &CartQuoteResponse{}
	var promo *pricing.Promotion
	if c.PromotionCode != "" {
		promo, err = s.promotions.Resolve(ctx, tenantID, c.PromotionCode, ToCartResponse(c).Subtotal)
		if err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) {
				return nil, err
			}
			resp.PromotionWarning = err.Error()
			promo = nil
		}
	}

	quote, err := s.quoter.Quote(ctx, c, country, promo, at)
	if err != nil {
		return nil, err
	}
	methods, err := s.quoter.AvailableMethods(ctx, c, country, at)
	if err != nil {
		return nil, err
	}
	resp.Quote = quote
	resp.AvailableMethods = methods
	return resp, nil
}

// PurgeExpired deletes carts whose TTL has elapsed and returns the count
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.cartRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Expired carts purged", zap.Int64("count", n))
	}
	return n, nil
}

func (s *Service) load(ctx context.Context, tenantID uuid.UUID, actor shared.Actor) (*cart.Cart, error) {
	if actor.UserID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	c, err := s.cartRepo.FindByBuyer(ctx, tenantID, actor.UserID)
	if err != nil && shared.CodeOf(err) != shared.ErrNotFound.Code {
		return nil, err
	}
	if c != nil && !c.IsExpired(s.now()) {
		return c, nil
	}
	if c != nil {
		if err := s.cartRepo.Delete(ctx, tenantID, c.ID); err != nil {
			return nil, err
		}
	}
	return cart.NewCart(tenantID, actor.UserID, s.cfg.Currency, s.cfg.TTL)
}

func (s *Service) save(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

package catalog

import (
	"context"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles listing management by sellers
type ProductService struct {
	productRepo     catalog.ProductRepository
	sellerRepo      catalog.SellerRepository
	categoryRepo    catalog.CategoryRepository
	defaultCurrency valueobject.Currency
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	sellerRepo catalog.SellerRepository,
	categoryRepo catalog.CategoryRepository,
	defaultCurrency valueobject.Currency,
	logger *zap.Logger,
) *ProductService {
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &ProductService{
		productRepo:     productRepo,
		sellerRepo:      sellerRepo,
		categoryRepo:    categoryRepo,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a draft listing in the calling seller's store
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest, actor shared.Actor) (*ProductResponse, error) {
	sellerID, err := sellerOf(actor)
	if err != nil {
		return nil, err
	}
	if _, err := s.sellerRepo.FindByIDForTenant(ctx, tenantID, sellerID); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, tenantID, req.CategoryID); err != nil {
		return nil, err
	}

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, sellerID, sku)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("SKU_TAKEN", "A product with this SKU already exists in your store")
	}

	currency := s.defaultCurrency
	if req.Currency != "" {
		currency, err = valueobject.ParseCurrency(req.Currency)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
		}
	}
	price, err := valueobject.NewMoney(req.Price, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", err.Error())
	}

	product, err := catalog.NewProduct(tenantID, sellerID, req.CategoryID, sku, req.Name, price, req.Stock)
	if err != nil {
		return nil, err
	}
	if req.Description != "" || req.WeightGrams > 0 {
		if err := product.UpdateDetails(product.Name, req.Description, product.CategoryID, req.WeightGrams); err != nil {
			return nil, err
		}
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product, actor)

	s.logger.Info("Product created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("seller_id", sellerID.String()),
		zap.String("sku", product.SKU))
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update changes descriptive fields of a listing
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest, actor shared.Actor) (*ProductResponse, error) {
	product, err := s.owned(ctx, tenantID, productID, actor)
	if err != nil {
		return nil, err
	}

	name, description, categoryID, weight := product.Name, product.Description, product.CategoryID, product.WeightGrams
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.CategoryID != nil && *req.CategoryID != categoryID {
		if err := s.ensureCategory(ctx, tenantID, *req.CategoryID); err != nil {
			return nil, err
		}
		categoryID = *req.CategoryID
	}
	if req.WeightGrams != nil {
		weight = *req.WeightGrams
	}

	if err := product.UpdateDetails(name, description, categoryID, weight); err != nil {
		return nil, err
	}
	return s.save(ctx, product, actor)
}

// ChangePrice sets a new unit price
func (s *ProductService) ChangePrice(ctx context.Context, tenantID, productID uuid.UUID, req ChangePriceRequest, actor shared.Actor) (*ProductResponse, error) {
	product, err := s.owned(ctx, tenantID, productID, actor)
	if err != nil {
		return nil, err
	}
	price, err := valueobject.NewMoney(req.Price, product.Price.Currency())
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", err.Error())
	}
	if err := product.ChangePrice(price); err != nil {
		return nil, err
	}
	return s.save(ctx, product, actor)
}

// Publish makes a listing visible to buyers
func (s *ProductService) Publish(ctx context.Context, tenantID, productID uuid.UUID, actor shared.Actor) (*ProductResponse, error) {
	product, err := s.owned(ctx, tenantID, productID, actor)
	if err != nil {
		return nil, err
	}
	seller, err := s.sellerRepo.FindByIDForTenant(ctx, tenantID, product.SellerID)
	if err != nil {
		return nil, err
	}
	if err := product.Publish(seller); err != nil {
		return nil, err
	}
	return s.save(ctx, product, actor)
}

// Archive withdraws a listing. Admins may archive any listing.
func (s *ProductService) Archive(ctx context.Context, tenantID, productID uuid.UUID, actor shared.Actor) (*ProductResponse, error) {
	product, err := s.owned(ctx, tenantID, productID, actor)
	if err != nil {
		return nil, err
	}
	if err := product.Archive(); err != nil {
		return nil, err
	}
	return s.save(ctx, product, actor)
}

// AdjustStock changes on-hand stock with an optimistic version check
func (s *ProductService) AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, req AdjustStockRequest, actor shared.Actor) (*ProductResponse, error) {
	product, err := s.owned(ctx, tenantID, productID, actor)
	if err != nil {
		return nil, err
	}
	if err := product.AdjustStock(req.Delta); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product, actor)

	s.logger.Info("Product stock adjusted",
		zap.String("product_id", product.ID.String()),
		zap.Int("delta", req.Delta),
		zap.Int("stock", product.Stock))
	resp := ToProductResponse(product)
	return &resp, nil
}

// Get returns a listing to its owner or an admin
func (s *ProductService) Get(ctx context.Context, tenantID, productID uuid.UUID, actor shared.Actor) (*ProductResponse, error) {
	product, err := s.owned(ctx, tenantID, productID, actor)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListForSeller lists the calling seller's own listings in any status
func (s *ProductService) ListForSeller(ctx context.Context, tenantID uuid.UUID, f ProductListFilter, actor shared.Actor) (shared.Paginated[ProductResponse], error) {
	sellerID, err := sellerOf(actor)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	search := catalog.ProductSearch{SellerID: &sellerID}
	if f.Status != "" {
		status := catalog.ProductStatus(f.Status)
		search.Status = &status
	}

	products, total, err := s.productRepo.Search(ctx, tenantID, search, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return paged(ToProductResponses(products), total, filter), nil
}

func (s *ProductService) owned(ctx context.Context, tenantID, productID uuid.UUID, actor shared.Actor) (*catalog.Product, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPrivileged() && !actor.OwnsStore(product.SellerID) {
		return nil, shared.ErrForbidden
	}
	return product, nil
}

func (s *ProductService) ensureCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return err
	}
	if !category.Active {
		return shared.NewDomainError("CATEGORY_INACTIVE", "Products cannot be listed in an inactive category")
	}
	return nil
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product, actor shared.Actor) (*ProductResponse, error) {
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product, actor)
	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product, actor shared.Actor) {
	events := shared.StampActor(product.PullDomainEvents(), actor.UserID)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}

func sellerOf(actor shared.Actor) (uuid.UUID, error) {
	if actor.Role != shared.RoleSeller || actor.SellerID == nil {
		return uuid.Nil, shared.NewDomainError("NOT_A_SELLER", "Only sellers with a storefront can manage listings")
	}
	return *actor.SellerID, nil
}

// priceBound converts an optional decimal filter into a rounded bound
func priceBound(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := d.Round(2)
	return &v
}

package catalog

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var browseSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

// BrowseService serves the public catalog. Only ACTIVE listings are visible.
type BrowseService struct {
	productRepo catalog.ProductRepository
	categories  *CategoryService
	logger      *zap.Logger
}

// NewBrowseService creates a new BrowseService
func NewBrowseService(productRepo catalog.ProductRepository, categories *CategoryService, logger *zap.Logger) *BrowseService {
	return &BrowseService{
		productRepo: productRepo,
		categories:  categories,
		logger:      logger,
	}
}

// List returns active listings matching the filter. A category filter
// includes every descendant category.
func (s *BrowseService) List(ctx context.Context, tenantID uuid.UUID, f BrowseFilter) (shared.Paginated[ProductResponse], error) {
	orderBy, ok := browseSortColumns[f.SortBy]
	if f.SortBy != "" && !ok {
		return shared.Paginated[ProductResponse]{}, shared.NewDomainError("INVALID_SORT", "Sort must be one of name, price, created_at")
	}
	if orderBy == "" {
		orderBy = "created_at"
	}
	dir := f.SortDir
	if dir == "" && orderBy != "created_at" {
		dir = "asc"
	}
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  orderBy,
		OrderDir: dir,
		Search:   f.Search,
	}.Normalize()

	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return shared.Paginated[ProductResponse]{}, shared.NewDomainError("INVALID_PRICE_RANGE", "Minimum price cannot exceed maximum price")
	}

	active := catalog.ProductStatusActive
	search := catalog.ProductSearch{
		SellerID: f.SellerID,
		Status:   &active,
		MinPrice: priceBound(f.MinPrice),
		MaxPrice: priceBound(f.MaxPrice),
	}

	if f.CategoryID != nil {
		tree, err := s.categories.Tree(ctx, tenantID)
		if err != nil {
			return shared.Paginated[ProductResponse]{}, err
		}
		ids := activeDescendants(tree, *f.CategoryID)
		if len(ids) == 0 {
			return paged([]ProductResponse{}, 0, filter), nil
		}
		search.CategoryIDs = ids
	}

	products, total, err := s.productRepo.Search(ctx, tenantID, search, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return paged(ToProductResponses(products), total, filter), nil
}

// Get returns one active listing
func (s *BrowseService) Get(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != catalog.ProductStatusActive {
		return nil, shared.ErrNotFound
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// activeDescendants returns the category and its descendants, pruning
// inactive subtrees
func activeDescendants(tree *catalog.CategoryTree, root uuid.UUID) []uuid.UUID {
	c, ok := tree.Get(root)
	if !ok || !c.Active {
		return nil
	}
	out := []uuid.UUID{root}
	for i := 0; i < len(out); i++ {
		for _, child := range tree.Children(out[i]) {
			if cc, ok := tree.Get(child); ok && cc.Active {
				out = append(out, child)
			}
		}
	}
	return out
}

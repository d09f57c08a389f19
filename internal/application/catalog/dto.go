package catalog

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=100"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// RenameCategoryRequest represents a request to rename a category
type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// MoveCategoryRequest re-parents a category; a nil parent makes it a root
type MoveCategoryRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Slug      string      `json:"slug"`
	ParentID  *uuid.UUID  `json:"parent_id,omitempty"`
	Path      []uuid.UUID `json:"path"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CategoryNode is one node of the rendered category tree
type CategoryNode struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Active   bool           `json:"active"`
	Children []CategoryNode `json:"children,omitempty"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		ParentID:  c.ParentID,
		Path:      c.Path,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCategoryNodes renders the tree from its roots. Inactive categories are
// skipped unless includeInactive is set.
func ToCategoryNodes(tree *catalog.CategoryTree, includeInactive bool) []CategoryNode {
	var build func(ids []uuid.UUID) []CategoryNode
	build = func(ids []uuid.UUID) []CategoryNode {
		nodes := make([]CategoryNode, 0, len(ids))
		for _, id := range ids {
			c, ok := tree.Get(id)
			if !ok || (!c.Active && !includeInactive) {
				continue
			}
			nodes = append(nodes, CategoryNode{
				ID:       c.ID,
				Name:     c.Name,
				Slug:     c.Slug,
				Active:   c.Active,
				Children: build(tree.Children(id)),
			})
		}
		return nodes
	}
	return build(tree.Roots())
}

// SellerListFilter narrows the admin seller listing
type SellerListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING ACTIVE SUSPENDED"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SuspendSellerRequest represents a request to suspend a storefront
type SuspendSellerRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ChangeSellerTypeRequest moves a seller to another commission tier
type ChangeSellerTypeRequest struct {
	Type string `json:"type" binding:"required,oneof=INDIVIDUAL BUSINESS PREMIUM"`
}

// UpdateVATRequest sets or clears the seller's VAT registration
type UpdateVATRequest struct {
	VATNumber string `json:"vat_number" binding:"max=20"`
}

// SellerResponse represents a storefront in API responses
type SellerResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	StoreName       string     `json:"store_name"`
	Slug            string     `json:"slug"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	VATRegistered   bool       `json:"vat_registered"`
	VATNumber       string     `json:"vat_number,omitempty"`
	Country         string     `json:"country"`
	ContactEmail    string     `json:"contact_email"`
	SuspendedReason string     `json:"suspended_reason,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToSellerResponse converts a domain Seller to SellerResponse
func ToSellerResponse(s *catalog.Seller) SellerResponse {
	return SellerResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		StoreName:       s.StoreName,
		Slug:            s.Slug,
		Type:            string(s.Type),
		Status:          string(s.Status),
		VATRegistered:   s.VATRegistered,
		VATNumber:       s.VATNumber,
		Country:         s.Country,
		ContactEmail:    s.ContactEmail,
		SuspendedReason: s.SuspendedReason,
		ApprovedAt:      s.ApprovedAt,
		CreatedAt:       s.CreatedAt,
	}
}

// CreateProductRequest represents a request to create a listing
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required,min=1,max=64"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=5000"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Currency    string          `json:"currency" binding:"omitempty,currency"`
	Stock       int             `json:"stock" binding:"min=0"`
	WeightGrams int             `json:"weight_grams" binding:"min=0"`
}

// UpdateProductRequest represents a request to change listing details.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	CategoryID  *uuid.UUID `json:"category_id"`
	WeightGrams *int       `json:"weight_grams" binding:"omitempty,min=0"`
}

// ChangePriceRequest sets a new unit price in the listing's currency
type ChangePriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// AdjustStockRequest adds (positive) or removes (negative) on-hand stock
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ProductListFilter narrows the seller's own product listing
type ProductListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// BrowseFilter narrows the public catalog listing
type BrowseFilter struct {
	CategoryID *uuid.UUID       `form:"-"`
	SellerID   *uuid.UUID       `form:"-"`
	Search     string           `form:"q" binding:"max=100"`
	MinPrice   *decimal.Decimal `form:"min_price"`
	MaxPrice   *decimal.Decimal `form:"max_price"`
	SortBy     string           `form:"sort" binding:"omitempty,oneof=name price created_at"`
	SortDir    string           `form:"dir" binding:"omitempty,oneof=asc desc"`
	Page       int              `form:"page"`
	PageSize   int              `form:"page_size"`
}

// ProductResponse represents a listing in API responses
type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	SellerID    uuid.UUID         `json:"seller_id"`
	CategoryID  uuid.UUID         `json:"category_id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       valueobject.Money `json:"price"`
	Stock       int               `json:"stock"`
	Reserved    int               `json:"reserved"`
	Available   int               `json:"available"`
	WeightGrams int               `json:"weight_grams"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		CategoryID:  p.CategoryID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Reserved:    p.Reserved,
		Available:   p.Available(),
		WeightGrams: p.WeightGrams,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

func paged[T any](items []T, total int64, filter shared.Filter) shared.Paginated[T] {
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize)
}

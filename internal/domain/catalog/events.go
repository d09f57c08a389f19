package catalog

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCategory = "Category"
	AggregateTypeSeller   = "Seller"
	AggregateTypeProduct  = "Product"
)

// Event type constants
const (
	EventTypeCategoryChanged     = "CategoryChanged"
	EventTypeSellerStatusChanged = "SellerStatusChanged"
	EventTypeProductChanged      = "ProductChanged"
)

// CategoryChange describes what happened to a category
type CategoryChange string

const (
	CategoryEventCreated     CategoryChange = "created"
	CategoryEventUpdated     CategoryChange = "updated"
	CategoryEventMoved       CategoryChange = "moved"
	CategoryEventDeactivated CategoryChange = "deactivated"
)

// CategoryChangedEvent is raised on every category write; it invalidates the
// category tree snapshot.
type CategoryChangedEvent struct {
	shared.BaseDomainEvent
	Change   CategoryChange `json:"change"`
	Name     string         `json:"name"`
	ParentID *uuid.UUID     `json:"parent_id,omitempty"`
}

func NewCategoryChangedEvent(c *Category, change CategoryChange) *CategoryChangedEvent {
	return &CategoryChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryChanged, AggregateTypeCategory, c.ID, c.TenantID),
		Change:          change,
		Name:            c.Name,
		ParentID:        c.ParentID,
	}
}

// SellerStatusChangedEvent is raised when a storefront is registered, approved or suspended
type SellerStatusChangedEvent struct {
	shared.BaseDomainEvent
	UserID     uuid.UUID    `json:"user_id"`
	FromStatus SellerStatus `json:"from_status,omitempty"`
	ToStatus   SellerStatus `json:"to_status"`
	Reason     string       `json:"reason,omitempty"`
}

func NewSellerStatusChangedEvent(s *Seller, from SellerStatus) *SellerStatusChangedEvent {
	return &SellerStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSellerStatusChanged, AggregateTypeSeller, s.ID, s.TenantID),
		UserID:          s.UserID,
		FromStatus:      from,
		ToStatus:        s.Status,
		Reason:          s.SuspendedReason,
	}
}

// ProductChange describes what happened to a listing
type ProductChange string

const (
	ProductEventCreated      ProductChange = "created"
	ProductEventUpdated      ProductChange = "updated"
	ProductEventPriceChanged ProductChange = "price_changed"
	ProductEventPublished    ProductChange = "published"
	ProductEventArchived     ProductChange = "archived"
	ProductEventStockChanged ProductChange = "stock_changed"
)

type ProductChangedEvent struct {
	shared.BaseDomainEvent
	Change   ProductChange `json:"change"`
	SellerID uuid.UUID     `json:"seller_id"`
	SKU      string        `json:"sku"`
	Price    string        `json:"price"`
	Stock    int           `json:"stock"`
	Status   ProductStatus `json:"status"`
}

func NewProductChangedEvent(p *Product, change ProductChange) *ProductChangedEvent {
	return &ProductChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductChanged, AggregateTypeProduct, p.ID, p.TenantID),
		Change:          change,
		SellerID:        p.SellerID,
		SKU:             p.SKU,
		Price:           p.Price.String(),
		Stock:           p.Stock,
		Status:          p.Status,
	}
}

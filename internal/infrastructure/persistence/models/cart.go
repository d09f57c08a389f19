package models

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

type cartItemRow struct {
	ProductID  uuid.UUID         `json:"product_id"`
	SellerID   uuid.UUID         `json:"seller_id"`
	CategoryID uuid.UUID         `json:"category_id"`
	SKU        string            `json:"sku"`
	Name       string            `json:"name"`
	UnitPrice  valueobject.Money `json:"unit_price"`
	Quantity   int               `json:"quantity"`
	AddedAt    time.Time         `json:"added_at"`
}

// CartModel is the persistence model for the Cart aggregate root.
// Lines and per-seller shipping methods are stored as JSON.
type CartModel struct {
	TenantAggregateModel
	BuyerID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Currency      string    `gorm:"type:char(3);not null;default:'EUR'"`
	ItemsJSON     string    `gorm:"column:items;type:jsonb;not null;default:'[]'"`
	MethodsJSON   string    `gorm:"column:methods;type:jsonb;not null;default:'{}'"`
	PromotionCode string    `gorm:"type:varchar(32)"`
	ExpiresAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart.
func (m *CartModel) ToDomain() *cart.Cart {
	var rows []cartItemRow
	fromJSON(m.ItemsJSON, &rows)
	items := make([]cart.Item, len(rows))
	for i, r := range rows {
		items[i] = cart.Item{
			ProductID:  r.ProductID,
			SellerID:   r.SellerID,
			CategoryID: r.CategoryID,
			SKU:        r.SKU,
			Name:       r.Name,
			UnitPrice:  r.UnitPrice,
			Quantity:   r.Quantity,
			AddedAt:    r.AddedAt,
		}
	}
	methods := make(map[uuid.UUID]pricing.ShippingMethod)
	fromJSON(m.MethodsJSON, &methods)
	return &cart.Cart{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		BuyerID:             m.BuyerID,
		Currency:            valueobject.Currency(m.Currency),
		Items:               items,
		Methods:             methods,
		PromotionCode:       m.PromotionCode,
		ExpiresAt:           m.ExpiresAt,
	}
}

// FromDomain populates the persistence model from a domain Cart.
func (m *CartModel) FromDomain(c *cart.Cart) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	rows := make([]cartItemRow, len(c.Items))
	for i, it := range c.Items {
		rows[i] = cartItemRow{
			ProductID:  it.ProductID,
			SellerID:   it.SellerID,
			CategoryID: it.CategoryID,
			SKU:        it.SKU,
			Name:       it.Name,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			AddedAt:    it.AddedAt,
		}
	}
	m.BuyerID = c.BuyerID
	m.Currency = string(c.Currency)
	m.ItemsJSON = toJSON(rows, "[]")
	m.MethodsJSON = toJSON(c.Methods, "{}")
	m.PromotionCode = c.PromotionCode
	m.ExpiresAt = c.ExpiresAt
}

// CartModelFromDomain creates a new persistence model from a domain Cart.
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{}
	m.FromDomain(c)
	return m
}

package cart

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AddItemRequest represents a request to put a product in the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateQuantityRequest sets a line quantity; zero removes the line
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=999"`
}

// SelectShippingRequest chooses a shipping method for one seller group
type SelectShippingRequest struct {
	SellerID uuid.UUID `json:"seller_id" binding:"required"`
	Method   string    `json:"method" binding:"required,oneof=STANDARD EXPRESS PICKUP"`
}

// ApplyPromotionRequest represents a promo code typed by the buyer
type ApplyPromotionRequest struct {
	Code string `json:"code" binding:"required,min=3,max=32"`
}

// QuoteRequest selects the delivery country used for VAT and shipping
type QuoteRequest struct {
	Country string `form:"country" binding:"omitempty,country"`
}

// CartItemResponse is one cart line
type CartItemResponse struct {
	ProductID  uuid.UUID         `json:"product_id"`
	SellerID   uuid.UUID         `json:"seller_id"`
	CategoryID uuid.UUID         `json:"category_id"`
	SKU        string            `json:"sku"`
	Name       string            `json:"name"`
	UnitPrice  valueobject.Money `json:"unit_price"`
	Quantity   int               `json:"quantity"`
	LineTotal  valueobject.Money `json:"line_total"`
}

// CartGroupResponse is the part of the cart fulfilled by one seller
type CartGroupResponse struct {
	SellerID uuid.UUID          `json:"seller_id"`
	Method   string             `json:"shipping_method"`
	Items    []CartItemResponse `json:"items"`
	Subtotal valueobject.Money  `json:"subtotal"`
}

// CartResponse represents the buyer's cart
type CartResponse struct {
	ID            uuid.UUID           `json:"id"`
	Currency      string              `json:"currency"`
	Groups        []CartGroupResponse `json:"groups"`
	PromotionCode string              `json:"promotion_code,omitempty"`
	ItemCount     int                 `json:"item_count"`
	Subtotal      valueobject.Money   `json:"subtotal"`
	ExpiresAt     time.Time           `json:"expires_at"`
}

// ToCartResponse converts a domain cart, grouped by seller
func ToCartResponse(c *cart.Cart) CartResponse {
	resp := CartResponse{
		ID:            c.ID,
		Currency:      string(c.Currency),
		Groups:        []CartGroupResponse{},
		PromotionCode: c.PromotionCode,
		ItemCount:     c.ItemCount(),
		Subtotal:      valueobject.Zero(c.Currency),
		ExpiresAt:     c.ExpiresAt,
	}
	for _, g := range c.GroupBySeller() {
		group := CartGroupResponse{
			SellerID: g.SellerID,
			Method:   string(g.Method),
			Subtotal: valueobject.Zero(c.Currency),
		}
		for _, it := range g.Items {
			line := it.UnitPrice.MultiplyByInt(int64(it.Quantity))
			group.Items = append(group.Items, CartItemResponse{
				ProductID:  it.ProductID,
				SellerID:   it.SellerID,
				CategoryID: it.CategoryID,
				SKU:        it.SKU,
				Name:       it.Name,
				UnitPrice:  it.UnitPrice,
				Quantity:   it.Quantity,
				LineTotal:  line,
			})
			group.Subtotal = group.Subtotal.MustAdd(line)
		}
		resp.Subtotal = resp.Subtotal.MustAdd(group.Subtotal)
		resp.Groups = append(resp.Groups, group)
	}
	return resp
}

// CartQuoteResponse is the priced cart. PromotionWarning explains why an
// applied code was left out of the quote.
type CartQuoteResponse struct {
	*pricing.Quote
	PromotionWarning string                                 `json:"promotion_warning,omitempty"`
	AvailableMethods map[uuid.UUID][]pricing.ShippingMethod `json:"available_methods"`
}

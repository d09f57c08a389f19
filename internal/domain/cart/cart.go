package cart

import (
	"bytes"
	"sort"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const (
	MinQuantity = 1
	MaxQuantity = 999
	// MaxLines bounds the number of distinct products in one cart
	MaxLines = 100
)

// Item is one product line in the cart. Price and names are refreshed from
// the catalog at checkout.
type Item struct {
	ProductID  uuid.UUID
	SellerID   uuid.UUID
	CategoryID uuid.UUID
	SKU        string
	Name       string
	UnitPrice  valueobject.Money
	Quantity   int
	AddedAt    time.Time
}

// SellerGroup is the part of the cart fulfilled by one seller
type SellerGroup struct {
	SellerID uuid.UUID
	Method   pricing.ShippingMethod
	Items    []Item
}

// Cart is a buyer's open basket. There is at most one per buyer.
type Cart struct {
	shared.TenantAggregateRoot
	BuyerID       uuid.UUID
	Currency      valueobject.Currency
	Items         []Item
	Methods       map[uuid.UUID]pricing.ShippingMethod
	PromotionCode string
	ExpiresAt     time.Time
}

// NewCart creates an empty cart that expires after ttl of inactivity
func NewCart(tenantID, buyerID uuid.UUID, currency valueobject.Currency, ttl time.Duration) (*Cart, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer is required")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	c := &Cart{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BuyerID:             buyerID,
		Currency:            currency,
		Methods:             make(map[uuid.UUID]pricing.ShippingMethod),
	}
	c.ExpiresAt = c.CreatedAt.Add(ttl)
	return c, nil
}

// AddItem adds a product or merges the quantity into an existing line
func (c *Cart) AddItem(item Item, ttl time.Duration) error {
	if item.ProductID == uuid.Nil || item.SellerID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Product and seller are required")
	}
	if item.UnitPrice.Currency() != c.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH", "Product is priced in "+string(item.UnitPrice.Currency()))
	}
	if i := c.indexOf(item.ProductID); i >= 0 {
		merged := c.Items[i].Quantity + item.Quantity
		if err := validateQuantity(item.Quantity); err != nil {
			return err
		}
		if err := validateQuantity(merged); err != nil {
			return err
		}
		c.Items[i].Quantity = merged
		c.Items[i].UnitPrice = item.UnitPrice
		c.Items[i].Name = item.Name
		c.changed(ttl)
		return nil
	}
	if err := validateQuantity(item.Quantity); err != nil {
		return err
	}
	if len(c.Items) >= MaxLines {
		return shared.NewDomainError("CART_FULL", "Cart cannot hold more products")
	}
	item.SKU = strings.TrimSpace(item.SKU)
	item.AddedAt = time.Now().UTC()
	c.Items = append(c.Items, item)
	c.changed(ttl)
	return nil
}

// UpdateQuantity sets a line's quantity; zero removes the line
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int, ttl time.Duration) error {
	i := c.indexOf(productID)
	if i < 0 {
		return shared.NewDomainError("NOT_FOUND", "Product is not in the cart")
	}
	if quantity == 0 {
		c.removeAt(i)
		c.changed(ttl)
		return nil
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	c.Items[i].Quantity = quantity
	c.changed(ttl)
	return nil
}

// RemoveItem drops a line from the cart
func (c *Cart) RemoveItem(productID uuid.UUID, ttl time.Duration) error {
	i := c.indexOf(productID)
	if i < 0 {
		return shared.NewDomainError("NOT_FOUND", "Product is not in the cart")
	}
	c.removeAt(i)
	c.changed(ttl)
	return nil
}

// SelectShipping chooses the shipping method for one seller's group
func (c *Cart) SelectShipping(sellerID uuid.UUID, method pricing.ShippingMethod, ttl time.Duration) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_SHIPPING_METHOD", "Unknown shipping method")
	}
	if !c.hasSeller(sellerID) {
		return shared.NewDomainError("NOT_FOUND", "Cart has no items from this seller")
	}
	c.Methods[sellerID] = method
	c.changed(ttl)
	return nil
}

// MethodFor returns the selected method for a seller, STANDARD by default
func (c *Cart) MethodFor(sellerID uuid.UUID) pricing.ShippingMethod {
	if m, ok := c.Methods[sellerID]; ok {
		return m
	}
	return pricing.ShippingStandard
}

// ApplyPromotion stores a promo code; it is validated when quoting
func (c *Cart) ApplyPromotion(code string, ttl time.Duration) error {
	code = pricing.NormalizePromoCode(code)
	if code == "" {
		return shared.NewDomainError("INVALID_PROMOTION_CODE", "Promotion code is required")
	}
	c.PromotionCode = code
	c.changed(ttl)
	return nil
}

// RemovePromotion clears the promo code
func (c *Cart) RemovePromotion(ttl time.Duration) {
	c.PromotionCode = ""
	c.changed(ttl)
}

// Clear empties the cart after checkout
func (c *Cart) Clear(ttl time.Duration) {
	c.Items = nil
	c.Methods = make(map[uuid.UUID]pricing.ShippingMethod)
	c.PromotionCode = ""
	c.changed(ttl)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// IsExpired reports whether the cart outlived its TTL
func (c *Cart) IsExpired(at time.Time) bool {
	return !c.ExpiresAt.IsZero() && !at.Before(c.ExpiresAt)
}

// ItemCount sums quantities across lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// ProductIDs lists the products in the cart
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	return ids
}

// GroupBySeller splits the cart per seller, ordered by seller ID. Items keep
// the order in which they were added.
func (c *Cart) GroupBySeller() []SellerGroup {
	index := make(map[uuid.UUID]int)
	var groups []SellerGroup
	for _, it := range c.Items {
		i, ok := index[it.SellerID]
		if !ok {
			i = len(groups)
			index[it.SellerID] = i
			groups = append(groups, SellerGroup{SellerID: it.SellerID, Method: c.MethodFor(it.SellerID)})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	sort.Slice(groups, func(a, b int) bool {
		return bytes.Compare(groups[a].SellerID[:], groups[b].SellerID[:]) < 0
	})
	return groups
}

// Refresh replaces the catalog snapshot of a line, used when repricing
func (c *Cart) Refresh(productID uuid.UUID, name string, price valueobject.Money) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Name = name
		c.Items[i].UnitPrice = price
	}
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) hasSeller(sellerID uuid.UUID) bool {
	for _, it := range c.Items {
		if it.SellerID == sellerID {
			return true
		}
	}
	return false
}

func (c *Cart) removeAt(i int) {
	sellerID := c.Items[i].SellerID
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	if !c.hasSeller(sellerID) {
		delete(c.Methods, sellerID)
	}
}

// changed slides the expiry forward
func (c *Cart) changed(ttl time.Duration) {
	c.Touch()
	c.ExpiresAt = c.UpdatedAt.Add(ttl)
	c.IncrementVersion()
}

func validateQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 999")
	}
	return nil
}

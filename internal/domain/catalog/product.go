package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ProductStatus represents the listing state of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// Product is a seller's listing
type Product struct {
	shared.TenantAggregateRoot
	SellerID    uuid.UUID
	CategoryID  uuid.UUID
	SKU         string
	Name        string
	Description string
	Price       valueobject.Money
	Stock       int
	Reserved    int
	WeightGrams int
	Status      ProductStatus
}

// NewProduct creates a draft listing
func NewProduct(tenantID, sellerID, categoryID uuid.UUID, sku, name string, price valueobject.Money, stock int) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if sellerID == uuid.Nil || categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Seller and category are required")
	}

	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SellerID:            sellerID,
		CategoryID:          categoryID,
		SKU:                 strings.ToUpper(strings.TrimSpace(sku)),
		Name:                strings.TrimSpace(name),
		Price:               price,
		Stock:               stock,
		Status:              ProductStatusDraft,
	}
	p.AddDomainEvent(NewProductChangedEvent(p, ProductEventCreated))
	return p, nil
}

// UpdateDetails changes descriptive fields
func (p *Product) UpdateDetails(name, description string, categoryID uuid.UUID, weightGrams int) error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived products cannot be edited")
	}
	if err := validateProductName(name); err != nil {
		return err
	}
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Category is required")
	}
	if weightGrams < 0 {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}
	p.Name = strings.TrimSpace(name)
	p.Description = strings.TrimSpace(description)
	p.CategoryID = categoryID
	p.WeightGrams = weightGrams
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductChangedEvent(p, ProductEventUpdated))
	return nil
}

// ChangePrice sets a new unit price
func (p *Product) ChangePrice(price valueobject.Money) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if p.Price.Currency() != "" && price.Currency() != p.Price.Currency() {
		return shared.NewDomainError("CURRENCY_MISMATCH", "Price currency cannot change")
	}
	p.Price = price
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductChangedEvent(p, ProductEventPriceChanged))
	return nil
}

// Publish makes the listing visible to buyers. The seller must be active.
func (p *Product) Publish(seller *Seller) error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Product is already published")
	}
	if seller == nil || seller.ID != p.SellerID {
		return shared.ErrForbidden
	}
	if !seller.CanSell() {
		return shared.NewDomainError("SELLER_NOT_ACTIVE", "Seller is not active")
	}
	if !p.Price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be positive to publish")
	}
	p.Status = ProductStatusActive
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductChangedEvent(p, ProductEventPublished))
	return nil
}

// Archive withdraws the listing permanently
func (p *Product) Archive() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Product is already archived")
	}
	p.Status = ProductStatusArchived
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductChangedEvent(p, ProductEventArchived))
	return nil
}

// AdjustStock changes on-hand stock by delta. Stock never drops below the
// reserved quantity.
func (p *Product) AdjustStock(delta int) error {
	if p.Stock+delta < p.Reserved {
		return shared.ErrInsufficientStock
	}
	p.Stock += delta
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductChangedEvent(p, ProductEventStockChanged))
	return nil
}

// Available is the quantity that can still be sold
func (p *Product) Available() int {
	return p.Stock - p.Reserved
}

// IsPurchasable reports whether buyers can order the product
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive && p.Available() > 0
}

// Reserve holds quantity for a placed order
func (p *Product) Reserve(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Status != ProductStatusActive {
		return shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product "+p.SKU+" is not available")
	}
	if p.Available() < qty {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for "+p.SKU)
	}
	p.Reserved += qty
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Release returns reserved quantity, e.g. on cancellation
func (p *Product) Release(qty int) {
	if qty > p.Reserved {
		qty = p.Reserved
	}
	p.Reserved -= qty
	p.Touch()
	p.IncrementVersion()
}

// Fulfil converts reserved quantity into shipped quantity
func (p *Product) Fulfil(qty int) error {
	if qty > p.Reserved {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot fulfil more than reserved")
	}
	p.Reserved -= qty
	p.Stock -= qty
	p.Touch()
	p.IncrementVersion()
	return nil
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	for _, r := range sku {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.') {
			return shared.NewDomainError("INVALID_SKU", "SKU may only contain letters, digits, '-', '_' and '.'")
		}
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price valueobject.Money) error {
	if price.Currency() == "" {
		return shared.NewDomainError("INVALID_PRICE", "Price currency is required")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}

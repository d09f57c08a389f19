package pricing

import (
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionType is how a promotion's value is interpreted
type PromotionType string

const (
	PromotionPercent PromotionType = "PERCENT"
	PromotionFixed   PromotionType = "FIXED"
)

// Promotion is a marketplace-wide promo code funded across all sellers in a cart
type Promotion struct {
	shared.TenantAggregateRoot
	Code           string
	Description    string
	Type           PromotionType
	Value          decimal.Decimal
	Currency       valueobject.Currency
	MinSubtotal    decimal.Decimal
	Window         Window
	MaxRedemptions int // 0 means unlimited
	Redeemed       int
	Active         bool
}

// NewPromotion creates an active promotion
func NewPromotion(tenantID uuid.UUID, code, description string, typ PromotionType, value decimal.Decimal, currency valueobject.Currency, minSubtotal decimal.Decimal, window Window, maxRedemptions int) (*Promotion, error) {
	code = NormalizePromoCode(code)
	if len(code) < 3 || len(code) > 32 {
		return nil, shared.NewDomainError("INVALID_CODE", "Promotion code must be between 3 and 32 characters")
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return nil, shared.NewDomainError("INVALID_CODE", "Promotion code may only contain letters, digits, '-' and '_'")
		}
	}
	switch typ {
	case PromotionPercent:
		if !value.IsPositive() || value.GreaterThan(maxPercent) {
			return nil, shared.NewDomainError("INVALID_VALUE", "Percent discount must be between 0 and 100")
		}
	case PromotionFixed:
		if !value.IsPositive() {
			return nil, shared.NewDomainError("INVALID_VALUE", "Fixed discount must be positive")
		}
	default:
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown promotion type")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency is required")
	}
	if minSubtotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Minimum subtotal cannot be negative")
	}
	if err := window.validate(); err != nil {
		return nil, err
	}
	if maxRedemptions < 0 {
		return nil, shared.NewDomainError("INVALID_VALUE", "Max redemptions cannot be negative")
	}

	p := &Promotion{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Description:         strings.TrimSpace(description),
		Type:                typ,
		Value:               value,
		Currency:            currency,
		MinSubtotal:         minSubtotal,
		Window:              window,
		MaxRedemptions:      maxRedemptions,
		Active:              true,
	}
	p.AddDomainEvent(NewPromotionChangedEvent(p))
	return p, nil
}

// NormalizePromoCode upper-cases and trims a code as typed by a buyer
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckApplicable verifies the promotion can be used for subtotal at the given time
func (p *Promotion) CheckApplicable(at time.Time, subtotal valueobject.Money) error {
	if !p.Active || !p.Window.Contains(at) {
		return shared.NewDomainError("PROMOTION_EXPIRED", "Promotion code is not active")
	}
	if p.MaxRedemptions > 0 && p.Redeemed >= p.MaxRedemptions {
		return shared.NewDomainError("PROMOTION_EXHAUSTED", "Promotion code has been fully redeemed")
	}
	if subtotal.Currency() != p.Currency {
		return shared.NewDomainError("PROMOTION_NOT_APPLICABLE", "Promotion does not apply to this currency")
	}
	if subtotal.Amount().LessThan(p.MinSubtotal) {
		return shared.NewDomainError("PROMOTION_NOT_APPLICABLE", "Cart subtotal is below the promotion minimum")
	}
	return nil
}

// DiscountFor computes the discount for a cart subtotal, capped at the subtotal
func (p *Promotion) DiscountFor(subtotal valueobject.Money) valueobject.Money {
	var discount valueobject.Money
	switch p.Type {
	case PromotionPercent:
		discount = subtotal.Percent(p.Value)
	default:
		discount, _ = valueobject.NewMoney(p.Value, subtotal.Currency())
	}
	return discount.Min(subtotal).RoundMinor()
}

// Redeem consumes one use of the promotion
func (p *Promotion) Redeem(at time.Time) error {
	if !p.Active || !p.Window.Contains(at) {
		return shared.NewDomainError("PROMOTION_EXPIRED", "Promotion code is not active")
	}
	if p.MaxRedemptions > 0 && p.Redeemed >= p.MaxRedemptions {
		return shared.NewDomainError("PROMOTION_EXHAUSTED", "Promotion code has been fully redeemed")
	}
	p.Redeemed++
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPromotionRedeemedEvent(p))
	return nil
}

// Deactivate stops the promotion from being applied
func (p *Promotion) Deactivate() {
	p.Active = false
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPromotionChangedEvent(p))
}

package pricing

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleScheduleRequest holds the fields shared by every rule request
type RuleScheduleRequest struct {
	Name          string     `json:"name" binding:"required,min=1,max=120"`
	Priority      int        `json:"priority" binding:"min=0"`
	EffectiveFrom time.Time  `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time `json:"effective_to"`
}

func (r RuleScheduleRequest) window() pricing.Window {
	return pricing.Window{From: r.EffectiveFrom.UTC(), To: utcPtr(r.EffectiveTo)}
}

// CommissionRuleRequest creates or replaces a commission rule
type CommissionRuleRequest struct {
	RuleScheduleRequest
	CategoryID  *uuid.UUID      `json:"category_id"`
	SellerType  *string         `json:"seller_type" binding:"omitempty,oneof=INDIVIDUAL BUSINESS PREMIUM"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	FixedFee    decimal.Decimal `json:"fixed_fee"`
}

// VatRuleRequest creates or replaces a VAT rule
type VatRuleRequest struct {
	RuleScheduleRequest
	Country     string          `json:"country" binding:"required,country"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

// ShippingRuleRequest creates or replaces a shipping rule
type ShippingRuleRequest struct {
	RuleScheduleRequest
	Method     string           `json:"method" binding:"required,oneof=STANDARD EXPRESS PICKUP"`
	Carrier    string           `json:"carrier" binding:"required,max=50"`
	SellerType *string          `json:"seller_type" binding:"omitempty,oneof=INDIVIDUAL BUSINESS PREMIUM"`
	Country    string           `json:"country" binding:"omitempty,country"`
	BaseFee    decimal.Decimal  `json:"base_fee"`
	PerItemFee decimal.Decimal  `json:"per_item_fee"`
	FreeAbove  *decimal.Decimal `json:"free_above"`
}

// SetRuleActiveRequest enables or disables a rule
type SetRuleActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// RuleResponse holds the fields shared by every rule response
type RuleResponse struct {
	ID            uuid.UUID  `json:"id"`
	Kind          string     `json:"kind"`
	Name          string     `json:"name"`
	Priority      int        `json:"priority"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
	Active        bool       `json:"active"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toRuleResponse(r *pricing.RuleBase) RuleResponse {
	return RuleResponse{
		ID:            r.ID,
		Kind:          string(r.Kind),
		Name:          r.Name,
		Priority:      r.Priority,
		EffectiveFrom: r.Window.From,
		EffectiveTo:   r.Window.To,
		Active:        r.Active,
		UpdatedAt:     r.UpdatedAt,
	}
}

// CommissionRuleResponse represents a commission rule in API responses
type CommissionRuleResponse struct {
	RuleResponse
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	SellerType  *string           `json:"seller_type,omitempty"`
	RatePercent decimal.Decimal   `json:"rate_percent"`
	FixedFee    valueobject.Money `json:"fixed_fee"`
}

func ToCommissionRuleResponse(r *pricing.CommissionRule) CommissionRuleResponse {
	return CommissionRuleResponse{
		RuleResponse: toRuleResponse(&r.RuleBase),
		CategoryID:   r.CategoryID,
		SellerType:   sellerTypeString(r.SellerType),
		RatePercent:  r.RatePercent,
		FixedFee:     r.FixedFee,
	}
}

// VatRuleResponse represents a VAT rule in API responses
type VatRuleResponse struct {
	RuleResponse
	Country     string          `json:"country"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

func ToVatRuleResponse(r *pricing.VatRule) VatRuleResponse {
	return VatRuleResponse{
		RuleResponse: toRuleResponse(&r.RuleBase),
		Country:      r.Country,
		CategoryID:   r.CategoryID,
		RatePercent:  r.RatePercent,
	}
}

// ShippingRuleResponse represents a shipping rule in API responses
type ShippingRuleResponse struct {
	RuleResponse
	Method     string             `json:"method"`
	Carrier    string             `json:"carrier"`
	SellerType *string            `json:"seller_type,omitempty"`
	Country    string             `json:"country,omitempty"`
	BaseFee    valueobject.Money  `json:"base_fee"`
	PerItemFee valueobject.Money  `json:"per_item_fee"`
	FreeAbove  *valueobject.Money `json:"free_above,omitempty"`
}

func ToShippingRuleResponse(r *pricing.ShippingRule) ShippingRuleResponse {
	return ShippingRuleResponse{
		RuleResponse: toRuleResponse(&r.RuleBase),
		Method:       string(r.Method),
		Carrier:      r.Carrier,
		SellerType:   sellerTypeString(r.SellerType),
		Country:      r.Country,
		BaseFee:      r.BaseFee,
		PerItemFee:   r.PerItemFee,
		FreeAbove:    r.FreeAbove,
	}
}

// CreatePromotionRequest represents a request to create a promo code
type CreatePromotionRequest struct {
	Code           string          `json:"code" binding:"required,min=3,max=32"`
	Description    string          `json:"description" binding:"max=500"`
	Type           string          `json:"type" binding:"required,oneof=PERCENT FIXED"`
	Value          decimal.Decimal `json:"value" binding:"required"`
	MinSubtotal    decimal.Decimal `json:"min_subtotal"`
	ValidFrom      time.Time       `json:"valid_from" binding:"required"`
	ValidTo        *time.Time      `json:"valid_to"`
	MaxRedemptions int             `json:"max_redemptions" binding:"min=0"`
}

// PromotionListFilter narrows the promotion listing
type PromotionListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// PromotionResponse represents a promo code in API responses
type PromotionResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	Value          decimal.Decimal `json:"value"`
	Currency       string          `json:"currency"`
	MinSubtotal    decimal.Decimal `json:"min_subtotal"`
	ValidFrom      time.Time       `json:"valid_from"`
	ValidTo        *time.Time      `json:"valid_to,omitempty"`
	MaxRedemptions int             `json:"max_redemptions"`
	Redeemed       int             `json:"redeemed"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
}

func ToPromotionResponse(p *pricing.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:             p.ID,
		Code:           p.Code,
		Description:    p.Description,
		Type:           string(p.Type),
		Value:          p.Value,
		Currency:       string(p.Currency),
		MinSubtotal:    p.MinSubtotal,
		ValidFrom:      p.Window.From,
		ValidTo:        p.Window.To,
		MaxRedemptions: p.MaxRedemptions,
		Redeemed:       p.Redeemed,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
	}
}

func sellerTypeString(t *catalog.SellerType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

func sellerTypePtr(s *string) *catalog.SellerType {
	if s == nil || *s == "" {
		return nil
	}
	t := catalog.SellerType(*s)
	return &t
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

package pricing

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
)

const (
	AggregateTypeRule      = "PricingRule"
	AggregateTypePromotion = "Promotion"

	EventTypeRuleChanged       = "PricingRuleChanged"
	EventTypePromotionChanged  = "PromotionChanged"
	EventTypePromotionRedeemed = "PromotionRedeemed"
)

// RuleKind names the rule family
type RuleKind string

const (
	RuleKindCommission RuleKind = "COMMISSION"
	RuleKindVat        RuleKind = "VAT"
	RuleKindShipping   RuleKind = "SHIPPING"
)

// RuleChange describes a rule mutation
type RuleChange string

const (
	RuleCreated     RuleChange = "created"
	RuleUpdated     RuleChange = "updated"
	RuleActivated   RuleChange = "activated"
	RuleDeactivated RuleChange = "deactivated"
	RuleDeleted     RuleChange = "deleted"
)

// RuleChangedEvent invalidates the tenant's rule snapshot
type RuleChangedEvent struct {
	shared.BaseDomainEvent
	Kind     RuleKind   `json:"kind"`
	Change   RuleChange `json:"change"`
	Name     string     `json:"name"`
	Priority int        `json:"priority"`
}

func NewRuleChangedEvent(r *RuleBase, change RuleChange) *RuleChangedEvent {
	return &RuleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRuleChanged, AggregateTypeRule, r.ID, r.TenantID),
		Kind:            r.Kind,
		Change:          change,
		Name:            r.Name,
		Priority:        r.Priority,
	}
}

type PromotionChangedEvent struct {
	shared.BaseDomainEvent
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

func NewPromotionChangedEvent(p *Promotion) *PromotionChangedEvent {
	return &PromotionChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePromotionChanged, AggregateTypePromotion, p.ID, p.TenantID),
		Code:            p.Code,
		Active:          p.Active,
	}
}

type PromotionRedeemedEvent struct {
	shared.BaseDomainEvent
	Code     string `json:"code"`
	Redeemed int    `json:"redeemed"`
}

func NewPromotionRedeemedEvent(p *Promotion) *PromotionRedeemedEvent {
	return &PromotionRedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePromotionRedeemed, AggregateTypePromotion, p.ID, p.TenantID),
		Code:            p.Code,
		Redeemed:        p.Redeemed,
	}
}

package models

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleBaseModel holds the columns every pricing rule table shares
type RuleBaseModel struct {
	TenantAggregateModel
	Name          string     `gorm:"type:varchar(120);not null"`
	Priority      int        `gorm:"not null;default:0"`
	EffectiveFrom time.Time  `gorm:"not null;index"`
	EffectiveTo   *time.Time `gorm:"index"`
	Active        bool       `gorm:"not null"`
}

func (m *RuleBaseModel) fromDomain(r *pricing.RuleBase) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Name = r.Name
	m.Priority = r.Priority
	m.EffectiveFrom = r.Window.From
	m.EffectiveTo = r.Window.To
	m.Active = r.Active
}

func (m *RuleBaseModel) toDomain(kind pricing.RuleKind) pricing.RuleBase {
	return pricing.RuleBase{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Kind:                kind,
		Name:                m.Name,
		Priority:            m.Priority,
		Window:              pricing.Window{From: m.EffectiveFrom, To: m.EffectiveTo},
		Active:              m.Active,
	}
}

// CommissionRuleModel is the persistence model for commission rules.
type CommissionRuleModel struct {
	RuleBaseModel
	CategoryID  *uuid.UUID          `gorm:"type:uuid;index"`
	SellerType  *catalog.SellerType `gorm:"type:varchar(20)"`
	RatePercent decimal.Decimal     `gorm:"type:decimal(7,4);not null"`
	FixedFee    decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Currency    string              `gorm:"type:char(3);not null;default:'EUR'"`
}

// TableName returns the table name for GORM
func (CommissionRuleModel) TableName() string {
	return "commission_rules"
}

// ToDomain converts the persistence model to a domain CommissionRule.
func (m *CommissionRuleModel) ToDomain() *pricing.CommissionRule {
	return &pricing.CommissionRule{
		RuleBase:    m.toDomain(pricing.RuleKindCommission),
		CategoryID:  m.CategoryID,
		SellerType:  m.SellerType,
		RatePercent: m.RatePercent,
		FixedFee:    money(m.FixedFee, valueobject.Currency(m.Currency)),
	}
}

// FromDomain populates the persistence model from a domain CommissionRule.
func (m *CommissionRuleModel) FromDomain(r *pricing.CommissionRule) {
	m.fromDomain(&r.RuleBase)
	m.CategoryID = r.CategoryID
	m.SellerType = r.SellerType
	m.RatePercent = r.RatePercent
	m.FixedFee = r.FixedFee.Amount()
	m.Currency = string(r.FixedFee.Currency())
}

// VatRuleModel is the persistence model for VAT rules.
type VatRuleModel struct {
	RuleBaseModel
	Country     string          `gorm:"type:char(2);not null;index"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	RatePercent decimal.Decimal `gorm:"type:decimal(7,4);not null"`
}

// TableName returns the table name for GORM
func (VatRuleModel) TableName() string {
	return "vat_rules"
}

// ToDomain converts the persistence model to a domain VatRule.
func (m *VatRuleModel) ToDomain() *pricing.VatRule {
	return &pricing.VatRule{
		RuleBase:    m.toDomain(pricing.RuleKindVat),
		Country:     m.Country,
		CategoryID:  m.CategoryID,
		RatePercent: m.RatePercent,
	}
}

// FromDomain populates the persistence model from a domain VatRule.
func (m *VatRuleModel) FromDomain(r *pricing.VatRule) {
	m.fromDomain(&r.RuleBase)
	m.Country = r.Country
	m.CategoryID = r.CategoryID
	m.RatePercent = r.RatePercent
}

// ShippingRuleModel is the persistence model for shipping rules.
type ShippingRuleModel struct {
	RuleBaseModel
	Method     pricing.ShippingMethod `gorm:"type:varchar(20);not null;index"`
	Carrier    string                 `gorm:"type:varchar(50)"`
	SellerType *catalog.SellerType    `gorm:"type:varchar(20)"`
	Country    string                 `gorm:"type:varchar(2)"`
	BaseFee    decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	PerItemFee decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	FreeAbove  *decimal.Decimal       `gorm:"type:decimal(18,2)"`
	Currency   string                 `gorm:"type:char(3);not null;default:'EUR'"`
}

// TableName returns the table name for GORM
func (ShippingRuleModel) TableName() string {
	return "shipping_rules"
}

// ToDomain converts the persistence model to a domain ShippingRule.
func (m *ShippingRuleModel) ToDomain() *pricing.ShippingRule {
	cur := valueobject.Currency(m.Currency)
	r := &pricing.ShippingRule{
		RuleBase:   m.toDomain(pricing.RuleKindShipping),
		Method:     m.Method,
		Carrier:    m.Carrier,
		SellerType: m.SellerType,
		Country:    m.Country,
		BaseFee:    money(m.BaseFee, cur),
		PerItemFee: money(m.PerItemFee, cur),
	}
	if m.FreeAbove != nil {
		free := money(*m.FreeAbove, cur)
		r.FreeAbove = &free
	}
	return r
}

// FromDomain populates the persistence model from a domain ShippingRule.
func (m *ShippingRuleModel) FromDomain(r *pricing.ShippingRule) {
	m.fromDomain(&r.RuleBase)
	m.Method = r.Method
	m.Carrier = r.Carrier
	m.SellerType = r.SellerType
	m.Country = r.Country
	m.BaseFee = r.BaseFee.Amount()
	m.PerItemFee = r.PerItemFee.Amount()
	m.Currency = string(r.BaseFee.Currency())
	m.FreeAbove = nil
	if r.FreeAbove != nil {
		free := r.FreeAbove.Amount()
		m.FreeAbove = &free
	}
}

// PromotionModel is the persistence model for the Promotion aggregate root.
type PromotionModel struct {
	TenantAggregateModel
	Code           string                `gorm:"type:varchar(32);not null"`
	Description    string                `gorm:"type:text"`
	Type           pricing.PromotionType `gorm:"type:varchar(20);not null"`
	Value          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Currency       string                `gorm:"type:char(3);not null;default:'EUR'"`
	MinSubtotal    decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	EffectiveFrom  time.Time             `gorm:"not null"`
	EffectiveTo    *time.Time
	MaxRedemptions int  `gorm:"not null;default:0"`
	Redeemed       int  `gorm:"not null;default:0"`
	Active         bool `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PromotionModel) TableName() string {
	return "promotions"
}

// ToDomain converts the persistence model to a domain Promotion.
func (m *PromotionModel) ToDomain() *pricing.Promotion {
	return &pricing.Promotion{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Description:         m.Description,
		Type:                m.Type,
		Value:               m.Value,
		Currency:            valueobject.Currency(m.Currency),
		MinSubtotal:         m.MinSubtotal,
		Window:              pricing.Window{From: m.EffectiveFrom, To: m.EffectiveTo},
		MaxRedemptions:      m.MaxRedemptions,
		Redeemed:            m.Redeemed,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain Promotion.
func (m *PromotionModel) FromDomain(p *pricing.Promotion) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Description = p.Description
	m.Type = p.Type
	m.Value = p.Value
	m.Currency = string(p.Currency)
	m.MinSubtotal = p.MinSubtotal
	m.EffectiveFrom = p.Window.From
	m.EffectiveTo = p.Window.To
	m.MaxRedemptions = p.MaxRedemptions
	m.Redeemed = p.Redeemed
	m.Active = p.Active
}

// PromotionModelFromDomain creates a new persistence model from a domain Promotion.
func PromotionModelFromDomain(p *pricing.Promotion) *PromotionModel {
	m := &PromotionModel{}
	m.FromDomain(p)
	return m
}

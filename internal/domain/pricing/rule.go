package pricing

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var maxPercent = decimal.NewFromInt(100)

// ShippingMethod is a delivery speed offered to buyers
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "STANDARD"
	ShippingExpress  ShippingMethod = "EXPRESS"
	ShippingPickup   ShippingMethod = "PICKUP"
)

func (m ShippingMethod) IsValid() bool {
	switch m {
	case ShippingStandard, ShippingExpress, ShippingPickup:
		return true
	}
	return false
}

// Window is an effective period; From is inclusive, To exclusive, nil To is open ended
type Window struct {
	From time.Time
	To   *time.Time
}

// Contains reports whether at falls inside the window
func (w Window) Contains(at time.Time) bool {
	if at.Before(w.From) {
		return false
	}
	return w.To == nil || at.Before(*w.To)
}

func (w Window) validate() error {
	if w.From.IsZero() {
		return shared.NewDomainError("INVALID_WINDOW", "Effective from is required")
	}
	if w.To != nil && !w.To.After(w.From) {
		return shared.NewDomainError("INVALID_WINDOW", "Effective to must be after effective from")
	}
	return nil
}

// MatchContext is what a rule is matched against
type MatchContext struct {
	At           time.Time
	CategoryPath []uuid.UUID // root first
	SellerType   catalog.SellerType
	Country      string
	Method       ShippingMethod
}

// RuleBase holds the fields every pricing rule shares
type RuleBase struct {
	shared.TenantAggregateRoot
	Kind     RuleKind
	Name     string
	Priority int
	Window   Window
	Active   bool
}

func newRuleBase(kind RuleKind, tenantID uuid.UUID, name string, priority int, window Window) (RuleBase, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 120 {
		return RuleBase{}, shared.NewDomainError("INVALID_NAME", "Rule name must be between 1 and 120 characters")
	}
	if priority < 0 {
		return RuleBase{}, shared.NewDomainError("INVALID_PRIORITY", "Priority cannot be negative")
	}
	if err := window.validate(); err != nil {
		return RuleBase{}, err
	}
	return RuleBase{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		Name:                name,
		Priority:            priority,
		Window:              window,
		Active:              true,
	}, nil
}

func (r *RuleBase) base() *RuleBase { return r }

// Reschedule changes priority and effective window
func (r *RuleBase) Reschedule(priority int, window Window) error {
	if priority < 0 {
		return shared.NewDomainError("INVALID_PRIORITY", "Priority cannot be negative")
	}
	if err := window.validate(); err != nil {
		return err
	}
	r.Priority = priority
	r.Window = window
	r.changed(RuleUpdated)
	return nil
}

// SetActive enables or disables the rule
func (r *RuleBase) SetActive(active bool) {
	r.Active = active
	change := RuleDeactivated
	if active {
		change = RuleActivated
	}
	r.changed(change)
}

func (r *RuleBase) changed(change RuleChange) {
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewRuleChangedEvent(r, change))
}

// categoryDepth returns the 1-based position of categoryID on path, 0 when absent
func categoryDepth(categoryID uuid.UUID, path []uuid.UUID) int {
	for i, id := range path {
		if id == categoryID {
			return i + 1
		}
	}
	return 0
}

func validatePercent(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(maxPercent) {
		return shared.NewDomainError("INVALID_RATE", "Rate must be between 0 and 100 percent")
	}
	return nil
}

func validateFee(fee valueobject.Money) error {
	if fee.Currency() == "" {
		return shared.NewDomainError("INVALID_FEE", "Fee currency is required")
	}
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Fee cannot be negative")
	}
	return nil
}

// CommissionRule is the marketplace fee charged to sellers on each order line
type CommissionRule struct {
	RuleBase
	CategoryID  *uuid.UUID
	SellerType  *catalog.SellerType
	RatePercent decimal.Decimal
	FixedFee    valueobject.Money
}

// NewCommissionRule creates a commission rule
func NewCommissionRule(tenantID uuid.UUID, name string, priority int, window Window, categoryID *uuid.UUID, sellerType *catalog.SellerType, ratePercent decimal.Decimal, fixedFee valueobject.Money) (*CommissionRule, error) {
	base, err := newRuleBase(RuleKindCommission, tenantID, name, priority, window)
	if err != nil {
		return nil, err
	}
	r := &CommissionRule{RuleBase: base}
	if err := r.applyTerms(categoryID, sellerType, ratePercent, fixedFee); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewRuleChangedEvent(&r.RuleBase, RuleCreated))
	return r, nil
}

// SetTerms replaces the scope and the fee terms
func (r *CommissionRule) SetTerms(categoryID *uuid.UUID, sellerType *catalog.SellerType, ratePercent decimal.Decimal, fixedFee valueobject.Money) error {
	if err := r.applyTerms(categoryID, sellerType, ratePercent, fixedFee); err != nil {
		return err
	}
	r.changed(RuleUpdated)
	return nil
}

func (r *CommissionRule) applyTerms(categoryID *uuid.UUID, sellerType *catalog.SellerType, ratePercent decimal.Decimal, fixedFee valueobject.Money) error {
	if sellerType != nil && !sellerType.IsValid() {
		return shared.NewDomainError("INVALID_SELLER_TYPE", "Unknown seller type")
	}
	if err := validatePercent(ratePercent); err != nil {
		return err
	}
	if err := validateFee(fixedFee); err != nil {
		return err
	}
	r.CategoryID = categoryID
	r.SellerType = sellerType
	r.RatePercent = ratePercent
	r.FixedFee = fixedFee
	return nil
}

func (r *CommissionRule) match(ctx MatchContext) (specificity, bool) {
	var s specificity
	if r.CategoryID != nil {
		depth := categoryDepth(*r.CategoryID, ctx.CategoryPath)
		if depth == 0 {
			return s, false
		}
		s.scopes += 2
		s.depth = depth
	}
	if r.SellerType != nil {
		if *r.SellerType != ctx.SellerType {
			return s, false
		}
		s.scopes++
	}
	return s, true
}

// VatRule is the VAT rate applied for a destination country, optionally per category
type VatRule struct {
	RuleBase
	Country     string
	CategoryID  *uuid.UUID
	RatePercent decimal.Decimal
}

// NewVatRule creates a VAT rule
func NewVatRule(tenantID uuid.UUID, name string, priority int, window Window, country string, categoryID *uuid.UUID, ratePercent decimal.Decimal) (*VatRule, error) {
	base, err := newRuleBase(RuleKindVat, tenantID, name, priority, window)
	if err != nil {
		return nil, err
	}
	r := &VatRule{RuleBase: base}
	if err := r.applyTerms(country, categoryID, ratePercent); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewRuleChangedEvent(&r.RuleBase, RuleCreated))
	return r, nil
}

// SetTerms replaces the scope and rate
func (r *VatRule) SetTerms(country string, categoryID *uuid.UUID, ratePercent decimal.Decimal) error {
	if err := r.applyTerms(country, categoryID, ratePercent); err != nil {
		return err
	}
	r.changed(RuleUpdated)
	return nil
}

func (r *VatRule) applyTerms(country string, categoryID *uuid.UUID, ratePercent decimal.Decimal) error {
	country = strings.ToUpper(strings.TrimSpace(country))
	if !valueobject.IsCountryCode(country) {
		return shared.NewDomainError("INVALID_COUNTRY", "Country must be an ISO 3166-1 alpha-2 code")
	}
	if err := validatePercent(ratePercent); err != nil {
		return err
	}
	r.Country = country
	r.CategoryID = categoryID
	r.RatePercent = ratePercent
	return nil
}

func (r *VatRule) match(ctx MatchContext) (specificity, bool) {
	var s specificity
	if r.Country != ctx.Country {
		return s, false
	}
	if r.CategoryID != nil {
		depth := categoryDepth(*r.CategoryID, ctx.CategoryPath)
		if depth == 0 {
			return s, false
		}
		s.scopes = 2
		s.depth = depth
	}
	return s, true
}

// ShippingRule prices a shipping method for a seller group
type ShippingRule struct {
	RuleBase
	Method     ShippingMethod
	Carrier    string
	SellerType *catalog.SellerType
	Country    string // destination, empty matches any
	BaseFee    valueobject.Money
	PerItemFee valueobject.Money
	FreeAbove  *valueobject.Money
}

// NewShippingRule creates a shipping rule
func NewShippingRule(tenantID uuid.UUID, name string, priority int, window Window, method ShippingMethod, carrier string, sellerType *catalog.SellerType, country string, baseFee, perItemFee valueobject.Money, freeAbove *valueobject.Money) (*ShippingRule, error) {
	base, err := newRuleBase(RuleKindShipping, tenantID, name, priority, window)
	if err != nil {
		return nil, err
	}
	r := &ShippingRule{RuleBase: base}
	if err := r.applyTerms(method, carrier, sellerType, country, baseFee, perItemFee, freeAbove); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewRuleChangedEvent(&r.RuleBase, RuleCreated))
	return r, nil
}

// SetTerms replaces scope and fees
func (r *ShippingRule) SetTerms(method ShippingMethod, carrier string, sellerType *catalog.SellerType, country string, baseFee, perItemFee valueobject.Money, freeAbove *valueobject.Money) error {
	if err := r.applyTerms(method, carrier, sellerType, country, baseFee, perItemFee, freeAbove); err != nil {
		return err
	}
	r.changed(RuleUpdated)
	return nil
}

func (r *ShippingRule) applyTerms(method ShippingMethod, carrier string, sellerType *catalog.SellerType, country string, baseFee, perItemFee valueobject.Money, freeAbove *valueobject.Money) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_METHOD", "Unknown shipping method")
	}
	carrier = strings.ToUpper(strings.TrimSpace(carrier))
	if carrier == "" {
		return shared.NewDomainError("INVALID_CARRIER", "Carrier is required")
	}
	if sellerType != nil && !sellerType.IsValid() {
		return shared.NewDomainError("INVALID_SELLER_TYPE", "Unknown seller type")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country != "" && !valueobject.IsCountryCode(country) {
		return shared.NewDomainError("INVALID_COUNTRY", "Country must be an ISO 3166-1 alpha-2 code")
	}
	if err := validateFee(baseFee); err != nil {
		return err
	}
	if err := validateFee(perItemFee); err != nil {
		return err
	}
	if baseFee.Currency() != perItemFee.Currency() {
		return shared.NewDomainError("CURRENCY_MISMATCH", "Fees must share a currency")
	}
	if freeAbove != nil {
		if err := validateFee(*freeAbove); err != nil {
			return err
		}
		if freeAbove.Currency() != baseFee.Currency() {
			return shared.NewDomainError("CURRENCY_MISMATCH", "Fees must share a currency")
		}
	}
	r.Method = method
	r.Carrier = carrier
	r.SellerType = sellerType
	r.Country = country
	r.BaseFee = baseFee
	r.PerItemFee = perItemFee
	r.FreeAbove = freeAbove
	return nil
}

func (r *ShippingRule) match(ctx MatchContext) (specificity, bool) {
	var s specificity
	if r.Method != ctx.Method {
		return s, false
	}
	if r.Country != "" {
		if r.Country != ctx.Country {
			return s, false
		}
		s.scopes += 2
	}
	if r.SellerType != nil {
		if *r.SellerType != ctx.SellerType {
			return s, false
		}
		s.scopes++
	}
	return s, true
}

// Fee computes the shipping fee for a seller group. Groups whose subtotal
// reaches FreeAbove ship for free.
func (r *ShippingRule) Fee(subtotal valueobject.Money, items int) valueobject.Money {
	if r.FreeAbove != nil && !subtotal.Amount().LessThan(r.FreeAbove.Amount()) {
		return valueobject.Zero(r.BaseFee.Currency())
	}
	return r.BaseFee.MustAdd(r.PerItemFee.MultiplyByInt(int64(items))).RoundMinor()
}

package pricing

import (
	"sort"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrShippingUnavailable is returned when no shipping rule covers a method
var ErrShippingUnavailable = shared.NewDomainError("SHIPPING_METHOD_UNAVAILABLE", "Shipping method is not available for this destination")

// specificity ranks how narrowly a rule is scoped. scopes counts weighted
// scope fields; depth is the matched category's position on the item path.
type specificity struct {
	scopes int
	depth  int
}

func (s specificity) compare(o specificity) int {
	if s.scopes != o.scopes {
		return s.scopes - o.scopes
	}
	return s.depth - o.depth
}

type matcher interface {
	base() *RuleBase
	match(ctx MatchContext) (specificity, bool)
}

type candidate[R matcher] struct {
	rule R
	spec specificity
}

// outranks orders matching rules: lower priority value, then more specific,
// then the most recently effective, then the lowest ID.
func outranks(a, b *RuleBase, sa, sb specificity) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if c := sa.compare(sb); c != 0 {
		return c > 0
	}
	if !a.Window.From.Equal(b.Window.From) {
		return a.Window.From.After(b.Window.From)
	}
	return a.ID.String() < b.ID.String()
}

// resolve returns the winning rule for ctx among rules
func resolve[R matcher](rules []R, ctx MatchContext) (R, bool) {
	var matched []candidate[R]
	for _, r := range rules {
		b := r.base()
		if !b.Active || !b.Window.Contains(ctx.At) {
			continue
		}
		if spec, ok := r.match(ctx); ok {
			matched = append(matched, candidate[R]{rule: r, spec: spec})
		}
	}
	if len(matched) == 0 {
		var zero R
		return zero, false
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return outranks(matched[i].rule.base(), matched[j].rule.base(), matched[i].spec, matched[j].spec)
	})
	return matched[0].rule, true
}

// Defaults are used when no rule matches
type Defaults struct {
	CommissionPercent decimal.Decimal
	VatPercent        decimal.Decimal
}

// RuleSnapshot is an immutable view of a tenant's pricing rules
type RuleSnapshot struct {
	TenantID   uuid.UUID
	LoadedAt   time.Time
	Defaults   Defaults
	Commission []*CommissionRule
	Vat        []*VatRule
	Shipping   []*ShippingRule
}

// NewRuleSnapshot builds a snapshot. Inactive rules are dropped.
func NewRuleSnapshot(tenantID uuid.UUID, defaults Defaults, commission []CommissionRule, vat []VatRule, shipping []ShippingRule) *RuleSnapshot {
	s := &RuleSnapshot{
		TenantID: tenantID,
		LoadedAt: time.Now().UTC(),
		Defaults: defaults,
	}
	for i := range commission {
		if commission[i].Active {
			s.Commission = append(s.Commission, &commission[i])
		}
	}
	for i := range vat {
		if vat[i].Active {
			s.Vat = append(s.Vat, &vat[i])
		}
	}
	for i := range shipping {
		if shipping[i].Active {
			s.Shipping = append(s.Shipping, &shipping[i])
		}
	}
	return s
}

// CommissionTerms is a resolved commission
type CommissionTerms struct {
	RuleID      *uuid.UUID
	RatePercent decimal.Decimal
	FixedFee    *valueobject.Money
}

// Apply computes the commission on a net line amount
func (t CommissionTerms) Apply(net valueobject.Money) valueobject.Money {
	fee := net.Percent(t.RatePercent)
	if t.FixedFee != nil && t.FixedFee.Currency() == net.Currency() {
		fee = fee.MustAdd(*t.FixedFee)
	}
	return fee.RoundMinor()
}

// CommissionFor resolves the commission for a line
func (s *RuleSnapshot) CommissionFor(ctx MatchContext) CommissionTerms {
	if r, ok := resolve(s.Commission, ctx); ok {
		id := r.ID
		fee := r.FixedFee
		return CommissionTerms{RuleID: &id, RatePercent: r.RatePercent, FixedFee: &fee}
	}
	return CommissionTerms{RatePercent: s.Defaults.CommissionPercent}
}

// VatTerms is a resolved VAT rate
type VatTerms struct {
	RuleID      *uuid.UUID
	RatePercent decimal.Decimal
}

// VatFor resolves the VAT rate. A context without category path only
// matches rules with no category scope, which is how shipping is taxed.
func (s *RuleSnapshot) VatFor(ctx MatchContext) VatTerms {
	if r, ok := resolve(s.Vat, ctx); ok {
		id := r.ID
		return VatTerms{RuleID: &id, RatePercent: r.RatePercent}
	}
	return VatTerms{RatePercent: s.Defaults.VatPercent}
}

// ShippingFor resolves the shipping rule for a method
func (s *RuleSnapshot) ShippingFor(ctx MatchContext) (*ShippingRule, error) {
	if r, ok := resolve(s.Shipping, ctx); ok {
		return r, nil
	}
	return nil, ErrShippingUnavailable
}

// AvailableMethods lists the shipping methods that resolve for ctx, in a
// stable order
func (s *RuleSnapshot) AvailableMethods(ctx MatchContext) []ShippingMethod {
	var methods []ShippingMethod
	for _, m := range []ShippingMethod{ShippingStandard, ShippingExpress, ShippingPickup} {
		ctx.Method = m
		if _, ok := resolve(s.Shipping, ctx); ok {
			methods = append(methods, m)
		}
	}
	return methods
}

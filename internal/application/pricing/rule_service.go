package pricing

import (
	"context"
	"sort"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RuleService administers commission, VAT and shipping rules. Every write
// invalidates the tenant's rule snapshot.
type RuleService struct {
	commissionRepo pricing.CommissionRuleRepository
	vatRepo        pricing.VatRuleRepository
	shippingRepo   pricing.ShippingRuleRepository
	snapshots      *SnapshotProvider
	currency       valueobject.Currency
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewRuleService creates a new RuleService. Fees are expressed in currency.
func NewRuleService(
	commissionRepo pricing.CommissionRuleRepository,
	vatRepo pricing.VatRuleRepository,
	shippingRepo pricing.ShippingRuleRepository,
	snapshots *SnapshotProvider,
	currency valueobject.Currency,
	logger *zap.Logger,
) *RuleService {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &RuleService{
		commissionRepo: commissionRepo,
		vatRepo:        vatRepo,
		shippingRepo:   shippingRepo,
		snapshots:      snapshots,
		currency:       currency,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *RuleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateCommissionRule adds a commission rule
func (s *RuleService) CreateCommissionRule(ctx context.Context, tenantID uuid.UUID, req CommissionRuleRequest, actor shared.Actor) (*CommissionRuleResponse, error) {
	fee, err := s.money(req.FixedFee)
	if err != nil {
		return nil, err
	}
	rule, err := pricing.NewCommissionRule(tenantID, req.Name, req.Priority, req.window(),
		req.CategoryID, sellerTypePtr(req.SellerType), req.RatePercent, fee)
	if err != nil {
		return nil, err
	}
	if err := s.commissionRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, actor, &rule.RuleBase)
	resp := ToCommissionRuleResponse(rule)
	return &resp, nil
}

// UpdateCommissionRule replaces the schedule and terms of a commission rule
func (s *RuleService) UpdateCommissionRule(ctx context.Context, tenantID, ruleID uuid.UUID, req CommissionRuleRequest, actor shared.Actor) (*CommissionRuleResponse, error) {
	rule, err := s.commissionRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	fee, err := s.money(req.FixedFee)
	if err != nil {
		return nil, err
	}
	if err := reschedule(&rule.RuleBase, req.RuleScheduleRequest); err != nil {
		return nil, err
	}
	if err := rule.SetTerms(req.CategoryID, sellerTypePtr(req.SellerType), req.RatePercent, fee); err != nil {
		return nil, err
	}
	if err := s.commissionRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, actor, &rule.RuleBase)
	resp := ToCommissionRuleResponse(rule)
	return &resp, nil
}

// ListCommissionRules returns every commission rule in resolution order
func (s *RuleService) ListCommissionRules(ctx context.Context, tenantID uuid.UUID) ([]CommissionRuleResponse, error) {
	rules, err := s.commissionRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sortRules(rules, func(r *pricing.CommissionRule) *pricing.RuleBase { return &r.RuleBase })
	out := make([]CommissionRuleResponse, len(rules))
	for i := range rules {
		out[i] = ToCommissionRuleResponse(&rules[i])
	}
	return out, nil
}

// CreateVatRule adds a VAT rule
func (s *RuleService) CreateVatRule(ctx context.Context, tenantID uuid.UUID, req VatRuleRequest, actor shared.Actor) (*VatRuleResponse, error) {
	rule, err := pricing.NewVatRule(tenantID, req.Name, req.Priority, req.window(), req.Country, req.CategoryID, req.RatePercent)
	if err != nil {
		return nil, err
	}
	if err := s.vatRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, actor, &rule.RuleBase)
	resp := ToVatRuleResponse(rule)
	return &resp, nil
}

// UpdateVatRule replaces the schedule and terms of a VAT rule
func (s *RuleService) UpdateVatRule(ctx context.Context, tenantID, ruleID uuid.UUID, req VatRuleRequest, actor shared.Actor) (*VatRuleResponse, error) {
	rule, err := s.vatRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if err := reschedule(&rule.RuleBase, req.RuleScheduleRequest); err != nil {
		return nil, err
	}
	if err := rule.SetTerms(req.Country, req.CategoryID, req.RatePercent); err != nil {
		return nil, err
	}
	if err := s.vatRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, actor, &rule.RuleBase)
	resp := ToVatRuleResponse(rule)
	return &resp, nil
}

// ListVatRules returns every VAT rule in resolution order
func (s *RuleService) ListVatRules(ctx context.Context, tenantID uuid.UUID) ([]VatRuleResponse, error) {
	rules, err := s.vatRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sortRules(rules, func(r *pricing.VatRule) *pricing.RuleBase { return &r.RuleBase })
	out := make([]VatRuleResponse, len(rules))
	for i := range rules {
		out[i] = ToVatRuleResponse(&rules[i])
	}
	return out, nil
}

// CreateShippingRule adds a shipping rule
func (s *RuleService) CreateShippingRule(ctx context.Context, tenantID uuid.UUID, req ShippingRuleRequest, actor shared.Actor) (*ShippingRuleResponse, error) {
	base, perItem, freeAbove, err := s.shippingFees(req)
	if err != nil {
		return nil, err
	}
	rule, err := pricing.NewShippingRule(tenantID, req.Name, req.Priority, req.window(),
		pricing.ShippingMethod(req.Method), req.Carrier, sellerTypePtr(req.SellerType), req.Country, base, perItem, freeAbove)
	if err != nil {
		return nil, err
	}
	if err := s.shippingRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, actor, &rule.RuleBase)
	resp := ToShippingRuleResponse(rule)
	return &resp, nil
}

// UpdateShippingRule replaces the schedule and terms of a shipping rule
func (s *RuleService) UpdateShippingRule(ctx context.Context, tenantID, ruleID uuid.UUID, req ShippingRuleRequest, actor shared.Actor) (*ShippingRuleResponse, error) {
	rule, err := s.shippingRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	base, perItem, freeAbove, err := s.shippingFees(req)
	if err != nil {
		return nil, err
	}
	if err := reschedule(&rule.RuleBase, req.RuleScheduleRequest); err != nil {
		return nil, err
	}
	if err := rule.SetTerms(pricing.ShippingMethod(req.Method), req.Carrier, sellerTypePtr(req.SellerType), req.Country, base, perItem, freeAbove); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, actor, &rule.RuleBase)
	resp := ToShippingRuleResponse(rule)
	return &resp, nil
}

// ListShippingRules returns every shipping rule in resolution order
func (s *RuleService) ListShippingRules(ctx context.Context, tenantID uuid.UUID) ([]ShippingRuleResponse, error) {
	rules, err := s.shippingRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sortRules(rules, func(r *pricing.ShippingRule) *pricing.RuleBase { return &r.RuleBase })
	out := make([]ShippingRuleResponse, len(rules))
	for i := range rules {
		out[i] = ToShippingRuleResponse(&rules[i])
	}
	return out, nil
}

// SetActive enables or disables a rule of any kind
func (s *RuleService) SetActive(ctx context.Context, tenantID uuid.UUID, kind pricing.RuleKind, ruleID uuid.UUID, active bool, actor shared.Actor) (*RuleResponse, error) {
	var base *pricing.RuleBase
	var err error
	switch kind {
	case pricing.RuleKindCommission:
		base, err = toggleRule(ctx, s.commissionRepo, tenantID, ruleID, active, func(r *pricing.CommissionRule) *pricing.RuleBase { return &r.RuleBase })
	case pricing.RuleKindVat:
		base, err = toggleRule(ctx, s.vatRepo, tenantID, ruleID, active, func(r *pricing.VatRule) *pricing.RuleBase { return &r.RuleBase })
	case pricing.RuleKindShipping:
		base, err = toggleRule(ctx, s.shippingRepo, tenantID, ruleID, active, func(r *pricing.ShippingRule) *pricing.RuleBase { return &r.RuleBase })
	default:
		return nil, shared.NewDomainError("INVALID_RULE_KIND", "Unknown rule kind")
	}
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, actor, base)
	resp := toRuleResponse(base)
	return &resp, nil
}

// Delete removes a rule of any kind
func (s *RuleService) Delete(ctx context.Context, tenantID uuid.UUID, kind pricing.RuleKind, ruleID uuid.UUID, actor shared.Actor) error {
	var base *pricing.RuleBase
	var err error
	switch kind {
	case pricing.RuleKindCommission:
		base, err = deleteRule(ctx, s.commissionRepo, tenantID, ruleID, func(r *pricing.CommissionRule) *pricing.RuleBase { return &r.RuleBase })
	case pricing.RuleKindVat:
		base, err = deleteRule(ctx, s.vatRepo, tenantID, ruleID, func(r *pricing.VatRule) *pricing.RuleBase { return &r.RuleBase })
	case pricing.RuleKindShipping:
		base, err = deleteRule(ctx, s.shippingRepo, tenantID, ruleID, func(r *pricing.ShippingRule) *pricing.RuleBase { return &r.RuleBase })
	default:
		return shared.NewDomainError("INVALID_RULE_KIND", "Unknown rule kind")
	}
	if err != nil {
		return err
	}
	base.AddDomainEvent(pricing.NewRuleChangedEvent(base, pricing.RuleDeleted))
	s.afterWrite(ctx, actor, base)
	return nil
}

func toggleRule[R any](ctx context.Context, repo pricing.RuleRepository[R], tenantID, ruleID uuid.UUID, active bool, baseOf func(*R) *pricing.RuleBase) (*pricing.RuleBase, error) {
	rule, err := repo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	base := baseOf(rule)
	if base.Active == active {
		return base, nil
	}
	base.SetActive(active)
	if err := repo.Save(ctx, rule); err != nil {
		return nil, err
	}
	return base, nil
}

func deleteRule[R any](ctx context.Context, repo pricing.RuleRepository[R], tenantID, ruleID uuid.UUID, baseOf func(*R) *pricing.RuleBase) (*pricing.RuleBase, error) {
	rule, err := repo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return nil, err
	}
	if err := repo.Delete(ctx, tenantID, ruleID); err != nil {
		return nil, err
	}
	return baseOf(rule), nil
}

// sortRules orders rules by priority, then newest effective date, then ID
func sortRules[R any](rules []R, baseOf func(*R) *pricing.RuleBase) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := baseOf(&rules[i]), baseOf(&rules[j])
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.Window.From.Equal(b.Window.From) {
			return a.Window.From.After(b.Window.From)
		}
		return a.ID.String() < b.ID.String()
	})
}

func reschedule(base *pricing.RuleBase, req RuleScheduleRequest) error {
	if name := strings.TrimSpace(req.Name); name != "" {
		base.Name = name
	}
	return base.Reschedule(req.Priority, req.window())
}

func (s *RuleService) money(amount decimal.Decimal) (valueobject.Money, error) {
	m, err := valueobject.NewMoney(amount, s.currency)
	if err != nil {
		return valueobject.Money{}, shared.NewDomainError("INVALID_FEE", err.Error())
	}
	return m, nil
}

func (s *RuleService) shippingFees(req ShippingRuleRequest) (base, perItem valueobject.Money, freeAbove *valueobject.Money, err error) {
	if base, err = s.money(req.BaseFee); err != nil {
		return
	}
	if perItem, err = s.money(req.PerItemFee); err != nil {
		return
	}
	if req.FreeAbove != nil {
		var fa valueobject.Money
		if fa, err = s.money(*req.FreeAbove); err != nil {
			return
		}
		freeAbove = &fa
	}
	return
}

func (s *RuleService) afterWrite(ctx context.Context, actor shared.Actor, base *pricing.RuleBase) {
	s.snapshots.Invalidate(ctx, base.TenantID)

	events := shared.StampActor(base.PullDomainEvents(), actor.UserID)
	s.logger.Info("Pricing rule changed",
		zap.String("tenant_id", base.TenantID.String()),
		zap.String("rule_id", base.ID.String()),
		zap.String("kind", string(base.Kind)))
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish pricing rule events", zap.Error(err))
	}
}

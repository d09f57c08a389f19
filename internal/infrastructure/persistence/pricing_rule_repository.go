package persistence

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ruleModel is the persistence model of one rule family
type ruleModel[R any, M any] interface {
	*M
	ToDomain() *R
	FromDomain(*R)
}

// GormRuleRepository implements RuleRepository for one rule family. R is
// the domain rule, M its persistence model.
type GormRuleRepository[R any, M any, PM ruleModel[R, M]] struct {
	db *gorm.DB
}

// NewGormCommissionRuleRepository creates the commission rule repository
func NewGormCommissionRuleRepository(db *gorm.DB) *GormRuleRepository[pricing.CommissionRule, models.CommissionRuleModel, *models.CommissionRuleModel] {
	return &GormRuleRepository[pricing.CommissionRule, models.CommissionRuleModel, *models.CommissionRuleModel]{db: db}
}

// NewGormVatRuleRepository creates the VAT rule repository
func NewGormVatRuleRepository(db *gorm.DB) *GormRuleRepository[pricing.VatRule, models.VatRuleModel, *models.VatRuleModel] {
	return &GormRuleRepository[pricing.VatRule, models.VatRuleModel, *models.VatRuleModel]{db: db}
}

// NewGormShippingRuleRepository creates the shipping rule repository
func NewGormShippingRuleRepository(db *gorm.DB) *GormRuleRepository[pricing.ShippingRule, models.ShippingRuleModel, *models.ShippingRuleModel] {
	return &GormRuleRepository[pricing.ShippingRule, models.ShippingRuleModel, *models.ShippingRuleModel]{db: db}
}

// FindByIDForTenant finds a rule by ID within a tenant
func (r *GormRuleRepository[R, M, PM]) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*R, error) {
	var model M
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return PM(&model).ToDomain(), nil
}

// FindAllForTenant returns every rule of the tenant, highest priority first
func (r *GormRuleRepository[R, M, PM]) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]R, error) {
	var rows []M
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Order("priority DESC, effective_from DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	rules := make([]R, len(rows))
	for i := range rows {
		rules[i] = *PM(&rows[i]).ToDomain()
	}
	return rules, nil
}

// Save creates or updates a rule
func (r *GormRuleRepository[R, M, PM]) Save(ctx context.Context, rule *R) error {
	model := PM(new(M))
	model.FromDomain(rule)
	if agg, ok := any(rule).(lockable); ok {
		return saveUpsert(r.db.WithContext(ctx), model, agg)
	}
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete removes a rule
func (r *GormRuleRepository[R, M, PM]) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		Delete(PM(new(M)))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ pricing.CommissionRuleRepository = NewGormCommissionRuleRepository(nil)
	_ pricing.VatRuleRepository        = NewGormVatRuleRepository(nil)
	_ pricing.ShippingRuleRepository   = NewGormShippingRuleRepository(nil)
)

package pricing

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// RuleRepository persists one family of pricing rules
type RuleRepository[R any] interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*R, error)
	// FindAllForTenant returns every rule of the tenant, active or not
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]R, error)
	Save(ctx context.Context, rule *R) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type (
	CommissionRuleRepository = RuleRepository[CommissionRule]
	VatRuleRepository        = RuleRepository[VatRule]
	ShippingRuleRepository   = RuleRepository[ShippingRule]
)

// PromotionRepository persists promotions
type PromotionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Promotion, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Promotion, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Promotion, int64, error)
	Save(ctx context.Context, promotion *Promotion) error
	// SaveWithLock saves with an optimistic version check, used when redeeming
	SaveWithLock(ctx context.Context, promotion *Promotion) error
}

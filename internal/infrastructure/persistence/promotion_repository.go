package persistence

import (
	"context"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPromotionRepository implements PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByIDForTenant finds a promotion by ID within a tenant
func (r *GormPromotionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pricing.Promotion, error) {
	var model models.PromotionModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a promotion by its code within a tenant
func (r *GormPromotionRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*pricing.Promotion, error) {
	var model models.PromotionModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists promotions; filter.Filters["active"] narrows by flag
func (r *GormPromotionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pricing.Promotion, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PromotionModel{}).Scopes(tenant.TenantScope(tenantID))
	if filter.Search != "" {
		query = query.Where("code LIKE ?", "%"+strings.ToUpper(filter.Search)+"%")
	}
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PromotionModel
	if err := paginate(query, filter, PromotionSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	promotions := make([]pricing.Promotion, len(rows))
	for i := range rows {
		promotions[i] = *rows[i].ToDomain()
	}
	return promotions, total, nil
}

// Save creates or updates a promotion
func (r *GormPromotionRepository) Save(ctx context.Context, promotion *pricing.Promotion) error {
	return saveUpsert(r.db.WithContext(ctx), models.PromotionModelFromDomain(promotion), promotion)
}

// SaveWithLock saves with optimistic locking; concurrent redemptions of the
// same code conflict instead of overshooting the redemption cap
func (r *GormPromotionRepository) SaveWithLock(ctx context.Context, promotion *pricing.Promotion) error {
	return saveVersioned(r.db.WithContext(ctx), models.PromotionModelFromDomain(promotion), promotion.ID, promotion)
}

// Ensure GormPromotionRepository implements PromotionRepository
var _ pricing.PromotionRepository = (*GormPromotionRepository)(nil)

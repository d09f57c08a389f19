package persistence

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReturnRepository implements returns.ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// FindByIDForTenant finds a return by ID within a tenant
func (r *GormReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*returns.ReturnRequest, error) {
	var model models.ReturnModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBySubOrder lists every return of a sub-order, oldest first
func (r *GormReturnRepository) FindBySubOrder(ctx context.Context, tenantID, subOrderID uuid.UUID) ([]returns.ReturnRequest, error) {
	var rows []models.ReturnModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("sub_order_id = ?", subOrderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReturns(rows), nil
}

// FindAll lists returns narrowed by party and status
func (r *GormReturnRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter returns.ReturnFilter) ([]returns.ReturnRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReturnModel{}).Scopes(tenant.TenantScope(tenantID))
	if filter.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ReturnModel
	if err := paginate(query, filter.Filter, ReturnSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toReturns(rows), total, nil
}

// FindForUser lists returns where the user is the buyer
func (r *GormReturnRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]returns.ReturnRequest, error) {
	var rows []models.ReturnModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("buyer_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReturns(rows), nil
}

// Save creates or updates a return
func (r *GormReturnRepository) Save(ctx context.Context, ret *returns.ReturnRequest) error {
	return saveUpsert(r.db.WithContext(ctx), models.ReturnModelFromDomain(ret), ret)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormReturnRepository) SaveWithLock(ctx context.Context, ret *returns.ReturnRequest) error {
	return saveVersioned(r.db.WithContext(ctx), models.ReturnModelFromDomain(ret), ret.ID, ret)
}

func toReturns(rows []models.ReturnModel) []returns.ReturnRequest {
	out := make([]returns.ReturnRequest, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormReturnRepository implements returns.ReturnRepository
var _ returns.ReturnRepository = (*GormReturnRepository)(nil)

package persistence

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var activeDisputeStatuses = []returns.DisputeStatus{returns.DisputeOpen, returns.DisputeUnderReview}

// GormDisputeRepository implements returns.DisputeRepository using GORM
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a new GormDisputeRepository
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

// FindByIDForTenant finds a dispute by ID within a tenant
func (r *GormDisputeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*returns.Dispute, error) {
	var model models.DisputeModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ExistsActiveForSubOrder checks for an OPEN or UNDER_REVIEW dispute
func (r *GormDisputeRepository) ExistsActiveForSubOrder(ctx context.Context, tenantID, subOrderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DisputeModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("sub_order_id = ? AND status IN ?", subOrderID, activeDisputeStatuses).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists disputes narrowed by party and status
func (r *GormDisputeRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter returns.DisputeFilter) ([]returns.Dispute, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DisputeModel{}).Scopes(tenant.TenantScope(tenantID))
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
	var rows []models.DisputeModel
	if err := paginate(query, filter.Filter, DisputeSortFields, "last_activity_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDisputes(rows), total, nil
}

// FindForUser lists disputes where the user is the buyer
func (r *GormDisputeRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]returns.Dispute, error) {
	var rows []models.DisputeModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("buyer_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDisputes(rows), nil
}

// CountActiveForUser counts active disputes of the user as buyer, or as
// seller when sellerID is set
func (r *GormDisputeRepository) CountActiveForUser(ctx context.Context, tenantID, userID uuid.UUID, sellerID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DisputeModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status IN ?", activeDisputeStatuses)
	if sellerID != nil {
		query = query.Where("buyer_id = ? OR seller_id = ?", userID, *sellerID)
	} else {
		query = query.Where("buyer_id = ?", userID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindStale returns active disputes of every tenant idle since before
func (r *GormDisputeRepository) FindStale(ctx context.Context, before time.Time, limit int) ([]returns.Dispute, error) {
	var rows []models.DisputeModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND last_activity_at < ?", activeDisputeStatuses, before).
		Order("last_activity_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDisputes(rows), nil
}

// Save creates or updates a dispute
func (r *GormDisputeRepository) Save(ctx context.Context, d *returns.Dispute) error {
	return saveUpsert(r.db.WithContext(ctx), models.DisputeModelFromDomain(d), d)
}

// Create inserts a new dispute. The partial unique index on active disputes
// per sub-order rejects a second one with shared.ErrAlreadyExists.
func (r *GormDisputeRepository) Create(ctx context.Context, d *returns.Dispute) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(models.DisputeModelFromDomain(d)).Error; err != nil {
		return translateError(err)
	}
	d.MarkLoaded()
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDisputeRepository) SaveWithLock(ctx context.Context, d *returns.Dispute) error {
	return saveVersioned(r.db.WithContext(ctx), models.DisputeModelFromDomain(d), d.ID, d)
}

func toDisputes(rows []models.DisputeModel) []returns.Dispute {
	out := make([]returns.Dispute, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormDisputeRepository implements returns.DisputeRepository
var _ returns.DisputeRepository = (*GormDisputeRepository)(nil)

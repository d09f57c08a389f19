package persistence

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// openDataRequestStatuses are the statuses that block a second request of the same type
var openDataRequestStatuses = []privacy.RequestStatus{privacy.StatusPending, privacy.StatusProcessing}

// GormDataRequestRepository implements privacy.Repository using GORM
type GormDataRequestRepository struct {
	db *gorm.DB
}

// NewGormDataRequestRepository creates a new GormDataRequestRepository
func NewGormDataRequestRepository(db *gorm.DB) *GormDataRequestRepository {
	return &GormDataRequestRepository{db: db}
}

// FindByIDForTenant finds a request by ID within a tenant
func (r *GormDataRequestRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*privacy.DataRequest, error) {
	var model models.DataRequestModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindForUser lists a user's requests newest first
func (r *GormDataRequestRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]privacy.DataRequest, error) {
	var rows []models.DataRequestModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("user_id = ?", userID).
		Order("requested_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDataRequests(rows), nil
}

// FindAll lists requests, optionally by status
func (r *GormDataRequestRepository) FindAll(ctx context.Context, tenantID uuid.UUID, status *privacy.RequestStatus, filter shared.Filter) ([]privacy.DataRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DataRequestModel{}).Scopes(tenant.TenantScope(tenantID))
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.DataRequestModel
	if err := paginate(query, filter, DataRequestSortFields, "requested_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDataRequests(rows), total, nil
}

// ExistsOpen checks for a pending or processing request of the same type
func (r *GormDataRequestRepository) ExistsOpen(ctx context.Context, tenantID, userID uuid.UUID, typ privacy.RequestType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DataRequestModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("user_id = ? AND type = ? AND status IN ?", userID, typ, openDataRequestStatuses).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindPending returns pending requests across tenants, oldest first
func (r *GormDataRequestRepository) FindPending(ctx context.Context, limit int) ([]privacy.DataRequest, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.DataRequestModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", privacy.StatusPending).
		Order("requested_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDataRequests(rows), nil
}

// Save creates or updates a request
func (r *GormDataRequestRepository) Save(ctx context.Context, req *privacy.DataRequest) error {
	return saveUpsert(r.db.WithContext(ctx), models.DataRequestModelFromDomain(req), req)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDataRequestRepository) SaveWithLock(ctx context.Context, req *privacy.DataRequest) error {
	return saveVersioned(r.db.WithContext(ctx), models.DataRequestModelFromDomain(req), req.ID, req)
}

func toDataRequests(rows []models.DataRequestModel) []privacy.DataRequest {
	out := make([]privacy.DataRequest, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormDataRequestRepository implements privacy.Repository
var _ privacy.Repository = (*GormDataRequestRepository)(nil)

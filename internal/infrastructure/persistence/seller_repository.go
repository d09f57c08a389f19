package persistence

import (
	"context"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSellerRepository implements SellerRepository using GORM
type GormSellerRepository struct {
	db *gorm.DB
}

// NewGormSellerRepository creates a new GormSellerRepository
func NewGormSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

// FindByIDForTenant finds a seller by ID within a tenant
func (r *GormSellerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Seller, error) {
	var model models.SellerModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByUserID finds the storefront owned by a user
func (r *GormSellerRepository) FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*catalog.Seller, error) {
	var model models.SellerModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple sellers by their IDs
func (r *GormSellerRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Seller, error) {
	if len(ids) == 0 {
		return []catalog.Seller{}, nil
	}
	var rows []models.SellerModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sellers := make([]catalog.Seller, len(rows))
	for i := range rows {
		sellers[i] = *rows[i].ToDomain()
	}
	return sellers, nil
}

// FindAllForTenant lists sellers; filter.Filters["status"] narrows by status
func (r *GormSellerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Seller, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SellerModel{}).Scopes(tenant.TenantScope(tenantID))
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(store_name) LIKE ? OR slug LIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.SellerModel
	if err := paginate(query, filter, SellerSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	sellers := make([]catalog.Seller, len(rows))
	for i := range rows {
		sellers[i] = *rows[i].ToDomain()
	}
	return sellers, total, nil
}

// ExistsBySlug checks if a storefront slug is taken in the tenant
func (r *GormSellerRepository) ExistsBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SellerModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a seller
func (r *GormSellerRepository) Save(ctx context.Context, seller *catalog.Seller) error {
	return saveUpsert(r.db.WithContext(ctx), models.SellerModelFromDomain(seller), seller)
}

// Ensure GormSellerRepository implements SellerRepository
var _ catalog.SellerRepository = (*GormSellerRepository)(nil)

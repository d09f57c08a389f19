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

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Search lists products matching the search criteria
func (r *GormProductRepository) Search(ctx context.Context, tenantID uuid.UUID, search catalog.ProductSearch, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.applySearch(
		r.db.WithContext(ctx).Model(&models.ProductModel{}).Scopes(tenant.TenantScope(tenantID)),
		search, filter.Search,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ProductModel
	if err := paginate(query, filter, ProductSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toProducts(rows), total, nil
}

// ExistsBySKU checks if the seller already lists the SKU
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, tenantID, sellerID uuid.UUID, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("seller_id = ? AND sku = ?", sellerID, strings.TrimSpace(sku)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return saveUpsert(r.db.WithContext(ctx), models.ProductModelFromDomain(product), product)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return saveVersioned(r.db.WithContext(ctx), models.ProductModelFromDomain(product), product.ID, product)
}

// applySearch applies search criteria to the query
func (r *GormProductRepository) applySearch(query *gorm.DB, search catalog.ProductSearch, text string) *gorm.DB {
	if text != "" {
		pattern := "%" + strings.ToLower(text) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}
	if len(search.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", search.CategoryIDs)
	}
	if search.SellerID != nil {
		query = query.Where("seller_id = ?", *search.SellerID)
	}
	if search.Status != nil {
		query = query.Where("status = ?", *search.Status)
	}
	if search.MinPrice != nil {
		query = query.Where("price >= ?", *search.MinPrice)
	}
	if search.MaxPrice != nil {
		query = query.Where("price <= ?", *search.MaxPrice)
	}
	return query
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	out := make([]catalog.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

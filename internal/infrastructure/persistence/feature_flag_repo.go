package persistence

import (
	"context"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeatureFlagRepository implements featureflag.Repository using GORM.
// Flags are platform-wide, so no tenant scope is applied.
type GormFeatureFlagRepository struct {
	db *gorm.DB
}

// NewGormFeatureFlagRepository creates a new GormFeatureFlagRepository
func NewGormFeatureFlagRepository(db *gorm.DB) *GormFeatureFlagRepository {
	return &GormFeatureFlagRepository{db: db}
}

// WithTx returns a new repository instance using the given transaction
func (r *GormFeatureFlagRepository) WithTx(tx *gorm.DB) *GormFeatureFlagRepository {
	return &GormFeatureFlagRepository{db: tx}
}

// FindByID finds a flag by its ID
func (r *GormFeatureFlagRepository) FindByID(ctx context.Context, id uuid.UUID) (*featureflag.FeatureFlag, error) {
	var model models.FeatureFlagModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByKey finds a flag by its unique key
func (r *GormFeatureFlagRepository) FindByKey(ctx context.Context, key string) (*featureflag.FeatureFlag, error) {
	var model models.FeatureFlagModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every flag ordered by key
func (r *GormFeatureFlagRepository) FindAll(ctx context.Context) ([]featureflag.FeatureFlag, error) {
	var rows []models.FeatureFlagModel
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	flags := make([]featureflag.FeatureFlag, len(rows))
	for i := range rows {
		flags[i] = *rows[i].ToDomain()
	}
	return flags, nil
}

// ExistsByKey checks if a flag with the key exists
func (r *GormFeatureFlagRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FeatureFlagModel{}).
		Where("key = ?", strings.TrimSpace(key)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a flag
func (r *GormFeatureFlagRepository) Save(ctx context.Context, flag *featureflag.FeatureFlag) error {
	return saveUpsert(r.db.WithContext(ctx), models.FeatureFlagModelFromDomain(flag), flag)
}

// Delete removes a flag
func (r *GormFeatureFlagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FeatureFlagModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormFeatureFlagRepository implements featureflag.Repository
var _ featureflag.Repository = (*GormFeatureFlagRepository)(nil)

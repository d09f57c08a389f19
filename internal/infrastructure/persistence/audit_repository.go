package persistence

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/models"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.Repository using GORM. Rows are
// only ever inserted, apart from ScrubUser.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts entries in one statement
func (r *GormAuditRepository) Append(ctx context.Context, entries ...*audit.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.AuditEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.AuditEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Find lists entries newest first
func (r *GormAuditRepository) Find(ctx context.Context, tenantID uuid.UUID, filter audit.Filter) ([]audit.Entry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditEntryModel{}).Scopes(tenant.TenantScope(tenantID))
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.AuditEntryModel
	if err := paginate(query, filter.Filter, AuditSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toAuditEntries(rows), total, nil
}

// FindAboutUser lists entries where the user acted or was acted upon
func (r *GormAuditRepository) FindAboutUser(ctx context.Context, tenantID, userID uuid.UUID) ([]audit.Entry, error) {
	var rows []models.AuditEntryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.TenantScope(tenantID)).
		Where("actor_id = ? OR entity_id = ?", userID, userID.String()).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAuditEntries(rows), nil
}

// ScrubUser clears IP addresses and details of the user's entries
func (r *GormAuditRepository) ScrubUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AuditEntryModel{}).
		Scopes(tenant.Require(tenantID)).
		Where("actor_id = ? OR entity_id = ?", userID, userID.String()).
		Updates(map[string]any{"ip": "", "details": gorm.Expr("'null'")})
	return result.RowsAffected, result.Error
}

func toAuditEntries(rows []models.AuditEntryModel) []audit.Entry {
	out := make([]audit.Entry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)

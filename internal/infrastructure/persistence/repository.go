package persistence

import (
	"errors"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateError maps driver errors to domain errors. The database is opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// paginate applies a whitelisted order and the page window of filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	return query.
		Order(field + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}

// lockable is an aggregate carrying optimistic lock state
type lockable interface {
	LoadedVersion() int
	MarkLoaded()
}

// saveVersioned writes model guarded by the version the aggregate was loaded
// with. Aggregates that were never loaded are inserted. Associations are
// left to the caller.
func saveVersioned(db *gorm.DB, model any, id any, agg lockable) error {
	if agg.LoadedVersion() == 0 {
		if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
			return translateError(err)
		}
		agg.MarkLoaded()
		return nil
	}
	result := db.Model(model).
		Where("id = ? AND version = ?", id, agg.LoadedVersion()).
		Select("*").
		Omit(clause.Associations).
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	agg.MarkLoaded()
	return nil
}

// saveUpsert creates or replaces the row of model
func saveUpsert(db *gorm.DB, model any, agg lockable) error {
	if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
		return translateError(err)
	}
	agg.MarkLoaded()
	return nil
}

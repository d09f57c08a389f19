// Package tenant scopes GORM queries to one marketplace tenant.
//
// Repositories receive the tenant explicitly and apply the scope themselves;
// nothing is derived from the request context, so scheduled jobs and the
// global feature flag table stay unscoped on purpose.
//
//	db.Scopes(tenant.TenantScope(tenantID)).Find(&products)
//	db.Table("sub_orders").Joins("JOIN orders ...").Scopes(tenant.ScopeOn("sub_orders", tenantID))
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column is the tenant discriminator present on every tenant-owned table
const Column = "tenant_id"

// ErrTenantRequired is added to a query scoped to the nil tenant through Require
var ErrTenantRequired = errors.New("tenant id is required")

// TenantScope restricts a query to rows of tenantID
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return ScopeOn("", tenantID)
}

// ScopeOn qualifies the tenant column with table, for queries that join
// two tenant-owned tables
func ScopeOn(table string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	column := Column
	if table != "" {
		column = table + "." + Column
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", tenantID)
	}
}

// Require is TenantScope that fails instead of matching rows stored under
// the nil tenant, which holds platform-wide records only
func Require(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantRequired)
			return db
		}
		return db.Where(Column+" = ?", tenantID)
	}
}

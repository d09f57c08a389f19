// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. ToDomain/FromDomain convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, TenantAggregateModel)
// - identity.go: users and tenants
// - catalog.go: categories, sellers, products
// - pricing.go: commission, VAT and shipping rules, promotions
// - cart.go, order.go, payment.go, returns.go: the buying flow
// - featureflag.go, audit.go, privacy.go: platform concerns
// - outbox.go: Outbox pattern model for event delivery
package models

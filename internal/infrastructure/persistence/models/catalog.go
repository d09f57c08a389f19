package models

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category entity.
// The materialized path is stored as a JSON array of ancestor IDs.
type CategoryModel struct {
	TenantAggregateModel
	Name      string     `gorm:"type:varchar(100);not null"`
	Slug      string     `gorm:"type:varchar(120);not null"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	PathJSON  string     `gorm:"column:path;type:jsonb;not null;default:'[]'"`
	Active    bool       `gorm:"not null"`
	SortOrder int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	c := &catalog.Category{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Slug:                m.Slug,
		ParentID:            m.ParentID,
		Path:                []uuid.UUID{},
		Active:              m.Active,
		SortOrder:           m.SortOrder,
	}
	fromJSON(m.PathJSON, &c.Path)
	return c
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Slug = c.Slug
	m.ParentID = c.ParentID
	m.PathJSON = toJSON(c.Path, "[]")
	m.Active = c.Active
	m.SortOrder = c.SortOrder
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// SellerModel is the persistence model for the Seller aggregate root.
type SellerModel struct {
	TenantAggregateModel
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	StoreName       string               `gorm:"type:varchar(200);not null"`
	Slug            string               `gorm:"type:varchar(200);not null"`
	Type            catalog.SellerType   `gorm:"type:varchar(20);not null"`
	Status          catalog.SellerStatus `gorm:"type:varchar(20);not null;index"`
	VATRegistered   bool                 `gorm:"column:vat_registered;not null;default:false"`
	VATNumber       string               `gorm:"column:vat_number;type:varchar(50)"`
	Country         string               `gorm:"type:char(2);not null"`
	ContactEmail    string               `gorm:"type:varchar(200)"`
	SuspendedReason string               `gorm:"type:text"`
	ApprovedAt      *time.Time
}

// TableName returns the table name for GORM
func (SellerModel) TableName() string {
	return "sellers"
}

// ToDomain converts the persistence model to a domain Seller entity.
func (m *SellerModel) ToDomain() *catalog.Seller {
	return &catalog.Seller{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		UserID:              m.UserID,
		StoreName:           m.StoreName,
		Slug:                m.Slug,
		Type:                m.Type,
		Status:              m.Status,
		VATRegistered:       m.VATRegistered,
		VATNumber:           m.VATNumber,
		Country:             m.Country,
		ContactEmail:        m.ContactEmail,
		SuspendedReason:     m.SuspendedReason,
		ApprovedAt:          m.ApprovedAt,
	}
}

// FromDomain populates the persistence model from a domain Seller entity.
func (m *SellerModel) FromDomain(s *catalog.Seller) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.UserID = s.UserID
	m.StoreName = s.StoreName
	m.Slug = s.Slug
	m.Type = s.Type
	m.Status = s.Status
	m.VATRegistered = s.VATRegistered
	m.VATNumber = s.VATNumber
	m.Country = s.Country
	m.ContactEmail = s.ContactEmail
	m.SuspendedReason = s.SuspendedReason
	m.ApprovedAt = s.ApprovedAt
}

// SellerModelFromDomain creates a new persistence model from a domain Seller entity.
func SellerModelFromDomain(s *catalog.Seller) *SellerModel {
	m := &SellerModel{}
	m.FromDomain(s)
	return m
}

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	TenantAggregateModel
	SellerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	CategoryID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	SKU         string                `gorm:"column:sku;type:varchar(64);not null"`
	Name        string                `gorm:"type:varchar(200);not null"`
	Description string                `gorm:"type:text"`
	Price       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Currency    string                `gorm:"type:char(3);not null;default:'EUR'"`
	Stock       int                   `gorm:"not null;default:0"`
	Reserved    int                   `gorm:"not null;default:0"`
	WeightGrams int                   `gorm:"not null;default:0"`
	Status      catalog.ProductStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		SellerID:            m.SellerID,
		CategoryID:          m.CategoryID,
		SKU:                 m.SKU,
		Name:                m.Name,
		Description:         m.Description,
		Price:               money(m.Price, valueobject.Currency(m.Currency)),
		Stock:               m.Stock,
		Reserved:            m.Reserved,
		WeightGrams:         m.WeightGrams,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.SellerID = p.SellerID
	m.CategoryID = p.CategoryID
	m.SKU = p.SKU
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price.Amount()
	m.Currency = string(p.Price.Currency())
	m.Stock = p.Stock
	m.Reserved = p.Reserved
	m.WeightGrams = p.WeightGrams
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

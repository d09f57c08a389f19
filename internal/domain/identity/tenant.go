package identity

import (
	"regexp"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusSuspended TenantStatus = "SUSPENDED"
)

var tenantCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{1,49}$`)

// Tenant is one marketplace instance. Every other aggregate is scoped to it.
type Tenant struct {
	shared.BaseAggregateRoot
	Code            string
	Name            string
	Status          TenantStatus
	DefaultCurrency valueobject.Currency
	Country         string
	Domain          string
}

// NewTenant creates an active tenant
func NewTenant(code, name string, currency valueobject.Currency, country string) (*Tenant, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !tenantCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_TENANT_CODE", "Tenant code must be 2-50 characters of letters, digits, '-' or '_'")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name must be 1-200 characters")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if _, err := valueobject.ParseCurrency(string(currency)); err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if !valueobject.IsCountryCode(country) {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Country must be an ISO 3166 alpha-2 code")
	}
	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            TenantStatusActive,
		DefaultCurrency:   currency,
		Country:           country,
	}, nil
}

// Suspend takes the marketplace offline
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already suspended")
	}
	t.Status = TenantStatusSuspended
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Activate brings a suspended tenant back
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Tenant is already active")
	}
	t.Status = TenantStatusActive
	t.Touch()
	t.IncrementVersion()
	return nil
}

// IsActive returns true if tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

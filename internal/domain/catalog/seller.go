package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SellerType drives commission and shipping rule selection
type SellerType string

const (
	SellerTypeIndividual SellerType = "INDIVIDUAL"
	SellerTypeBusiness   SellerType = "BUSINESS"
	SellerTypePremium    SellerType = "PREMIUM"
)

func (t SellerType) IsValid() bool {
	switch t {
	case SellerTypeIndividual, SellerTypeBusiness, SellerTypePremium:
		return true
	}
	return false
}

// SellerStatus is the onboarding state of a storefront
type SellerStatus string

const (
	SellerStatusPending   SellerStatus = "PENDING"
	SellerStatusActive    SellerStatus = "ACTIVE"
	SellerStatusSuspended SellerStatus = "SUSPENDED"
)

// CanTransitionTo checks the seller onboarding state machine
func (s SellerStatus) CanTransitionTo(target SellerStatus) bool {
	switch s {
	case SellerStatusPending:
		return target == SellerStatusActive
	case SellerStatusActive:
		return target == SellerStatusSuspended
	case SellerStatusSuspended:
		return target == SellerStatusActive
	}
	return false
}

// Seller is a storefront operated by a seller user
type Seller struct {
	shared.TenantAggregateRoot
	UserID          uuid.UUID
	StoreName       string
	Slug            string
	Type            SellerType
	Status          SellerStatus
	VATRegistered   bool
	VATNumber       string
	Country         string
	ContactEmail    string
	SuspendedReason string
	ApprovedAt      *time.Time
}

// NewSeller registers a storefront pending admin approval
func NewSeller(tenantID, userID uuid.UUID, storeName string, sellerType SellerType, country, contactEmail string) (*Seller, error) {
	storeName = strings.TrimSpace(storeName)
	if storeName == "" || utf8.RuneCountInString(storeName) > 120 {
		return nil, shared.NewDomainError("INVALID_STORE_NAME", "Store name must be between 1 and 120 characters")
	}
	if shared.Slugify(storeName) == "" {
		return nil, shared.NewDomainError("INVALID_STORE_NAME", "Store name must contain letters or digits")
	}
	if !sellerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SELLER_TYPE", "Unknown seller type")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if !valueobject.IsCountryCode(country) {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Country must be an ISO 3166-1 alpha-2 code")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Seller must be linked to a user")
	}

	s := &Seller{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		StoreName:           storeName,
		Slug:                shared.Slugify(storeName),
		Type:                sellerType,
		Status:              SellerStatusPending,
		Country:             country,
		ContactEmail:        strings.ToLower(strings.TrimSpace(contactEmail)),
	}
	s.AddDomainEvent(NewSellerStatusChangedEvent(s, ""))
	return s, nil
}

// Approve activates a pending seller
func (s *Seller) Approve() error {
	if err := s.transition(SellerStatusActive); err != nil {
		return err
	}
	now := time.Now().UTC()
	s.ApprovedAt = &now
	return nil
}

// Suspend blocks the storefront from selling
func (s *Seller) Suspend(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Suspension reason is required")
	}
	if !s.Status.CanTransitionTo(SellerStatusSuspended) {
		return shared.NewDomainError("INVALID_STATE", "Only active sellers can be suspended")
	}
	s.SuspendedReason = reason
	return s.transition(SellerStatusSuspended)
}

// Reactivate lifts a suspension
func (s *Seller) Reactivate() error {
	if s.Status != SellerStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Only suspended sellers can be reactivated")
	}
	s.SuspendedReason = ""
	return s.transition(SellerStatusActive)
}

func (s *Seller) transition(target SellerStatus) error {
	if !s.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", "Cannot change seller status from "+string(s.Status)+" to "+string(target))
	}
	from := s.Status
	s.Status = target
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(NewSellerStatusChangedEvent(s, from))
	return nil
}

// SetVATRegistration records the seller's VAT number. An empty number clears it.
func (s *Seller) SetVATRegistration(vatNumber string) {
	s.VATNumber = strings.ToUpper(strings.ReplaceAll(vatNumber, " ", ""))
	s.VATRegistered = s.VATNumber != ""
	s.Touch()
	s.IncrementVersion()
}

// ChangeType moves the seller to another commission tier
func (s *Seller) ChangeType(t SellerType) error {
	if !t.IsValid() {
		return shared.NewDomainError("INVALID_SELLER_TYPE", "Unknown seller type")
	}
	s.Type = t
	s.Touch()
	s.IncrementVersion()
	return nil
}

// CanSell reports whether the storefront may publish products and take orders
func (s *Seller) CanSell() bool {
	return s.Status == SellerStatusActive
}

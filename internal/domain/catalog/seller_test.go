package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeller(t *testing.T) *Seller {
	t.Helper()
	s, err := NewSeller(uuid.New(), uuid.New(), "Kraków Crafts", SellerTypeBusiness, "pl", "Shop@Example.com")
	require.NoError(t, err)
	return s
}

func TestNewSeller(t *testing.T) {
	s := newTestSeller(t)
	assert.Equal(t, "krakow-crafts", s.Slug)
	assert.Equal(t, "PL", s.Country)
	assert.Equal(t, "shop@example.com", s.ContactEmail)
	assert.Equal(t, SellerStatusPending, s.Status)
	assert.False(t, s.CanSell())

	tests := []struct {
		name       string
		storeName  string
		sellerType SellerType
		country    string
		userID     uuid.UUID
	}{
		{"empty store name", "", SellerTypeBusiness, "DE", uuid.New()},
		{"unknown type", "Shop", SellerType("VIP"), "DE", uuid.New()},
		{"bad country", "Shop", SellerTypeBusiness, "Germany", uuid.New()},
		{"missing user", "Shop", SellerTypeBusiness, "DE", uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSeller(uuid.New(), tt.userID, tt.storeName, tt.sellerType, tt.country, "")
			assert.Error(t, err)
		})
	}
}

func TestSeller_Lifecycle(t *testing.T) {
	s := newTestSeller(t)
	s.ClearDomainEvents()

	require.NoError(t, s.Approve())
	assert.Equal(t, SellerStatusActive, s.Status)
	assert.NotNil(t, s.ApprovedAt)
	assert.True(t, s.CanSell())

	assert.Error(t, s.Approve(), "already active")
	assert.Error(t, s.Suspend(""), "reason required")

	require.NoError(t, s.Suspend("counterfeit goods"))
	assert.Equal(t, SellerStatusSuspended, s.Status)
	assert.False(t, s.CanSell())

	require.NoError(t, s.Reactivate())
	assert.Empty(t, s.SuspendedReason)

	events := s.GetDomainEvents()
	require.Len(t, events, 3)
	last := events[2].(*SellerStatusChangedEvent)
	assert.Equal(t, SellerStatusSuspended, last.FromStatus)
	assert.Equal(t, SellerStatusActive, last.ToStatus)
}

func TestSeller_Reactivate_RequiresSuspension(t *testing.T) {
	s := newTestSeller(t)
	assert.Error(t, s.Reactivate())
}

func TestSeller_SetVATRegistration(t *testing.T) {
	s := newTestSeller(t)
	s.SetVATRegistration("pl 123 456 78 90")
	assert.True(t, s.VATRegistered)
	assert.Equal(t, "PL1234567890", s.VATNumber)
	s.SetVATRegistration("")
	assert.False(t, s.VATRegistered)
}

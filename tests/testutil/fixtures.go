// Package testutil holds marketplace fixtures and repository mocks shared by
// the unit tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EUR builds a euro amount from a decimal string
func EUR(amount string) valueobject.Money {
	return valueobject.MustMoney(amount, valueobject.EUR)
}

// TestAddress returns a valid Polish shipping address
func TestAddress() valueobject.Address {
	a, err := valueobject.NewAddress("Anna Nowak", "ul. Polna 3", "", "Poznań", "60-001", "PL", "+48600100200")
	if err != nil {
		panic(err)
	}
	return a
}

// TestRuleSnapshot has 10% commission, 23% VAT and a flat 5.00 STANDARD
// shipping fee for every seller
func TestRuleSnapshot(tenantID uuid.UUID) *pricing.RuleSnapshot {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ship, err := pricing.NewShippingRule(tenantID, "standard", 10, pricing.Window{From: from},
		pricing.ShippingStandard, "STANDARD_POST", nil, "", EUR("5.00"), EUR("0"), nil)
	if err != nil {
		panic(err)
	}
	return pricing.NewRuleSnapshot(tenantID, pricing.Defaults{
		CommissionPercent: decimal.NewFromInt(10),
		VatPercent:        decimal.NewFromInt(23),
	}, nil, nil, []pricing.ShippingRule{*ship})
}

// OrderLine describes one line of a fixture order
type OrderLine struct {
	SellerID  uuid.UUID
	ProductID uuid.UUID
	SKU       string
	UnitPrice string
	Quantity  int
}

// NewTestQuote prices lines against TestRuleSnapshot for delivery to PL
func NewTestQuote(tenantID uuid.UUID, lines ...OrderLine) *pricing.Quote {
	in := pricing.QuoteInput{
		Currency:    valueobject.EUR,
		At:          time.Now().UTC(),
		Country:     "PL",
		SellerTypes: map[uuid.UUID]catalog.SellerType{},
	}
	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			l.ProductID = uuid.New()
		}
		in.Lines = append(in.Lines, pricing.QuoteLine{
			ProductID:    l.ProductID,
			SellerID:     l.SellerID,
			CategoryPath: []uuid.UUID{uuid.Nil},
			SKU:          l.SKU,
			Name:         l.SKU,
			UnitPrice:    EUR(l.UnitPrice),
			Quantity:     l.Quantity,
		})
		in.SellerTypes[l.SellerID] = catalog.SellerTypeBusiness
	}
	q, err := pricing.NewCalculator().Quote(TestRuleSnapshot(tenantID), in)
	if err != nil {
		panic(fmt.Sprintf("test quote: %v", err))
	}
	return q
}

// NewTestOrder builds a PENDING_PAYMENT order with cleared domain events
func NewTestOrder(tenantID, buyerID uuid.UUID, lines ...OrderLine) *order.Order {
	number := fmt.Sprintf("MKT-%s-%05d", time.Now().UTC().Format("20060102"), time.Now().Nanosecond()%100000)
	o, err := order.NewOrder(tenantID, buyerID, number, TestAddress(), NewTestQuote(tenantID, lines...))
	if err != nil {
		panic(fmt.Sprintf("test order: %v", err))
	}
	o.ClearDomainEvents()
	return o
}

// SellerActor returns a seller actor operating the given storefront
func SellerActor(sellerID uuid.UUID) shared.Actor {
	return shared.Actor{UserID: uuid.New(), Role: shared.RoleSeller, SellerID: &sellerID}
}

// BuyerActor returns a buyer actor
func BuyerActor(userID uuid.UUID) shared.Actor {
	return shared.Actor{UserID: userID, Role: shared.RoleBuyer}
}

// AdminActor returns an admin actor
func AdminActor() shared.Actor {
	return shared.Actor{UserID: uuid.New(), Role: shared.RoleAdmin}
}

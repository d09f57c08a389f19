package pricing

import (
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteFixture struct {
	snapshot    *RuleSnapshot
	sellerA     uuid.UUID
	sellerB     uuid.UUID
	electronics uuid.UUID
	books       uuid.UUID
}

func newQuoteFixture(t *testing.T) quoteFixture {
	t.Helper()
	f := quoteFixture{
		sellerA:     uuid.MustParse("00000000-0000-0000-0000-00000000000a"),
		sellerB:     uuid.MustParse("00000000-0000-0000-0000-00000000000b"),
		electronics: uuid.New(),
		books:       uuid.New(),
	}

	vatStd, err := NewVatRule(tenantID, "PL standard", 10, window(t0), "PL", nil, pct("23"))
	require.NoError(t, err)
	vatBooks, err := NewVatRule(tenantID, "PL books", 10, window(t0), "PL", &f.books, pct("5"))
	require.NoError(t, err)

	booksFee := eur("0.50")
	commBooks, err := NewCommissionRule(tenantID, "books", 10, window(t0), &f.books, nil, pct("15"), booksFee)
	require.NoError(t, err)

	ship, err := NewShippingRule(tenantID, "standard", 10, window(t0), ShippingStandard, "STANDARD_POST", nil, "", eur("4.99"), eur("0.50"), ptr(eur("60")))
	require.NoError(t, err)

	f.snapshot = NewRuleSnapshot(tenantID, Defaults{CommissionPercent: pct("10"), VatPercent: pct("20")},
		[]CommissionRule{*commBooks}, []VatRule{*vatStd, *vatBooks}, []ShippingRule{*ship})
	return f
}

func (f quoteFixture) input(promo *Promotion) QuoteInput {
	return QuoteInput{
		Currency: valueobject.EUR,
		At:       t0.Add(time.Hour),
		Country:  "PL",
		Lines: []QuoteLine{
			{ProductID: uuid.New(), SellerID: f.sellerB, CategoryPath: []uuid.UUID{f.books}, SKU: "BOOK", UnitPrice: eur("50.00"), Quantity: 1},
			{ProductID: uuid.New(), SellerID: f.sellerA, CategoryPath: []uuid.UUID{f.electronics}, SKU: "CABLE", UnitPrice: eur("10.00"), Quantity: 2},
			{ProductID: uuid.New(), SellerID: f.sellerA, CategoryPath: []uuid.UUID{f.electronics}, SKU: "CHARGER", UnitPrice: eur("30.00"), Quantity: 1},
		},
		SellerTypes: map[uuid.UUID]catalog.SellerType{
			f.sellerA: catalog.SellerTypeBusiness,
			f.sellerB: catalog.SellerTypeIndividual,
		},
		Promotion: promo,
	}
}

func amount(m valueobject.Money) string { return m.Amount().StringFixed(2) }

func TestCalculator_Quote_MultiSellerWithPromotion(t *testing.T) {
	f := newQuoteFixture(t)
	promo, err := NewPromotion(tenantID, "spring10", "", PromotionPercent, pct("10"), valueobject.EUR, pct("0"), window(t0), 0)
	require.NoError(t, err)

	q, err := NewCalculator().Quote(f.snapshot, f.input(promo))
	require.NoError(t, err)

	require.Len(t, q.Sellers, 2)
	a, b := q.Sellers[0], q.Sellers[1]
	assert.Equal(t, f.sellerA, a.SellerID, "sellers ordered by id")
	assert.Equal(t, f.sellerB, b.SellerID)
	assert.Equal(t, "SPRING10", q.PromotionCode)

	// Seller A: 20 + 30, discount 5 split 2/3, VAT 23%, default commission 10%
	assert.Equal(t, "50.00", amount(a.Subtotal))
	assert.Equal(t, "5.00", amount(a.Discount))
	assert.Equal(t, "2.00", amount(a.Lines[0].Discount))
	assert.Equal(t, "3.00", amount(a.Lines[1].Discount))
	assert.Equal(t, "45.00", amount(a.Net))
	assert.Equal(t, 3, a.Items)
	assert.Equal(t, "6.49", amount(a.Shipping))
	assert.Equal(t, "1.49", amount(a.ShippingVat))
	assert.Equal(t, "11.84", amount(a.Vat))
	assert.Equal(t, "63.33", amount(a.Total))
	assert.Equal(t, "4.50", amount(a.Commission))
	assert.Equal(t, "58.83", amount(a.Payout))
	assert.Nil(t, a.Lines[0].CommissionRuleID)

	// Seller B: books at 5% VAT and 15% + 0.50 commission
	assert.Equal(t, "45.00", amount(b.Net))
	assert.Equal(t, "5.49", amount(b.Shipping))
	assert.Equal(t, "3.51", amount(b.Vat))
	assert.Equal(t, "54.00", amount(b.Total))
	assert.Equal(t, "7.25", amount(b.Commission))
	assert.Equal(t, "46.75", amount(b.Payout))
	assert.NotNil(t, b.Lines[0].CommissionRuleID)
	assert.Equal(t, "STANDARD_POST", b.Carrier)

	assert.Equal(t, "100.00", amount(q.Subtotal))
	assert.Equal(t, "10.00", amount(q.Discount))
	assert.Equal(t, "11.98", amount(q.Shipping))
	assert.Equal(t, "15.35", amount(q.Vat))
	assert.Equal(t, "117.33", amount(q.Total))
	assert.Equal(t, "11.75", amount(q.Commission))
}

func TestCalculator_Quote_NoPromotion(t *testing.T) {
	f := newQuoteFixture(t)
	q, err := NewCalculator().Quote(f.snapshot, f.input(nil))
	require.NoError(t, err)
	assert.True(t, q.Discount.IsZero())
	assert.Empty(t, q.PromotionCode)
	for _, s := range q.Sellers {
		assert.True(t, s.Net.Equals(s.Subtotal))
	}
}

func TestCalculator_Quote_Errors(t *testing.T) {
	f := newQuoteFixture(t)
	calc := NewCalculator()

	t.Run("empty cart", func(t *testing.T) {
		in := f.input(nil)
		in.Lines = nil
		_, err := calc.Quote(f.snapshot, in)
		assert.Equal(t, "EMPTY_CART", shared.CodeOf(err))
	})

	t.Run("unavailable method", func(t *testing.T) {
		in := f.input(nil)
		in.Methods = map[uuid.UUID]ShippingMethod{f.sellerA: ShippingExpress}
		_, err := calc.Quote(f.snapshot, in)
		assert.Equal(t, "SHIPPING_METHOD_UNAVAILABLE", shared.CodeOf(err))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		in := f.input(nil)
		in.Lines[0].UnitPrice = valueobject.MustMoney("50", valueobject.PLN)
		_, err := calc.Quote(f.snapshot, in)
		assert.Equal(t, "CURRENCY_MISMATCH", shared.CodeOf(err))
	})

	t.Run("promotion below minimum", func(t *testing.T) {
		promo, err := NewPromotion(tenantID, "BIG", "", PromotionFixed, pct("20"), valueobject.EUR, pct("500"), window(t0), 0)
		require.NoError(t, err)
		_, err = calc.Quote(f.snapshot, f.input(promo))
		assert.Equal(t, "PROMOTION_NOT_APPLICABLE", shared.CodeOf(err))
	})
}

func TestCalculator_Quote_FreeShippingAboveThreshold(t *testing.T) {
	f := newQuoteFixture(t)
	in := f.input(nil)
	in.Lines[0].Quantity = 2 // seller B subtotal 100 >= 60
	q, err := NewCalculator().Quote(f.snapshot, in)
	require.NoError(t, err)
	assert.True(t, q.Sellers[1].Shipping.IsZero())
	assert.True(t, q.Sellers[1].ShippingVat.IsZero())
}

func TestCalculator_Quote_DiscountSumsExactly(t *testing.T) {
	f := newQuoteFixture(t)
	promo, err := NewPromotion(tenantID, "ODD", "", PromotionFixed, pct("7.77"), valueobject.EUR, pct("0"), window(t0), 0)
	require.NoError(t, err)
	in := f.input(promo)
	in.Lines[1].UnitPrice = eur("3.33")
	in.Lines[2].UnitPrice = eur("9.99")

	q, err := NewCalculator().Quote(f.snapshot, in)
	require.NoError(t, err)
	assert.Equal(t, "7.77", amount(q.Discount))

	lineSum := valueobject.Zero(valueobject.EUR)
	for _, s := range q.Sellers {
		for _, l := range s.Lines {
			lineSum = lineSum.MustAdd(l.Discount)
		}
	}
	assert.Equal(t, "7.77", amount(lineSum))
}

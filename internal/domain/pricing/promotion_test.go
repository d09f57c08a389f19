package pricing

import (
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPromotion_Validation(t *testing.T) {
	tests := []struct {
		name string
		code string
		typ  PromotionType
		val  string
	}{
		{"short code", "AB", PromotionPercent, "10"},
		{"bad characters", "10% OFF", PromotionPercent, "10"},
		{"percent over 100", "BIG", PromotionPercent, "120"},
		{"zero fixed", "ZERO", PromotionFixed, "0"},
		{"unknown type", "CODE", PromotionType("BOGO"), "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPromotion(tenantID, tt.code, "", tt.typ, pct(tt.val), valueobject.EUR, pct("0"), window(t0), 0)
			assert.Error(t, err)
		})
	}
}

func TestPromotion_DiscountFor(t *testing.T) {
	percent, err := NewPromotion(tenantID, "TEN", "", PromotionPercent, pct("10"), valueobject.EUR, pct("0"), window(t0), 0)
	require.NoError(t, err)
	assert.Equal(t, "3.33", amount(percent.DiscountFor(eur("33.33"))))

	fixed, err := NewPromotion(tenantID, "FIVER", "", PromotionFixed, pct("5"), valueobject.EUR, pct("0"), window(t0), 0)
	require.NoError(t, err)
	assert.Equal(t, "5.00", amount(fixed.DiscountFor(eur("20"))))
	assert.Equal(t, "3.00", amount(fixed.DiscountFor(eur("3"))), "capped at subtotal")
}

func TestPromotion_Redeem(t *testing.T) {
	end := t0.Add(24 * time.Hour)
	p, err := NewPromotion(tenantID, "ONCE", "", PromotionFixed, pct("5"), valueobject.EUR, pct("10"), window(t0, end), 1)
	require.NoError(t, err)

	at := t0.Add(time.Hour)
	require.NoError(t, p.CheckApplicable(at, eur("10")))
	assert.Equal(t, "PROMOTION_NOT_APPLICABLE", shared.CodeOf(p.CheckApplicable(at, eur("9.99"))))
	assert.Equal(t, "PROMOTION_EXPIRED", shared.CodeOf(p.CheckApplicable(end, eur("10"))))

	require.NoError(t, p.Redeem(at))
	assert.Equal(t, 1, p.Redeemed)
	assert.Equal(t, "PROMOTION_EXHAUSTED", shared.CodeOf(p.Redeem(at)))
	assert.Equal(t, "PROMOTION_EXHAUSTED", shared.CodeOf(p.CheckApplicable(at, eur("10"))))

	p.Deactivate()
	assert.Equal(t, "PROMOTION_EXPIRED", shared.CodeOf(p.CheckApplicable(at, eur("10"))))
}

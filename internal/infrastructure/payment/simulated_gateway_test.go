package payment

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestGateway(t *testing.T) *SimulatedGateway {
	t.Helper()
	g, err := NewSimulatedGateway(&SimulatedGatewayConfig{
		Secret:      testSecret,
		CheckoutURL: "https://api.mercato.test/api/v1/payments/simulate",
		ReturnURL:   "https://api.mercato.test/api/v1/payments/return",
		TokenTTL:    10 * time.Minute,
	})
	require.NoError(t, err)
	return g
}

func newCheckoutRequest() payment.CheckoutRequest {
	return payment.CheckoutRequest{
		TenantID:    uuid.New(),
		PaymentID:   uuid.New(),
		OrderID:     uuid.New(),
		OrderNumber: "MKT-20260314-00001",
		Amount:      valueobject.MustMoney("129.90", valueobject.EUR),
	}
}

func tokenFrom(t *testing.T, redirect string) string {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, SimulatedProviderName, u.Query().Get("provider"))
	return u.Query().Get("token")
}

func TestSimulatedGatewayConfig_Validate(t *testing.T) {
	cfg := &SimulatedGatewayConfig{}
	assert.ErrorIs(t, cfg.Validate(), ErrSimulatedMissingSecret)

	cfg.Secret = "short"
	assert.ErrorIs(t, cfg.Validate(), ErrSimulatedShortSecret)

	cfg.Secret = testSecret
	assert.ErrorIs(t, cfg.Validate(), ErrSimulatedMissingCheckoutURL)

	cfg.CheckoutURL = "https://example.test/simulate"
	assert.ErrorIs(t, cfg.Validate(), ErrSimulatedMissingReturnURL)

	cfg.ReturnURL = "https://example.test/return"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, defaultSimulatedTTL, cfg.TokenTTL)
	assert.Equal(t, defaultSimulatedIssuer, cfg.Issuer)
}

func TestSimulatedGateway_RoundTrip(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)
	req := newCheckoutRequest()

	session, err := g.CreateCheckout(ctx, req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(session.ProviderRef, "sim_"))
	assert.Contains(t, session.RedirectURL, "ref="+session.ProviderRef)

	pending, ok := g.Session(session.ProviderRef)
	require.True(t, ok)
	assert.True(t, pending.Amount.Equals(req.Amount))

	redirect, err := g.Authorize(ctx, session.ProviderRef, payment.OutcomeSucceeded)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(redirect, "https://api.mercato.test/api/v1/payments/return?"))

	result, err := g.VerifyReturn(ctx, tokenFrom(t, redirect))
	require.NoError(t, err)
	assert.Equal(t, req.PaymentID, result.PaymentID)
	assert.Equal(t, req.OrderID, result.OrderID)
	assert.Equal(t, session.ProviderRef, result.ProviderRef)
	assert.Equal(t, payment.OutcomeSucceeded, result.Outcome)
	assert.True(t, result.Amount.Equals(req.Amount))

	_, err = g.Authorize(ctx, session.ProviderRef, payment.OutcomeSucceeded)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSimulatedGateway_FailedOutcome(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)
	session, err := g.CreateCheckout(ctx, newCheckoutRequest())
	require.NoError(t, err)

	_, err = g.Authorize(ctx, session.ProviderRef, "maybe")
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	redirect, err := g.Authorize(ctx, session.ProviderRef, payment.OutcomeFailed)
	require.NoError(t, err)
	result, err := g.VerifyReturn(ctx, tokenFrom(t, redirect))
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomeFailed, result.Outcome)
}

func TestSimulatedGateway_CreateCheckout_Rejects(t *testing.T) {
	g := newTestGateway(t)
	req := newCheckoutRequest()
	req.Amount = valueobject.Zero(valueobject.EUR)

	_, err := g.CreateCheckout(context.Background(), req)
	assert.ErrorIs(t, err, payment.ErrProviderRequest)
}

func TestSimulatedGateway_VerifyReturn_Rejects(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)
	req := newCheckoutRequest()
	valid, err := g.SignReturnToken(req, "sim_1", payment.OutcomeSucceeded)
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(valid, ".")
		forged := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
		_, err := g.VerifyReturn(ctx, forged)
		assert.ErrorIs(t, err, payment.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewSimulatedGateway(&SimulatedGatewayConfig{
			Secret:      strings.Repeat("x", 32),
			CheckoutURL: "https://other.test/simulate",
			ReturnURL:   "https://other.test/return",
		})
		require.NoError(t, err)
		token, err := other.SignReturnToken(req, "sim_1", payment.OutcomeSucceeded)
		require.NoError(t, err)
		_, err = g.VerifyReturn(ctx, token)
		assert.ErrorIs(t, err, payment.ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := jwt.MapClaims{
			"iss":        defaultSimulatedIssuer,
			"exp":        time.Now().Add(time.Minute).Unix(),
			"payment_id": req.PaymentID.String(),
			"order_id":   req.OrderID.String(),
			"amount":     "129.90",
			"currency":   "EUR",
			"outcome":    "succeeded",
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = g.VerifyReturn(ctx, token)
		assert.ErrorIs(t, err, payment.ErrInvalidToken)
	})

	t.Run("other HMAC algorithm", func(t *testing.T) {
		claims := jwt.MapClaims{
			"iss": defaultSimulatedIssuer,
			"exp": time.Now().Add(time.Minute).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = g.VerifyReturn(ctx, token)
		assert.ErrorIs(t, err, payment.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		g.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
		defer func() { g.now = func() time.Time { return time.Now().UTC() } }()
		_, err := g.VerifyReturn(ctx, valid)
		assert.ErrorIs(t, err, payment.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := g.VerifyReturn(ctx, "not-a-token")
		assert.ErrorIs(t, err, payment.ErrInvalidToken)
	})
}

func TestSimulatedGateway_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)
	session, err := g.CreateCheckout(ctx, newCheckoutRequest())
	require.NoError(t, err)

	g.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	_, ok := g.Session(session.ProviderRef)
	assert.False(t, ok)
	_, err = g.Authorize(ctx, session.ProviderRef, payment.OutcomeSucceeded)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSimulatedGateway_Refund(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)
	amount := valueobject.MustMoney("10.00", valueobject.EUR)

	result, err := g.Refund(ctx, payment.RefundRequest{ProviderRef: "sim_1", Amount: amount})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.RefundRef, "simrf_"))
	assert.True(t, result.Amount.Equals(amount))

	_, err = g.Refund(ctx, payment.RefundRequest{Amount: amount})
	assert.ErrorIs(t, err, payment.ErrProviderRequest)
}

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
)

// stripeCall is one request the gateway sent to the mock backend
type stripeCall struct {
	method string
	path   string
	params stripe.ParamsContainer
}

// mockStripeBackend implements stripe.Backend for testing
type mockStripeBackend struct {
	calls   []stripeCall
	handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)
}

func (m *mockStripeBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	m.calls = append(m.calls, stripeCall{method: method, path: path, params: params})
	data, err := m.handler(method, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (m *mockStripeBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (m *mockStripeBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockStripeBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockStripeBackend) SetMaxNetworkRetries(maxNetworkRetries int64) {}

func newStripeTestGateway(t *testing.T, handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)) (*StripeGateway, *mockStripeBackend) {
	t.Helper()
	backend := &mockStripeBackend{handler: handler}
	g, err := NewStripeGateway(&StripeGatewayConfig{
		SecretKey:  "sk_test_123456789",
		TestMode:   true,
		SessionTTL: time.Hour,
		ReturnURL:  "https://api.mercato.test/api/v1/payments/return",
	}, zap.NewNop(), WithStripeBackend(backend))
	require.NoError(t, err)
	return g, backend
}

func sessionJSON(t *testing.T, req payment.CheckoutRequest, fields map[string]any) []byte {
	t.Helper()
	body := map[string]any{
		"id":           "cs_test_abc",
		"object":       "checkout.session",
		"amount_total": 12990,
		"currency":     "eur",
		"metadata": map[string]string{
			metaTenantID:  req.TenantID.String(),
			metaPaymentID: req.PaymentID.String(),
			metaOrderID:   req.OrderID.String(),
		},
	}
	for k, v := range fields {
		body[k] = v
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return data
}

func TestStripeGatewayConfig_Validate(t *testing.T) {
	cfg := &StripeGatewayConfig{}
	assert.ErrorIs(t, cfg.Validate(), ErrStripeMissingKey)

	cfg.SecretKey = "sk_live_123"
	cfg.TestMode = true
	assert.ErrorIs(t, cfg.Validate(), ErrStripeKeyMode)

	cfg.SecretKey = "sk_test_123"
	assert.ErrorIs(t, cfg.Validate(), ErrStripeMissingURL)

	cfg.ReturnURL = "https://example.test/return"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)

	cfg.SessionTTL = 72 * time.Hour
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestStripeGateway_CreateCheckout(t *testing.T) {
	req := newCheckoutRequest()
	req.BuyerEmail = "buyer@mercato.test"
	expires := time.Now().Add(time.Hour).Unix()

	g, backend := newStripeTestGateway(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return sessionJSON(t, req, map[string]any{
			"url":        "https://checkout.stripe.com/c/pay/cs_test_abc",
			"expires_at": expires,
		}), nil
	})

	s, err := g.CreateCheckout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_abc", s.ProviderRef)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_abc", s.RedirectURL)
	assert.Equal(t, expires, s.ExpiresAt.Unix())

	require.Len(t, backend.calls, 1)
	call := backend.calls[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/v1/checkout/sessions", call.path)

	params, ok := call.params.(*stripe.CheckoutSessionParams)
	require.True(t, ok)
	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "https://api.mercato.test/api/v1/payments/return?provider=stripe&token={CHECKOUT_SESSION_ID}", *params.SuccessURL)
	assert.Equal(t, *params.SuccessURL, *params.CancelURL)
	assert.Equal(t, "buyer@mercato.test", *params.CustomerEmail)
	require.Len(t, params.LineItems, 1)
	assert.Equal(t, int64(12990), *params.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "eur", *params.LineItems[0].PriceData.Currency)
	assert.Equal(t, "Order "+req.OrderNumber, *params.LineItems[0].PriceData.ProductData.Name)
	assert.Equal(t, req.PaymentID.String(), params.Metadata[metaPaymentID])
	assert.Equal(t, req.OrderID.String(), params.Metadata[metaOrderID])
	assert.Equal(t, "checkout-"+req.PaymentID.String(), *params.IdempotencyKey)
}

func TestStripeGateway_CreateCheckout_ProviderError(t *testing.T) {
	g, _ := newStripeTestGateway(t, func(string, string, stripe.ParamsContainer) ([]byte, error) {
		return nil, &stripe.Error{HTTPStatusCode: http.StatusBadGateway, Msg: "upstream"}
	})

	_, err := g.CreateCheckout(context.Background(), newCheckoutRequest())
	assert.ErrorIs(t, err, payment.ErrProviderRequest)
}

func TestStripeGateway_CreateCheckout_RejectsFractionalCents(t *testing.T) {
	g, backend := newStripeTestGateway(t, nil)
	req := newCheckoutRequest()
	req.Amount = valueobject.MustMoney("10.005", valueobject.EUR)

	_, err := g.CreateCheckout(context.Background(), req)
	assert.ErrorIs(t, err, ErrStripeAmount)
	assert.Empty(t, backend.calls)
}

func TestStripeGateway_VerifyReturn_Paid(t *testing.T) {
	req := newCheckoutRequest()
	g, backend := newStripeTestGateway(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return sessionJSON(t, req, map[string]any{
			"status":         "complete",
			"payment_status": "paid",
			"payment_intent": map[string]any{"id": "pi_test_123", "object": "payment_intent"},
		}), nil
	})

	res, err := g.VerifyReturn(context.Background(), "cs_test_abc")
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomeSucceeded, res.Outcome)
	assert.Equal(t, req.PaymentID, res.PaymentID)
	assert.Equal(t, req.OrderID, res.OrderID)
	assert.Equal(t, "pi_test_123", res.ProviderRef)
	assert.True(t, res.Amount.Equals(req.Amount), "got %s", res.Amount)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, http.MethodGet, backend.calls[0].method)
	assert.Equal(t, "/v1/checkout/sessions/cs_test_abc", backend.calls[0].path)
}

func TestStripeGateway_VerifyReturn_AbandonedSessionIsExpired(t *testing.T) {
	req := newCheckoutRequest()
	g, backend := newStripeTestGateway(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		if strings.HasSuffix(path, "/expire") {
			return sessionJSON(t, req, map[string]any{"status": "expired", "payment_status": "unpaid"}), nil
		}
		return sessionJSON(t, req, map[string]any{"status": "open", "payment_status": "unpaid"}), nil
	})

	res, err := g.VerifyReturn(context.Background(), "cs_test_abc")
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomeFailed, res.Outcome)

	require.Len(t, backend.calls, 2)
	assert.Equal(t, "/v1/checkout/sessions/cs_test_abc/expire", backend.calls[1].path)
}

func TestStripeGateway_VerifyReturn_ExpiredSession(t *testing.T) {
	req := newCheckoutRequest()
	g, backend := newStripeTestGateway(t, func(string, string, stripe.ParamsContainer) ([]byte, error) {
		return sessionJSON(t, req, map[string]any{"status": "expired", "payment_status": "unpaid"}), nil
	})

	res, err := g.VerifyReturn(context.Background(), "cs_test_abc")
	require.NoError(t, err)
	assert.Equal(t, payment.OutcomeFailed, res.Outcome)
	assert.Len(t, backend.calls, 1)
}

func TestStripeGateway_VerifyReturn_InvalidTokens(t *testing.T) {
	g, backend := newStripeTestGateway(t, func(string, string, stripe.ParamsContainer) ([]byte, error) {
		return nil, &stripe.Error{HTTPStatusCode: http.StatusNotFound, Code: stripe.ErrorCodeResourceMissing}
	})

	_, err := g.VerifyReturn(context.Background(), "not-a-session")
	assert.ErrorIs(t, err, payment.ErrInvalidToken)
	assert.Empty(t, backend.calls)

	_, err = g.VerifyReturn(context.Background(), "cs_test_missing")
	assert.ErrorIs(t, err, payment.ErrInvalidToken)
}

func TestStripeGateway_VerifyReturn_ForeignSession(t *testing.T) {
	g, _ := newStripeTestGateway(t, func(string, string, stripe.ParamsContainer) ([]byte, error) {
		return []byte(`{"id":"cs_test_other","object":"checkout.session","status":"complete","payment_status":"paid","currency":"eur","amount_total":100,"metadata":{}}`), nil
	})

	_, err := g.VerifyReturn(context.Background(), "cs_test_other")
	assert.ErrorIs(t, err, payment.ErrInvalidToken)
}

func TestStripeGateway_Refund(t *testing.T) {
	req := newCheckoutRequest()
	g, backend := newStripeTestGateway(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return []byte(`{"id":"re_test_1","object":"refund","amount":4000,"currency":"eur","status":"succeeded"}`), nil
	})

	res, err := g.Refund(context.Background(), payment.RefundRequest{
		TenantID:    req.TenantID,
		PaymentID:   req.PaymentID,
		ProviderRef: "pi_test_123",
		Amount:      valueobject.MustMoney("40.00", valueobject.EUR),
		Reason:      "return approved",
		Reference:   "return:42",
	})
	require.NoError(t, err)
	assert.Equal(t, "re_test_1", res.RefundRef)
	assert.True(t, res.Amount.Equals(valueobject.MustMoney("40", valueobject.EUR)))

	require.Len(t, backend.calls, 1)
	assert.Equal(t, "/v1/refunds", backend.calls[0].path)
	params, ok := backend.calls[0].params.(*stripe.RefundParams)
	require.True(t, ok)
	assert.Equal(t, "pi_test_123", *params.PaymentIntent)
	assert.Equal(t, int64(4000), *params.Amount)
	assert.Equal(t, "return approved", params.Metadata["reason"])
	require.NotNil(t, params.IdempotencyKey)
	assert.Equal(t, "refund-"+req.PaymentID.String()+"-return:42", *params.IdempotencyKey)
}

func TestStripeGateway_Refund_FailedAtStripe(t *testing.T) {
	g, _ := newStripeTestGateway(t, func(string, string, stripe.ParamsContainer) ([]byte, error) {
		return []byte(`{"id":"re_test_2","object":"refund","amount":4000,"currency":"eur","status":"failed"}`), nil
	})

	_, err := g.Refund(context.Background(), payment.RefundRequest{
		ProviderRef: "pi_test_123",
		Amount:      valueobject.MustMoney("40.00", valueobject.EUR),
	})
	assert.ErrorIs(t, err, payment.ErrProviderRequest)
}

func TestStripeGateway_Refund_WithoutPaymentIntent(t *testing.T) {
	g, backend := newStripeTestGateway(t, nil)

	_, err := g.Refund(context.Background(), payment.RefundRequest{
		ProviderRef: "cs_test_abc",
		Amount:      valueobject.MustMoney("40.00", valueobject.EUR),
	})
	assert.ErrorIs(t, err, payment.ErrRefundNotSupported)
	assert.Empty(t, backend.calls)
}

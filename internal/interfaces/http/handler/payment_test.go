package handler

import (
	"context"
	"net/http"
	"testing"

	domainpayment "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	paymentinfra "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHostedPage struct {
	sessions map[string]domainpayment.CheckoutRequest
	err      error
}

func (s *stubHostedPage) Session(ref string) (domainpayment.CheckoutRequest, bool) {
	req, ok := s.sessions[ref]
	return req, ok
}

func (s *stubHostedPage) Authorize(_ context.Context, ref string, outcome domainpayment.Outcome) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://shop.example.com/payments/return?ref=" + ref + "&outcome=" + string(outcome), nil
}

func newPaymentRouter(hosted HostedPaymentPage) *gin.Engine {
	h := NewPaymentHandler(nil, hosted)
	r := gin.New()
	r.GET("/payments/simulate", h.SimulatedSession)
	r.POST("/payments/simulate", h.SimulatedAuthorize)
	return r
}

func TestPaymentHandler_SimulatedSession(t *testing.T) {
	hosted := &stubHostedPage{sessions: map[string]domainpayment.CheckoutRequest{
		"sim_1": {OrderNumber: "MKT-20261018-00001", Amount: testutil.EUR("54.80")},
	}}
	r := newPaymentRouter(hosted)

	w := perform(t, r, http.MethodGet, "/payments/simulate?ref=sim_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeAs[SimulatedSessionResponse](t, w)
	assert.Equal(t, "MKT-20261018-00001", resp.Data.OrderNumber)

	w = perform(t, r, http.MethodGet, "/payments/simulate?ref=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PAYMENT_SESSION_NOT_FOUND", errorCode(t, w))
}

func TestPaymentHandler_SimulatedAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   map[string]string
		status int
	}{
		{"succeeded", nil, map[string]string{"ref": "sim_1", "outcome": "succeeded"}, http.StatusOK},
		{"unknown outcome", nil, map[string]string{"ref": "sim_1", "outcome": "maybe"}, http.StatusBadRequest},
		{"unknown session", paymentinfra.ErrSessionNotFound, map[string]string{"ref": "sim_9", "outcome": "failed"}, http.StatusNotFound},
		{"expired session", paymentinfra.ErrSessionExpired, map[string]string{"ref": "sim_1", "outcome": "failed"}, http.StatusGone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newPaymentRouter(&stubHostedPage{err: tt.err})

			w := perform(t, r, http.MethodPost, "/payments/simulate", tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestPaymentHandler_SimulatedDisabled(t *testing.T) {
	r := newPaymentRouter(nil)

	w := perform(t, r, http.MethodGet, "/payments/simulate?ref=sim_1", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

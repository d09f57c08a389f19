package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/payment"
	domainpayment "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	paymentinfra "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/payment"
	"github.com/gin-gonic/gin"
)

// HostedPaymentPage is the buyer facing side of the simulated provider
type HostedPaymentPage interface {
	Session(ref string) (domainpayment.CheckoutRequest, bool)
	Authorize(ctx context.Context, ref string, outcome domainpayment.Outcome) (string, error)
}

// SimulatedSessionResponse describes a checkout awaiting the buyer's decision
// @Description Pending simulated checkout
type SimulatedSessionResponse struct {
	Ref         string            `json:"ref"`
	OrderNumber string            `json:"order_number"`
	Amount      valueobject.Money `json:"amount"`
}

// AuthorizeRequest is the buyer's decision on the simulated payment page
// @Description Simulated payment decision
type AuthorizeRequest struct {
	Ref     string `json:"ref" binding:"required"`
	Outcome string `json:"outcome" binding:"required,oneof=succeeded failed" example:"succeeded"`
}

// AuthorizeResponse carries the URL that returns the buyer to the marketplace
// @Description Return URL with the signed token
type AuthorizeResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// PaymentHandler handles the provider round-trip. None of its routes need a
// tenant: the signed token identifies the payment.
type PaymentHandler struct {
	BaseHandler
	payments *payment.Service
	hosted   HostedPaymentPage
}

// NewPaymentHandler creates a new payment handler. hosted may be nil when the
// simulated provider is disabled.
func NewPaymentHandler(payments *payment.Service, hosted HostedPaymentPage) *PaymentHandler {
	return &PaymentHandler{payments: payments, hosted: hosted}
}

// Return godoc
// @Summary      Payment provider return
// @Description  Verifies the provider token and marks the order paid or failed. Replaying a token is harmless.
// @Tags         payments
// @Produce      json
// @Param        token query string true "Signed provider token"
// @Param        provider query string false "Provider name"
// @Success      200 {object} dto.Response{data=payment.ReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/return [get]
func (h *PaymentHandler) Return(c *gin.Context) {
	var req payment.ReturnRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.payments.HandleReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SimulatedSession godoc
// @Summary      Simulated payment page
// @Tags         payments
// @Produce      json
// @Param        ref query string true "Checkout reference"
// @Success      200 {object} dto.Response{data=SimulatedSessionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/simulate [get]
func (h *PaymentHandler) SimulatedSession(c *gin.Context) {
	if h.hosted == nil {
		h.NotFound(c, "Simulated payments are disabled")
		return
	}
	ref := c.Query("ref")
	req, ok := h.hosted.Session(ref)
	if !ok {
		h.Error(c, http.StatusNotFound, "PAYMENT_SESSION_NOT_FOUND", "Checkout session not found or expired")
		return
	}
	h.Success(c, SimulatedSessionResponse{
		Ref:         ref,
		OrderNumber: req.OrderNumber,
		Amount:      req.Amount,
	})
}

// SimulatedAuthorize godoc
// @Summary      Decide a simulated payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body AuthorizeRequest true "Reference and outcome"
// @Success      200 {object} dto.Response{data=AuthorizeResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      410 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/simulate [post]
func (h *PaymentHandler) SimulatedAuthorize(c *gin.Context) {
	if h.hosted == nil {
		h.NotFound(c, "Simulated payments are disabled")
		return
	}
	var req AuthorizeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	redirect, err := h.hosted.Authorize(c.Request.Context(), req.Ref, domainpayment.Outcome(req.Outcome))
	switch {
	case errors.Is(err, paymentinfra.ErrSessionNotFound):
		h.Error(c, http.StatusNotFound, "PAYMENT_SESSION_NOT_FOUND", "Checkout session not found")
	case errors.Is(err, paymentinfra.ErrSessionExpired):
		h.Error(c, http.StatusGone, "PAYMENT_SESSION_EXPIRED", "Checkout session expired")
	case errors.Is(err, paymentinfra.ErrInvalidOutcome):
		h.BadRequest(c, "Outcome must be succeeded or failed")
	case err != nil:
		h.HandleError(c, err)
	default:
		h.Success(c, AuthorizeResponse{RedirectURL: redirect})
	}
}

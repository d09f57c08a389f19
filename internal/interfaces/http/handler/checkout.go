package handler

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/checkout"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/dto"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CheckoutFailureRecorder counts rejected checkouts by error code
type CheckoutFailureRecorder interface {
	RecordCheckoutFailure(ctx context.Context, tenantID, code string)
}

// CheckoutHandler turns carts into orders
type CheckoutHandler struct {
	BaseHandler
	checkout *checkout.Service
	failures CheckoutFailureRecorder
}

// NewCheckoutHandler creates a new checkout handler. failures may be nil.
func NewCheckoutHandler(svc *checkout.Service, failures CheckoutFailureRecorder) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc, failures: failures}
}

// Checkout godoc
// @Summary      Place an order
// @Description  Validates the cart, reserves stock, splits the order per seller and starts the payment.
// @Description  Retrying with the same Idempotency-Key returns the first result.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client generated retry key"
// @Param        request body checkout.CheckoutRequest true "Cart, delivery address and payment provider"
// @Success      201 {object} dto.Response{data=checkout.CheckoutResponse}
// @Success      200 {object} dto.Response{data=checkout.CheckoutResponse} "Replayed result"
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req checkout.CheckoutRequest
	if !h.bindJSON(c, &req) {
		h.recordFailure(c, dto.ErrCodeValidation)
		return
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), tenantID, req, c.GetHeader(middleware.IdempotencyHeader), actor)
	if err != nil {
		code := dto.ErrCodeInternal
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			code = domainErr.Code
		}
		h.recordFailure(c, code)
		h.HandleError(c, err)
		return
	}
	if resp.Replayed {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

func (h *CheckoutHandler) recordFailure(c *gin.Context, code string) {
	if h.failures == nil {
		return
	}
	tenantID, _ := middleware.GetTenantID(c)
	h.failures.RecordCheckoutFailure(c.Request.Context(), tenantID.String(), code)
}

package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type subOrderTransition func(ctx context.Context, tenantID, subOrderID uuid.UUID, actor shared.Actor) (*order.OrderResponse, error)

// SellerOrderHandler handles fulfilment of a seller's sub-orders
type SellerOrderHandler struct {
	BaseHandler
	orders *order.Service
}

// NewSellerOrderHandler creates a new seller order handler
func NewSellerOrderHandler(orders *order.Service) *SellerOrderHandler {
	return &SellerOrderHandler{orders: orders}
}

// List godoc
// @Summary      My sub-orders
// @Tags         seller-orders
// @Produce      json
// @Param        status query string false "Sub-order status"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]order.SellerSubOrderResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /seller/orders [get]
func (h *SellerOrderHandler) List(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter order.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.orders.ListForSeller(c.Request.Context(), tenantID, filter, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Prepare godoc
// @Summary      Start preparing a paid sub-order
// @Tags         seller-orders
// @Produce      json
// @Param        id path string true "Sub-order ID"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/orders/{id}/prepare [post]
func (h *SellerOrderHandler) Prepare(c *gin.Context) {
	h.transition(c, h.orders.StartPreparing)
}

// Deliver godoc
// @Summary      Confirm delivery
// @Tags         seller-orders
// @Produce      json
// @Param        id path string true "Sub-order ID"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/orders/{id}/deliver [post]
func (h *SellerOrderHandler) Deliver(c *gin.Context) {
	h.transition(c, h.orders.MarkDelivered)
}

// Ship godoc
// @Summary      Ship a sub-order
// @Description  Without a tracking number a shipment is booked with the carrier
// @Tags         seller-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sub-order ID"
// @Param        request body order.ShipRequest false "Carrier and tracking number"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/orders/{id}/ship [post]
func (h *SellerOrderHandler) Ship(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	subOrderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req order.ShipRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orders.Ship(c.Request.Context(), tenantID, subOrderID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel a sub-order
// @Description  Releases the reserved stock and refunds the buyer when already paid
// @Tags         seller-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sub-order ID"
// @Param        request body order.CancelRequest true "Reason"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/orders/{id}/cancel [post]
func (h *SellerOrderHandler) Cancel(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	subOrderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req order.CancelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orders.Cancel(c.Request.Context(), tenantID, subOrderID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PackingSlip godoc
// @Summary      Packing slip PDF of a sub-order
// @Tags         seller-orders
// @Produce      application/pdf
// @Param        id path string true "Sub-order ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/orders/{id}/packing-slip [get]
func (h *SellerOrderHandler) PackingSlip(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	subOrderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	pdf, name, err := h.orders.RenderPackingSlip(c.Request.Context(), tenantID, subOrderID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Settlement godoc
// @Summary      Own settlement for a period
// @Tags         seller-orders
// @Produce      json
// @Param        from query string true "First day (YYYY-MM-DD)"
// @Param        to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=order.SettlementResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/settlement [get]
func (h *SellerOrderHandler) Settlement(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	if actor.SellerID == nil {
		h.Forbidden(c, "No storefront linked to this account")
		return
	}
	h.settlement(c, tenantID, *actor.SellerID, actor)
}

// SellerSettlement godoc
// @Summary      Settlement of any seller
// @Tags         admin-sellers
// @Produce      json
// @Param        id path string true "Seller ID"
// @Param        from query string true "First day (YYYY-MM-DD)"
// @Param        to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=order.SettlementResponse}
// @Security     BearerAuth
// @Router       /admin/sellers/{id}/settlement [get]
func (h *SellerOrderHandler) SellerSettlement(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	sellerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.settlement(c, tenantID, sellerID, actor)
}

func (h *SellerOrderHandler) settlement(c *gin.Context, tenantID, sellerID uuid.UUID, actor shared.Actor) {
	var req order.SettlementRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.orders.Settlement(c.Request.Context(), tenantID, sellerID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *SellerOrderHandler) transition(c *gin.Context, apply subOrderTransition) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	subOrderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), tenantID, subOrderID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/shipping"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves order history to buyers and administrators
type OrderHandler struct {
	BaseHandler
	orders   *order.Service
	payments *payment.Service
	tracking *shipping.TrackingService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, payments *payment.Service, tracking *shipping.TrackingService) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments, tracking: tracking}
}

// ListMine godoc
// @Summary      My orders
// @Tags         orders
// @Produce      json
// @Param        status query string false "Order status"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]order.OrderResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter order.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.orders.ListForBuyer(c.Request.Context(), tenantID, filter, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListAll godoc
// @Summary      All orders of the marketplace
// @Tags         admin-orders
// @Produce      json
// @Param        status query string false "Order status"
// @Param        search query string false "Order number"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]order.OrderResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) ListAll(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter order.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.orders.ListAll(c.Request.Context(), tenantID, filter, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Order details
// @Description  Buyers see their own orders, sellers the orders containing their sub-orders
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=order.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.Get(c.Request.Context(), tenantID, orderID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Payment godoc
// @Summary      Payment of an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=payment.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/payment [get]
func (h *OrderHandler) Payment(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.payments.GetForOrder(c.Request.Context(), tenantID, orderID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Track godoc
// @Summary      Track a shipped sub-order
// @Tags         orders
// @Produce      json
// @Param        subOrderId path string true "Sub-order ID"
// @Success      200 {object} dto.Response{data=shipping.TrackingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/sub-orders/{subOrderId}/tracking [get]
func (h *OrderHandler) Track(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	subOrderID, ok := h.pathUUID(c, "subOrderId")
	if !ok {
		return
	}
	resp, err := h.tracking.Track(c.Request.Context(), tenantID, subOrderID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

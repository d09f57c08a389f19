package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/cart"
	"github.com/gin-gonic/gin"
)

// CartHandler handles the buyer's shopping cart
type CartHandler struct {
	BaseHandler
	carts *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get godoc
// @Summary      Current cart
// @Description  Lines are grouped by seller. An empty cart is returned when none exists yet.
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cart.CartResponse}
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	resp, err := h.carts.Get(c.Request.Context(), tenantID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem godoc
// @Summary      Add a product
// @Description  Adding a product already in the cart increases its quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cart.AddItemRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=cart.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req cart.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.carts.AddItem(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateQuantity godoc
// @Summary      Change a line quantity
// @Description  A quantity of zero removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        productId path string true "Product ID"
// @Param        request body cart.UpdateQuantityRequest true "Quantity"
// @Success      200 {object} dto.Response{data=cart.CartResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{productId} [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}
	var req cart.UpdateQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.carts.UpdateQuantity(c.Request.Context(), tenantID, productID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem godoc
// @Summary      Remove a line
// @Tags         cart
// @Produce      json
// @Param        productId path string true "Product ID"
// @Success      200 {object} dto.Response{data=cart.CartResponse}
// @Security     BearerAuth
// @Router       /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}
	resp, err := h.carts.RemoveItem(c.Request.Context(), tenantID, productID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SelectShipping godoc
// @Summary      Choose a shipping method for one seller
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cart.SelectShippingRequest true "Seller and method"
// @Success      200 {object} dto.Response{data=cart.CartResponse}
// @Security     BearerAuth
// @Router       /cart/shipping [put]
func (h *CartHandler) SelectShipping(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req cart.SelectShippingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.carts.SelectShipping(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyPromotion godoc
// @Summary      Apply a promo code
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cart.ApplyPromotionRequest true "Promo code"
// @Success      200 {object} dto.Response{data=cart.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/promotion [put]
func (h *CartHandler) ApplyPromotion(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req cart.ApplyPromotionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.carts.ApplyPromotion(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemovePromotion godoc
// @Summary      Remove the promo code
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cart.CartResponse}
// @Security     BearerAuth
// @Router       /cart/promotion [delete]
func (h *CartHandler) RemovePromotion(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	resp, err := h.carts.RemovePromotion(c.Request.Context(), tenantID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cart.CartResponse}
// @Security     BearerAuth
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	resp, err := h.carts.Clear(c.Request.Context(), tenantID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Quote godoc
// @Summary      Price the cart
// @Description  Totals per seller with shipping, VAT and the promotion discount for a delivery country
// @Tags         cart
// @Produce      json
// @Param        country query string false "ISO 3166-1 alpha-2 delivery country" example(PL)
// @Success      200 {object} dto.Response{data=cart.CartQuoteResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/quote [get]
func (h *CartHandler) Quote(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req cart.QuoteRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.carts.Quote(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

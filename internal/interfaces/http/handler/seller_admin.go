package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// SellerAdminHandler handles storefront onboarding and moderation
type SellerAdminHandler struct {
	BaseHandler
	sellers *catalog.SellerService
}

// NewSellerAdminHandler creates a new seller admin handler
func NewSellerAdminHandler(sellers *catalog.SellerService) *SellerAdminHandler {
	return &SellerAdminHandler{sellers: sellers}
}

// List godoc
// @Summary      List storefronts
// @Tags         admin-sellers
// @Produce      json
// @Param        status query string false "PENDING, ACTIVE or SUSPENDED"
// @Param        search query string false "Search in store name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalog.SellerResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/sellers [get]
func (h *SellerAdminHandler) List(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter catalog.SellerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.sellers.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Storefront details
// @Tags         admin-sellers
// @Produce      json
// @Param        id path string true "Seller ID"
// @Success      200 {object} dto.Response{data=catalog.SellerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers/{id} [get]
func (h *SellerAdminHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	sellerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	seller, err := h.sellers.Get(c.Request.Context(), tenantID, sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// Approve godoc
// @Summary      Approve a pending storefront
// @Tags         admin-sellers
// @Produce      json
// @Param        id path string true "Seller ID"
// @Success      200 {object} dto.Response{data=catalog.SellerResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers/{id}/approve [post]
func (h *SellerAdminHandler) Approve(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	sellerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	seller, err := h.sellers.Approve(c.Request.Context(), tenantID, sellerID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// Suspend godoc
// @Summary      Suspend a storefront
// @Description  Suspended sellers' listings disappear from the catalog and block checkout of carts containing them
// @Tags         admin-sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Seller ID"
// @Param        request body catalog.SuspendSellerRequest true "Reason"
// @Success      200 {object} dto.Response{data=catalog.SellerResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers/{id}/suspend [post]
func (h *SellerAdminHandler) Suspend(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	sellerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalog.SuspendSellerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	seller, err := h.sellers.Suspend(c.Request.Context(), tenantID, sellerID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// Reactivate godoc
// @Summary      Reactivate a suspended storefront
// @Tags         admin-sellers
// @Produce      json
// @Param        id path string true "Seller ID"
// @Success      200 {object} dto.Response{data=catalog.SellerResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers/{id}/reactivate [post]
func (h *SellerAdminHandler) Reactivate(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	sellerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	seller, err := h.sellers.Reactivate(c.Request.Context(), tenantID, sellerID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// ChangeType godoc
// @Summary      Change the commission tier
// @Tags         admin-sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Seller ID"
// @Param        request body catalog.ChangeSellerTypeRequest true "Seller type"
// @Success      200 {object} dto.Response{data=catalog.SellerResponse}
// @Security     BearerAuth
// @Router       /admin/sellers/{id}/type [put]
func (h *SellerAdminHandler) ChangeType(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	sellerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalog.ChangeSellerTypeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	seller, err := h.sellers.ChangeType(c.Request.Context(), tenantID, sellerID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// UpdateVAT godoc
// @Summary      Set the VAT registration
// @Tags         admin-sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Seller ID"
// @Param        request body catalog.UpdateVATRequest true "VAT number, empty to clear"
// @Success      200 {object} dto.Response{data=catalog.SellerResponse}
// @Security     BearerAuth
// @Router       /admin/sellers/{id}/vat [put]
func (h *SellerAdminHandler) UpdateVAT(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	sellerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalog.UpdateVATRequest
	if !h.bindJSON(c, &req) {
		return
	}
	seller, err := h.sellers.UpdateVAT(c.Request.Context(), tenantID, sellerID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

package handler

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type productTransition func(ctx context.Context, tenantID, productID uuid.UUID, actor shared.Actor) (*catalog.ProductResponse, error)

// SellerHandler serves the seller back office: the storefront profile and
// its own listings. Ownership is enforced by the services.
type SellerHandler struct {
	BaseHandler
	products *catalog.ProductService
	sellers  *catalog.SellerService
}

// NewSellerHandler creates a new seller handler
func NewSellerHandler(products *catalog.ProductService, sellers *catalog.SellerService) *SellerHandler {
	return &SellerHandler{products: products, sellers: sellers}
}

// Profile godoc
// @Summary      Own storefront
// @Tags         seller
// @Produce      json
// @Success      200 {object} dto.Response{data=catalog.SellerResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/profile [get]
func (h *SellerHandler) Profile(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	seller, err := h.sellers.GetMine(c.Request.Context(), tenantID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// ListProducts godoc
// @Summary      Own listings
// @Tags         seller
// @Produce      json
// @Param        status query string false "DRAFT, ACTIVE or ARCHIVED"
// @Param        search query string false "Search in name and SKU"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /seller/products [get]
func (h *SellerHandler) ListProducts(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter catalog.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.products.ListForSeller(c.Request.Context(), tenantID, filter, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CreateProduct godoc
// @Summary      Create a draft listing
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Listing"
// @Success      201 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products [post]
func (h *SellerHandler) CreateProduct(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req catalog.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetProduct godoc
// @Summary      Own listing
// @Tags         seller
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id} [get]
func (h *SellerHandler) GetProduct(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Get(c.Request.Context(), tenantID, productID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateProduct godoc
// @Summary      Change listing details
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.UpdateProductRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id} [put]
func (h *SellerHandler) UpdateProduct(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalog.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), tenantID, productID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ChangePrice godoc
// @Summary      Change the unit price
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.ChangePriceRequest true "New price"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id}/price [put]
func (h *SellerHandler) ChangePrice(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalog.ChangePriceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.ChangePrice(c.Request.Context(), tenantID, productID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AdjustStock godoc
// @Summary      Adjust on-hand stock
// @Tags         seller
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.AdjustStockRequest true "Stock delta"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id}/stock [post]
func (h *SellerHandler) AdjustStock(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalog.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.AdjustStock(c.Request.Context(), tenantID, productID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// PublishProduct godoc
// @Summary      Publish a draft listing
// @Tags         seller
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id}/publish [post]
func (h *SellerHandler) PublishProduct(c *gin.Context) {
	h.lifecycle(c, h.products.Publish)
}

// ArchiveProduct godoc
// @Summary      Archive a listing
// @Tags         seller
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller/products/{id}/archive [post]
func (h *SellerHandler) ArchiveProduct(c *gin.Context) {
	h.lifecycle(c, h.products.Archive)
}

func (h *SellerHandler) lifecycle(c *gin.Context, apply productTransition) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := apply(c.Request.Context(), tenantID, productID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

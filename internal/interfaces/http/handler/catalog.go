package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the public storefront: listings, categories and
// seller pages
type CatalogHandler struct {
	BaseHandler
	browse     *catalog.BrowseService
	categories *catalog.CategoryService
	sellers    *catalog.SellerService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(browse *catalog.BrowseService, categories *catalog.CategoryService, sellers *catalog.SellerService) *CatalogHandler {
	return &CatalogHandler{browse: browse, categories: categories, sellers: sellers}
}

// ListProducts godoc
// @Summary      Browse active listings
// @Description  A category filter includes its active subcategories
// @Tags         catalog
// @Produce      json
// @Param        X-Tenant-Code header string true "Marketplace code"
// @Param        category_id query string false "Category ID"
// @Param        seller_id query string false "Seller ID"
// @Param        q query string false "Search in name and description"
// @Param        min_price query number false "Minimum unit price"
// @Param        max_price query number false "Maximum unit price"
// @Param        sort query string false "name, price or created_at"
// @Param        dir query string false "asc or desc"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	tenantID, ok := h.tenantScope(c)
	if !ok {
		return
	}
	var filter catalog.BrowseFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.CategoryID, ok = h.queryUUID(c, "category_id"); !ok {
		return
	}
	if filter.SellerID, ok = h.queryUUID(c, "seller_id"); !ok {
		return
	}

	page, err := h.browse.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetProduct godoc
// @Summary      Listing details
// @Tags         catalog
// @Produce      json
// @Param        X-Tenant-Code header string true "Marketplace code"
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	tenantID, ok := h.tenantScope(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.browse.Get(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// CategoryTree godoc
// @Summary      Active category tree
// @Tags         catalog
// @Produce      json
// @Param        X-Tenant-Code header string true "Marketplace code"
// @Success      200 {object} dto.Response{data=[]catalog.CategoryNode}
// @Router       /catalog/categories [get]
func (h *CatalogHandler) CategoryTree(c *gin.Context) {
	tenantID, ok := h.tenantScope(c)
	if !ok {
		return
	}
	nodes, err := h.categories.TreeNodes(c.Request.Context(), tenantID, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nodes)
}

// GetSeller godoc
// @Summary      Storefront page
// @Tags         catalog
// @Produce      json
// @Param        X-Tenant-Code header string true "Marketplace code"
// @Param        id path string true "Seller ID"
// @Success      200 {object} dto.Response{data=catalog.SellerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/sellers/{id} [get]
func (h *CatalogHandler) GetSeller(c *gin.Context) {
	tenantID, ok := h.tenantScope(c)
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

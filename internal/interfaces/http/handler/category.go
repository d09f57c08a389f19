package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category administration
type CategoryHandler struct {
	BaseHandler
	categories *catalog.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *catalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Tree godoc
// @Summary      Category tree
// @Tags         admin-categories
// @Produce      json
// @Param        include_inactive query bool false "Include deactivated categories"
// @Success      200 {object} dto.Response{data=[]catalog.CategoryNode}
// @Security     BearerAuth
// @Router       /admin/categories [get]
func (h *CategoryHandler) Tree(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	nodes, err := h.categories.TreeNodes(c.Request.Context(), tenantID, queryBool(c, "include_inactive"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nodes)
}

// Get godoc
// @Summary      Category details
// @Tags         admin-categories
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	categoryID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), tenantID, categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create godoc
// @Summary      Create a category
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateCategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req catalog.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Rename godoc
// @Summary      Rename a category
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        request body catalog.RenameCategoryRequest true "New name"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories/{id} [put]
func (h *CategoryHandler) Rename(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	categoryID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalog.RenameCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Rename(c.Request.Context(), tenantID, categoryID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Move godoc
// @Summary      Move a category
// @Description  A null parent makes the category a root. Moving under a descendant is rejected.
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        request body catalog.MoveCategoryRequest true "New parent"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories/{id}/move [post]
func (h *CategoryHandler) Move(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	categoryID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalog.MoveCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Move(c.Request.Context(), tenantID, categoryID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Activate godoc
// @Summary      Activate a category
// @Tags         admin-categories
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Security     BearerAuth
// @Router       /admin/categories/{id}/activate [post]
func (h *CategoryHandler) Activate(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	categoryID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Activate(c.Request.Context(), tenantID, categoryID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Deactivate godoc
// @Summary      Deactivate a category
// @Description  Hides the category and its subtree from the storefront
// @Tags         admin-categories
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=catalog.CategoryResponse}
// @Security     BearerAuth
// @Router       /admin/categories/{id}/deactivate [post]
func (h *CategoryHandler) Deactivate(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	categoryID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Deactivate(c.Request.Context(), tenantID, categoryID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

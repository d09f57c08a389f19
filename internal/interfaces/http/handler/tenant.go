package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// CreateTenantRequest represents a request to open a marketplace instance
// @Description Marketplace instance creation request
type CreateTenantRequest struct {
	Code     string `json:"code" binding:"required,min=2,max=50,alphanum" example:"amber"`
	Name     string `json:"name" binding:"required,min=1,max=200" example:"Amber Market"`
	Currency string `json:"currency" binding:"omitempty,currency" example:"EUR"`
	Country  string `json:"country" binding:"omitempty,country" example:"PL"`
	Domain   string `json:"domain" binding:"omitempty,fqdn,max=200"`
}

// TenantHandler handles marketplace instance management
type TenantHandler struct {
	BaseHandler
	tenantService *identity.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *identity.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// Create godoc
// @Summary      Create a marketplace instance
// @Tags         admin-tenants
// @Accept       json
// @Produce      json
// @Param        request body CreateTenantRequest true "Tenant creation request"
// @Success      201 {object} dto.Response{data=identity.TenantInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), identity.CreateTenantInput{
		Code:     req.Code,
		Name:     req.Name,
		Currency: req.Currency,
		Country:  req.Country,
		Domain:   req.Domain,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// List godoc
// @Summary      List marketplace instances
// @Tags         admin-tenants
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identity.TenantInfo}
// @Security     BearerAuth
// @Router       /admin/tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.tenantService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenants)
}

// GetByID godoc
// @Summary      Marketplace instance details
// @Tags         admin-tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} dto.Response{data=identity.TenantInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/tenants/{id} [get]
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Suspend godoc
// @Summary      Suspend a marketplace instance
// @Description  Requests naming a suspended tenant are rejected
// @Tags         admin-tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} dto.Response{data=identity.TenantInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/tenants/{id}/suspend [post]
func (h *TenantHandler) Suspend(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.Suspend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Activate godoc
// @Summary      Reactivate a marketplace instance
// @Tags         admin-tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} dto.Response{data=identity.TenantInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/tenants/{id}/activate [post]
func (h *TenantHandler) Activate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/privacy"
	"github.com/gin-gonic/gin"
)

// PrivacyHandler handles data export and erasure requests
type PrivacyHandler struct {
	BaseHandler
	privacy *privacy.Service
}

// NewPrivacyHandler creates a new privacy handler
func NewPrivacyHandler(svc *privacy.Service) *PrivacyHandler {
	return &PrivacyHandler{privacy: svc}
}

// Request godoc
// @Summary      Request an export or erasure of my data
// @Description  Requests are processed in the background. A completed export carries a download link.
// @Tags         privacy
// @Accept       json
// @Produce      json
// @Param        request body privacy.CreateRequest true "Request type"
// @Success      201 {object} dto.Response{data=privacy.RequestResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /privacy/requests [post]
func (h *PrivacyHandler) Request(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req privacy.CreateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.privacy.Request(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListMine godoc
// @Summary      My data requests
// @Tags         privacy
// @Produce      json
// @Success      200 {object} dto.Response{data=[]privacy.RequestResponse}
// @Security     BearerAuth
// @Router       /privacy/requests [get]
func (h *PrivacyHandler) ListMine(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	resp, err := h.privacy.ListForUser(c.Request.Context(), tenantID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get godoc
// @Summary      Data request details
// @Tags         privacy
// @Produce      json
// @Param        id path string true "Request ID"
// @Success      200 {object} dto.Response{data=privacy.RequestResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /privacy/requests/{id} [get]
func (h *PrivacyHandler) Get(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.privacy.Get(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      All data requests
// @Tags         admin-privacy
// @Produce      json
// @Param        status query string false "Request status"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]privacy.RequestResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/privacy/requests [get]
func (h *PrivacyHandler) List(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter privacy.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.privacy.List(c.Request.Context(), tenantID, filter, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Process godoc
// @Summary      Process a pending request now
// @Tags         admin-privacy
// @Produce      json
// @Param        id path string true "Request ID"
// @Success      200 {object} dto.Response{data=privacy.RequestResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/privacy/requests/{id}/process [post]
func (h *PrivacyHandler) Process(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.privacy.Process(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

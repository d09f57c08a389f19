package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/audit"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the audit trail to administrators
type AuditHandler struct {
	BaseHandler
	audit *audit.Service
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(svc *audit.Service) *AuditHandler {
	return &AuditHandler{audit: svc}
}

// Query godoc
// @Summary      Search the audit log
// @Tags         admin-audit
// @Produce      json
// @Param        actor_id query string false "User who acted"
// @Param        entity_type query string false "Entity type, e.g. order"
// @Param        entity_id query string false "Entity ID"
// @Param        action query string false "Action, e.g. order.placed"
// @Param        from query string false "RFC 3339 lower bound"
// @Param        to query string false "RFC 3339 upper bound"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]audit.EntryResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/audit [get]
func (h *AuditHandler) Query(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req audit.QueryRequest
	if !h.bindQuery(c, &req) {
		return
	}
	if req.ActorID, ok = h.queryUUID(c, "actor_id"); !ok {
		return
	}
	page, err := h.audit.Query(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/returns"
	"github.com/gin-gonic/gin"
)

// DisputeHandler handles disputes between buyers and sellers
type DisputeHandler struct {
	BaseHandler
	disputes *returns.DisputeService
}

// NewDisputeHandler creates a new dispute handler
func NewDisputeHandler(svc *returns.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: svc}
}

// Open godoc
// @Summary      Open a dispute
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Param        request body returns.OpenDisputeRequest true "Sub-order and reason"
// @Success      201 {object} dto.Response{data=returns.DisputeResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /disputes [post]
func (h *DisputeHandler) Open(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req returns.OpenDisputeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.disputes.Open(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      Disputes visible to the caller
// @Tags         disputes
// @Produce      json
// @Param        status query string false "Dispute status"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]returns.DisputeResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /disputes [get]
func (h *DisputeHandler) List(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter returns.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.disputes.List(c.Request.Context(), tenantID, filter, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Dispute with its message thread
// @Tags         disputes
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Success      200 {object} dto.Response{data=returns.DisputeResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /disputes/{id} [get]
func (h *DisputeHandler) Get(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.disputes.Get(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PostMessage godoc
// @Summary      Post to the dispute thread
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Param        request body returns.MessageRequest true "Message"
// @Success      200 {object} dto.Response{data=returns.DisputeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /disputes/{id}/messages [post]
func (h *DisputeHandler) PostMessage(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req returns.MessageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.disputes.PostMessage(c.Request.Context(), tenantID, id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Close godoc
// @Summary      Close a dispute
// @Description  The buyer may withdraw; an administrator may close without a decision
// @Tags         disputes
// @Accept       json
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Param        request body returns.CloseDisputeRequest false "Reason"
// @Success      200 {object} dto.Response{data=returns.DisputeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /disputes/{id}/close [post]
func (h *DisputeHandler) Close(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req returns.CloseDisputeRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.disputes.Close(c.Request.Context(), tenantID, id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StartReview godoc
// @Summary      Take a dispute under review
// @Tags         admin-disputes
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Success      200 {object} dto.Response{data=returns.DisputeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/disputes/{id}/review [post]
func (h *DisputeHandler) StartReview(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.disputes.StartReview(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Resolve godoc
// @Summary      Resolve a dispute
// @Description  A decision in favour of the buyer refunds the disputed amount
// @Tags         admin-disputes
// @Accept       json
// @Produce      json
// @Param        id path string true "Dispute ID"
// @Param        request body returns.ResolveDisputeRequest true "Decision"
// @Success      200 {object} dto.Response{data=returns.DisputeResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/disputes/{id}/resolve [post]
func (h *DisputeHandler) Resolve(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req returns.ResolveDisputeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.disputes.Resolve(c.Request.Context(), tenantID, id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

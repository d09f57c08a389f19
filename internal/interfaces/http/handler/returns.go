package handler

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReturnHandler handles return requests. Buyers open them, the seller of the
// sub-order or an administrator decides.
type ReturnHandler struct {
	BaseHandler
	returns *returns.ReturnService
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(svc *returns.ReturnService) *ReturnHandler {
	return &ReturnHandler{returns: svc}
}

// Request godoc
// @Summary      Request a return
// @Description  Only delivered sub-orders inside the return window qualify
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body returns.CreateReturnRequest true "Sub-order, items and reason"
// @Success      201 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns [post]
func (h *ReturnHandler) Request(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req returns.CreateReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.returns.Request(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      Returns visible to the caller
// @Tags         returns
// @Produce      json
// @Param        status query string false "Return status"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]returns.ReturnResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter returns.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.returns.List(c.Request.Context(), tenantID, filter, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Return details
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/{id} [get]
func (h *ReturnHandler) Get(c *gin.Context) {
	h.act(c, h.returns.Get)
}

// Approve godoc
// @Summary      Approve a return
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID"
// @Param        request body returns.DecisionRequest false "Note"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/{id}/approve [post]
func (h *ReturnHandler) Approve(c *gin.Context) {
	h.decide(c, h.returns.Approve)
}

// Reject godoc
// @Summary      Reject a return
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Return ID"
// @Param        request body returns.DecisionRequest false "Note"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/{id}/reject [post]
func (h *ReturnHandler) Reject(c *gin.Context) {
	h.decide(c, h.returns.Reject)
}

// Receive godoc
// @Summary      Confirm the returned goods arrived
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/{id}/receive [post]
func (h *ReturnHandler) Receive(c *gin.Context) {
	h.act(c, h.returns.MarkReceived)
}

// Refund godoc
// @Summary      Refund a received return
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID"
// @Success      200 {object} dto.Response{data=returns.ReturnResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /returns/{id}/refund [post]
func (h *ReturnHandler) Refund(c *gin.Context) {
	h.act(c, h.returns.Refund)
}

func (h *ReturnHandler) act(c *gin.Context, apply func(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*returns.ReturnResponse, error)) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *ReturnHandler) decide(c *gin.Context, apply func(ctx context.Context, tenantID, id uuid.UUID, req returns.DecisionRequest, actor shared.Actor) (*returns.ReturnResponse, error)) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req returns.DecisionRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := apply(c.Request.Context(), tenantID, id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

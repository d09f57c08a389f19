package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/event"
	"github.com/gin-gonic/gin"
)

// OutboxHandler handles outbox management HTTP requests
type OutboxHandler struct {
	BaseHandler
	outboxService *event.OutboxService
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outboxService *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{
		outboxService: outboxService,
	}
}

// RequeueAllResponse reports how many dead messages were put back
type RequeueAllResponse struct {
	Requeued int64 `json:"requeued"`
}

// ListDead godoc
// @ID           listOutboxDead
// @Summary      List dead letter messages
// @Description  Messages that exhausted their delivery attempts
// @Tags         admin-outbox
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]event.OutboxMessageDTO,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/outbox/dead [get]
func (h *OutboxHandler) ListDead(c *gin.Context) {
	var filter event.OutboxFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.outboxService.ListDead(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getOutboxMessage
// @Summary      Get an outbox message
// @Tags         admin-outbox
// @Produce      json
// @Param        id path string true "Message ID" format(uuid)
// @Success      200 {object} dto.Response{data=event.OutboxMessageDTO}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/outbox/{id} [get]
func (h *OutboxHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	msg, err := h.outboxService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// Requeue godoc
// @ID           requeueOutboxMessage
// @Summary      Requeue a dead message
// @Description  Resets the attempts so the processor delivers it again
// @Tags         admin-outbox
// @Produce      json
// @Param        id path string true "Message ID" format(uuid)
// @Success      200 {object} dto.Response{data=event.OutboxMessageDTO}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/outbox/{id}/requeue [post]
func (h *OutboxHandler) Requeue(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	msg, err := h.outboxService.Requeue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// RequeueAll godoc
// @ID           requeueAllOutboxDead
// @Summary      Requeue every dead message
// @Tags         admin-outbox
// @Produce      json
// @Success      200 {object} dto.Response{data=RequeueAllResponse}
// @Security     BearerAuth
// @Router       /admin/outbox/dead/requeue [post]
func (h *OutboxHandler) RequeueAll(c *gin.Context) {
	n, err := h.outboxService.RequeueAllDead(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RequeueAllResponse{Requeued: n})
}

// Stats godoc
// @ID           getOutboxStats
// @Summary      Outbox statistics
// @Tags         admin-outbox
// @Produce      json
// @Success      200 {object} dto.Response{data=event.OutboxStatsDTO}
// @Security     BearerAuth
// @Router       /admin/outbox/stats [get]
func (h *OutboxHandler) Stats(c *gin.Context) {
	stats, err := h.outboxService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

package handler

import (
	featureflagapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/featureflag/dto"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// FeatureFlagHandler handles feature flag administration and evaluation
type FeatureFlagHandler struct {
	BaseHandler
	flagService       *featureflagapp.FlagService
	evaluationService *featureflagapp.EvaluationService
}

// NewFeatureFlagHandler creates a new FeatureFlagHandler
func NewFeatureFlagHandler(
	flagService *featureflagapp.FlagService,
	evaluationService *featureflagapp.EvaluationService,
) *FeatureFlagHandler {
	return &FeatureFlagHandler{
		flagService:       flagService,
		evaluationService: evaluationService,
	}
}

// ListFlags godoc
// @Summary      List feature flags
// @Tags         admin-feature-flags
// @Produce      json
// @Success      200 {object} dto.Response{data=[]dto.FlagResponse}
// @Security     BearerAuth
// @Router       /admin/feature-flags [get]
func (h *FeatureFlagHandler) ListFlags(c *gin.Context) {
	flags, err := h.flagService.ListFlags(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, flags)
}

// CreateFlag godoc
// @Summary      Create a feature flag
// @Tags         admin-feature-flags
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateFlagRequest true "Flag"
// @Success      201 {object} dto.Response{data=dto.FlagResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/feature-flags [post]
func (h *FeatureFlagHandler) CreateFlag(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req dto.CreateFlagRequest
	if !h.bindJSON(c, &req) {
		return
	}
	flag, err := h.flagService.CreateFlag(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, flag)
}

// GetFlag godoc
// @Summary      Feature flag details
// @Tags         admin-feature-flags
// @Produce      json
// @Param        key path string true "Flag key"
// @Success      200 {object} dto.Response{data=dto.FlagResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/feature-flags/{key} [get]
func (h *FeatureFlagHandler) GetFlag(c *gin.Context) {
	flag, err := h.flagService.GetFlag(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, flag)
}

// UpdateFlag godoc
// @Summary      Change targeting of a feature flag
// @Tags         admin-feature-flags
// @Accept       json
// @Produce      json
// @Param        key path string true "Flag key"
// @Param        request body dto.UpdateFlagRequest true "Targeting"
// @Success      200 {object} dto.Response{data=dto.FlagResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/feature-flags/{key} [put]
func (h *FeatureFlagHandler) UpdateFlag(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req dto.UpdateFlagRequest
	if !h.bindJSON(c, &req) {
		return
	}
	flag, err := h.flagService.UpdateFlag(c.Request.Context(), c.Param("key"), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, flag)
}

// ToggleFlag godoc
// @Summary      Switch a feature flag on or off
// @Tags         admin-feature-flags
// @Accept       json
// @Produce      json
// @Param        key path string true "Flag key"
// @Param        request body dto.ToggleFlagRequest true "Enabled"
// @Success      200 {object} dto.Response{data=dto.FlagResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/feature-flags/{key}/toggle [post]
func (h *FeatureFlagHandler) ToggleFlag(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req dto.ToggleFlagRequest
	if !h.bindJSON(c, &req) {
		return
	}
	flag, err := h.flagService.ToggleFlag(c.Request.Context(), c.Param("key"), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, flag)
}

// DeleteFlag godoc
// @Summary      Delete a feature flag
// @Tags         admin-feature-flags
// @Param        key path string true "Flag key"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/feature-flags/{key} [delete]
func (h *FeatureFlagHandler) DeleteFlag(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.flagService.DeleteFlag(c.Request.Context(), c.Param("key"), actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Evaluate godoc
// @Summary      Evaluate feature flags for the caller
// @Description  Without keys every flag is evaluated
// @Tags         feature-flags
// @Accept       json
// @Produce      json
// @Param        request body dto.EvaluateRequest false "Flag keys"
// @Success      200 {object} dto.Response{data=dto.EvaluationResponse}
// @Router       /feature-flags/evaluate [post]
func (h *FeatureFlagHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	results, err := h.evaluationService.EvaluateMany(c.Request.Context(), req.Keys, middleware.FlagContext(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.EvaluationResponse{Flags: results})
}

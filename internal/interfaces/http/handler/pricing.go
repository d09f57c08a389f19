package handler

import (
	"net/http"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/pricing"
	domainpricing "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/gin-gonic/gin"
)

// PricingHandler handles commission, VAT and shipping rules and promo codes
type PricingHandler struct {
	BaseHandler
	rules      *pricing.RuleService
	promotions *pricing.PromotionService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(rules *pricing.RuleService, promotions *pricing.PromotionService) *PricingHandler {
	return &PricingHandler{rules: rules, promotions: promotions}
}

// ruleKind reads the :kind path segment, writing 400 when it is unknown
func (h *PricingHandler) ruleKind(c *gin.Context) (domainpricing.RuleKind, bool) {
	switch kind := domainpricing.RuleKind(strings.ToUpper(c.Param("kind"))); kind {
	case domainpricing.RuleKindCommission, domainpricing.RuleKindVat, domainpricing.RuleKindShipping:
		return kind, true
	default:
		h.Error(c, http.StatusBadRequest, "INVALID_RULE_KIND", "Rule kind must be commission, vat or shipping")
		return "", false
	}
}

// ListRules godoc
// @Summary      List pricing rules of one kind
// @Tags         admin-pricing
// @Produce      json
// @Param        kind path string true "commission, vat or shipping"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pricing/rules/{kind} [get]
func (h *PricingHandler) ListRules(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	kind, ok := h.ruleKind(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		rules any
		err   error
	)
	switch kind {
	case domainpricing.RuleKindCommission:
		rules, err = h.rules.ListCommissionRules(ctx, tenantID)
	case domainpricing.RuleKindVat:
		rules, err = h.rules.ListVatRules(ctx, tenantID)
	default:
		rules, err = h.rules.ListShippingRules(ctx, tenantID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rules)
}

// CreateRule godoc
// @Summary      Create a pricing rule
// @Description  The body is a commission, VAT or shipping rule matching the kind
// @Tags         admin-pricing
// @Accept       json
// @Produce      json
// @Param        kind path string true "commission, vat or shipping"
// @Param        request body pricing.CommissionRuleRequest true "Rule"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pricing/rules/{kind} [post]
func (h *PricingHandler) CreateRule(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	kind, ok := h.ruleKind(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		rule any
		err  error
	)
	switch kind {
	case domainpricing.RuleKindCommission:
		var req pricing.CommissionRuleRequest
		if !h.bindJSON(c, &req) {
			return
		}
		rule, err = h.rules.CreateCommissionRule(ctx, tenantID, req, actor)
	case domainpricing.RuleKindVat:
		var req pricing.VatRuleRequest
		if !h.bindJSON(c, &req) {
			return
		}
		rule, err = h.rules.CreateVatRule(ctx, tenantID, req, actor)
	default:
		var req pricing.ShippingRuleRequest
		if !h.bindJSON(c, &req) {
			return
		}
		rule, err = h.rules.CreateShippingRule(ctx, tenantID, req, actor)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// UpdateRule godoc
// @Summary      Replace a pricing rule
// @Tags         admin-pricing
// @Accept       json
// @Produce      json
// @Param        kind path string true "commission, vat or shipping"
// @Param        id path string true "Rule ID"
// @Param        request body pricing.CommissionRuleRequest true "Rule"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pricing/rules/{kind}/{id} [put]
func (h *PricingHandler) UpdateRule(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	kind, ok := h.ruleKind(c)
	if !ok {
		return
	}
	ruleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		rule any
		err  error
	)
	switch kind {
	case domainpricing.RuleKindCommission:
		var req pricing.CommissionRuleRequest
		if !h.bindJSON(c, &req) {
			return
		}
		rule, err = h.rules.UpdateCommissionRule(ctx, tenantID, ruleID, req, actor)
	case domainpricing.RuleKindVat:
		var req pricing.VatRuleRequest
		if !h.bindJSON(c, &req) {
			return
		}
		rule, err = h.rules.UpdateVatRule(ctx, tenantID, ruleID, req, actor)
	default:
		var req pricing.ShippingRuleRequest
		if !h.bindJSON(c, &req) {
			return
		}
		rule, err = h.rules.UpdateShippingRule(ctx, tenantID, ruleID, req, actor)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// SetRuleActive godoc
// @Summary      Enable or disable a pricing rule
// @Tags         admin-pricing
// @Accept       json
// @Produce      json
// @Param        kind path string true "commission, vat or shipping"
// @Param        id path string true "Rule ID"
// @Param        request body pricing.SetRuleActiveRequest true "Active flag"
// @Success      200 {object} dto.Response{data=pricing.RuleResponse}
// @Security     BearerAuth
// @Router       /admin/pricing/rules/{kind}/{id}/active [put]
func (h *PricingHandler) SetRuleActive(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	kind, ok := h.ruleKind(c)
	if !ok {
		return
	}
	ruleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req pricing.SetRuleActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rule, err := h.rules.SetActive(c.Request.Context(), tenantID, kind, ruleID, *req.Active, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// DeleteRule godoc
// @Summary      Delete a pricing rule
// @Tags         admin-pricing
// @Param        kind path string true "commission, vat or shipping"
// @Param        id path string true "Rule ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pricing/rules/{kind}/{id} [delete]
func (h *PricingHandler) DeleteRule(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	kind, ok := h.ruleKind(c)
	if !ok {
		return
	}
	ruleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.rules.Delete(c.Request.Context(), tenantID, kind, ruleID, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPromotions godoc
// @Summary      List promo codes
// @Tags         admin-pricing
// @Produce      json
// @Param        search query string false "Search in code"
// @Param        active query bool false "Only active or inactive codes"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]pricing.PromotionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/promotions [get]
func (h *PricingHandler) ListPromotions(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	var filter pricing.PromotionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.promotions.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CreatePromotion godoc
// @Summary      Create a promo code
// @Tags         admin-pricing
// @Accept       json
// @Produce      json
// @Param        request body pricing.CreatePromotionRequest true "Promotion"
// @Success      201 {object} dto.Response{data=pricing.PromotionResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/promotions [post]
func (h *PricingHandler) CreatePromotion(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	var req pricing.CreatePromotionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.promotions.Create(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetPromotion godoc
// @Summary      Promo code details
// @Tags         admin-pricing
// @Produce      json
// @Param        id path string true "Promotion ID"
// @Success      200 {object} dto.Response{data=pricing.PromotionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/promotions/{id} [get]
func (h *PricingHandler) GetPromotion(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.promotions.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeactivatePromotion godoc
// @Summary      Deactivate a promo code
// @Tags         admin-pricing
// @Produce      json
// @Param        id path string true "Promotion ID"
// @Success      200 {object} dto.Response{data=pricing.PromotionResponse}
// @Security     BearerAuth
// @Router       /admin/promotions/{id}/deactivate [post]
func (h *PricingHandler) DeactivatePromotion(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.promotions.Deactivate(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

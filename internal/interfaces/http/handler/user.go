package handler

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/identity"
	domainIdentity "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// ListUsersQuery filters the admin user list
type ListUsersQuery struct {
	Role     string `form:"role" binding:"omitempty,oneof=BUYER SELLER ADMIN"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED ANONYMIZED"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UserHandler handles user administration
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List godoc
// @ID           listUsers
// @Summary      List users of the marketplace
// @Tags         admin-users
// @Produce      json
// @Param        role query string false "BUYER, SELLER or ADMIN"
// @Param        status query string false "ACTIVE, SUSPENDED or ANONYMIZED"
// @Param        search query string false "Search in email and display name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]identity.UserInfo]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	var q ListUsersQuery
	if !h.bindQuery(c, &q) {
		return
	}

	input := identity.ListUsersInput{
		TenantID: tenantID,
		Filter:   shared.Filter{Page: q.Page, PageSize: q.PageSize, Search: q.Search},
	}
	if q.Role != "" {
		role := shared.Role(q.Role)
		input.Role = &role
	}
	if q.Status != "" {
		status := domainIdentity.UserStatus(q.Status)
		input.Status = &status
	}

	page, err := h.userService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getUser
// @Summary      User details
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserInfo]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.requestScope(c)
	if !ok {
		return
	}
	userID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Suspend godoc
// @ID           suspendUser
// @Summary      Suspend a user
// @Description  Suspended users cannot log in and their tokens are revoked
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserInfo]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/users/{id}/suspend [post]
func (h *UserHandler) Suspend(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	userID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Suspend(c.Request.Context(), tenantID, userID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Reactivate godoc
// @ID           reactivateUser
// @Summary      Reactivate a suspended user
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserInfo]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/users/{id}/reactivate [post]
func (h *UserHandler) Reactivate(c *gin.Context) {
	tenantID, actor, ok := h.requestScope(c)
	if !ok {
		return
	}
	userID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Reactivate(c.Request.Context(), tenantID, userID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

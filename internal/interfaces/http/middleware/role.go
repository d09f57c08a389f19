package middleware

import (
	"net/http"
	"slices"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequireRole lets through authenticated actors holding one of roles
func RequireRole(roles ...shared.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorEnvelope(c, dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		if !slices.Contains(roles, actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				errorEnvelope(c, dto.ErrCodeForbidden, "Insufficient role for this operation"))
			return
		}
		c.Next()
	}
}

// RequireSeller lets through sellers whose token names their storefront
func RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorEnvelope(c, dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		if actor.Role != shared.RoleSeller || actor.SellerID == nil {
			c.AbortWithStatusJSON(http.StatusForbidden,
				errorEnvelope(c, "NOT_A_SELLER", "A seller account is required"))
			return
		}
		c.Next()
	}
}

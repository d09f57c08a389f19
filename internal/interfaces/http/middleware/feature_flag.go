package middleware

import (
	"context"
	"net/http"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// FlagEvaluator answers whether a flag is on for a caller
type FlagEvaluator interface {
	IsEnabled(ctx context.Context, key string, ec featureflag.EvalContext) bool
}

// FlagContext builds the evaluation context of the current request
func FlagContext(c *gin.Context) featureflag.EvalContext {
	var ec featureflag.EvalContext
	if tenantID, ok := GetTenantID(c); ok {
		ec.TenantID = tenantID
	}
	if actor, ok := GetActor(c); ok {
		ec.UserID = actor.UserID
		ec.Role = actor.Role
	}
	return ec
}

// RequireFeature answers 403 FEATURE_DISABLED when key is off for the caller
func RequireFeature(evaluator FlagEvaluator, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !evaluator.IsEnabled(c.Request.Context(), key, FlagContext(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				errorEnvelope(c, dto.ErrCodeFeatureOff, "Feature "+key+" is disabled"))
			return
		}
		c.Next()
	}
}

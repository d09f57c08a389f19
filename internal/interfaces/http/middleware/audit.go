package middleware

import (
	"context"
	"net/http"

	appaudit "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditRecorder stores one audited request
type AuditRecorder interface {
	RecordRequest(ctx context.Context, rec appaudit.RequestRecord)
}

// AdminAudit records every mutating request of the group it is mounted on,
// after the handler ran, with the final status. Reads are not audited.
func AdminAudit(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		tenantID, _ := GetTenantID(c)
		rec := appaudit.RequestRecord{
			TenantID:  tenantID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Route:     c.FullPath(),
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			RequestID: c.GetString(RequestIDKey),
		}
		if actor, ok := GetActor(c); ok {
			rec.ActorID = actor.UserID
			rec.ActorRole = string(actor.Role)
		} else {
			rec.ActorID = uuid.Nil
		}
		recorder.RecordRequest(c.Request.Context(), rec)
	}
}

package privacy

import (
	"time"

	auditapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/audit"
	orderapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	returnsapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CreateRequest asks for an export or an erasure of the caller's data
type CreateRequest struct {
	Type string `json:"type" binding:"required,oneof=EXPORT ERASURE"`
}

// ListFilter filters the admin request list
type ListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING PROCESSING COMPLETED REJECTED FAILED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RequestResponse is one data request
type RequestResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requested_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	Attempts        int        `json:"attempts"`
	DownloadURL     string     `json:"download_url,omitempty"`
	DownloadExpires *time.Time `json:"download_expires_at,omitempty"`
}

// ToRequestResponse converts a domain request
func ToRequestResponse(r *privacy.DataRequest) RequestResponse {
	return RequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		Type:            string(r.Type),
		Status:          string(r.Status),
		RequestedAt:     r.RequestedAt,
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
		RejectionReason: r.RejectionReason,
		FailureReason:   r.FailureReason,
		Attempts:        r.Attempts,
	}
}

// ExportProfile is the account section of an export document
type ExportProfile struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ExportDocument is the JSON document handed to the user on export
type ExportDocument struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	Profile     ExportProfile                `json:"profile"`
	Addresses   []valueobject.Address        `json:"addresses"`
	Orders      []orderapp.OrderResponse     `json:"orders"`
	Returns     []returnsapp.ReturnResponse  `json:"returns"`
	Disputes    []returnsapp.DisputeResponse `json:"disputes"`
	AuditTrail  []auditapp.EntryResponse     `json:"audit_trail"`
}

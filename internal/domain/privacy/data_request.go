package privacy

import (
	"fmt"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// RequestType is what the user asked for
type RequestType string

const (
	RequestExport  RequestType = "EXPORT"
	RequestErasure RequestType = "ERASURE"
)

func (t RequestType) IsValid() bool {
	return t == RequestExport || t == RequestErasure
}

// RequestStatus is the processing state of a data request
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusProcessing RequestStatus = "PROCESSING"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusRejected   RequestStatus = "REJECTED"
	StatusFailed     RequestStatus = "FAILED"
)

// IsTerminal reports a finished request
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusFailed
}

// DataRequest is a user's GDPR export or erasure request
type DataRequest struct {
	shared.TenantAggregateRoot
	UserID          uuid.UUID
	Type            RequestType
	Status          RequestStatus
	RequestedAt     time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	ResultKey       string
	RejectionReason string
	FailureReason   string
	Attempts        int
}

// NewDataRequest creates a pending request
func NewDataRequest(tenantID, userID uuid.UUID, typ RequestType) (*DataRequest, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST_TYPE", "Request type must be EXPORT or ERASURE")
	}
	r := &DataRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Type:                typ,
		Status:              StatusPending,
	}
	r.RequestedAt = r.CreatedAt
	r.AddDomainEvent(NewDataRequestEvent(r, EventTypeDataRequestCreated))
	return r, nil
}

// ExportKey is the object key of an export document
func ExportKey(tenantID, userID, requestID uuid.UUID) string {
	return fmt.Sprintf("exports/%s/%s/%s.json", tenantID, userID, requestID)
}

// Start claims the request for processing
func (r *DataRequest) Start(at time.Time) error {
	if r.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending requests can be processed")
	}
	r.Status = StatusProcessing
	r.StartedAt = &at
	r.Attempts++
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Complete finishes the request; exports carry the stored object key
func (r *DataRequest) Complete(resultKey string, at time.Time) error {
	if r.Status != StatusProcessing {
		return shared.NewDomainError("INVALID_STATE", "Request is not being processed")
	}
	if r.Type == RequestExport && strings.TrimSpace(resultKey) == "" {
		return shared.NewDomainError("INVALID_RESULT", "Export requires a result key")
	}
	r.ResultKey = resultKey
	r.finish(StatusCompleted, at, EventTypeDataRequestCompleted)
	return nil
}

// Reject ends the request without acting on it
func (r *DataRequest) Reject(reason string, at time.Time) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Request is already finished")
	}
	r.RejectionReason = strings.TrimSpace(reason)
	r.finish(StatusRejected, at, EventTypeDataRequestRejected)
	return nil
}

// Fail records a processing error
func (r *DataRequest) Fail(reason string, at time.Time) error {
	if r.Status != StatusProcessing {
		return shared.NewDomainError("INVALID_STATE", "Request is not being processed")
	}
	r.FailureReason = reason
	r.finish(StatusFailed, at, EventTypeDataRequestFailed)
	return nil
}

// Retry puts a failed request back in the queue
func (r *DataRequest) Retry() error {
	if r.Status != StatusFailed {
		return shared.NewDomainError("INVALID_STATE", "Only failed requests can be retried")
	}
	r.Status = StatusPending
	r.FailureReason = ""
	r.CompletedAt = nil
	r.Touch()
	r.IncrementVersion()
	return nil
}

func (r *DataRequest) finish(status RequestStatus, at time.Time, eventType string) {
	r.Status = status
	r.CompletedAt = &at
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewDataRequestEvent(r, eventType))
}

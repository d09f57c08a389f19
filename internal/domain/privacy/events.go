package privacy

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeDataRequest = "DataRequest"

const (
	EventTypeDataRequestCreated   = "DataRequestCreated"
	EventTypeDataRequestCompleted = "DataRequestCompleted"
	EventTypeDataRequestRejected  = "DataRequestRejected"
	EventTypeDataRequestFailed    = "DataRequestFailed"
)

// DataRequestEvent reports the lifecycle of a data request. Only the user ID
// is carried so the audit trail survives erasure.
type DataRequestEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID     `json:"user_id"`
	Type   RequestType   `json:"request_type"`
	Status RequestStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

func NewDataRequestEvent(r *DataRequest, eventType string) *DataRequestEvent {
	reason := r.RejectionReason
	if r.Status == StatusFailed {
		reason = r.FailureReason
	}
	return &DataRequestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeDataRequest, r.ID, r.TenantID).WithActor(r.UserID),
		UserID:          r.UserID,
		Type:            r.Type,
		Status:          r.Status,
		Reason:          reason,
	}
}

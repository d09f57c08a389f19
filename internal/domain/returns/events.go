package returns

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const (
	AggregateTypeReturn  = "ReturnRequest"
	AggregateTypeDispute = "Dispute"
)

const (
	EventTypeReturnRequested      = "ReturnRequested"
	EventTypeReturnStatusChanged  = "ReturnStatusChanged"
	EventTypeDisputeOpened        = "DisputeOpened"
	EventTypeDisputeMessagePosted = "DisputeMessagePosted"
	EventTypeDisputeStatusChanged = "DisputeStatusChanged"
)

// ReturnRequestedEvent is raised when a buyer asks to return items
type ReturnRequestedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID         `json:"order_id"`
	SubOrderID   uuid.UUID         `json:"sub_order_id"`
	SellerID     uuid.UUID         `json:"seller_id"`
	RefundAmount valueobject.Money `json:"refund_amount"`
	Reason       string            `json:"reason"`
}

func NewReturnRequestedEvent(r *ReturnRequest) *ReturnRequestedEvent {
	return &ReturnRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequested, AggregateTypeReturn, r.ID, r.TenantID).WithActor(r.BuyerID),
		OrderID:         r.OrderID,
		SubOrderID:      r.SubOrderID,
		SellerID:        r.SellerID,
		RefundAmount:    r.RefundAmount,
		Reason:          r.Reason,
	}
}

// ReturnStatusChangedEvent is raised on every workflow step
type ReturnStatusChangedEvent struct {
	shared.BaseDomainEvent
	SubOrderID uuid.UUID    `json:"sub_order_id"`
	OldStatus  ReturnStatus `json:"old_status"`
	NewStatus  ReturnStatus `json:"new_status"`
	Note       string       `json:"note,omitempty"`
}

func NewReturnStatusChangedEvent(r *ReturnRequest, from ReturnStatus, actor shared.Actor) *ReturnStatusChangedEvent {
	return &ReturnStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnStatusChanged, AggregateTypeReturn, r.ID, r.TenantID).WithActor(actor.UserID),
		SubOrderID:      r.SubOrderID,
		OldStatus:       from,
		NewStatus:       r.Status,
		Note:            r.DecisionNote,
	}
}

// DisputeOpenedEvent is raised when a buyer opens a dispute
type DisputeOpenedEvent struct {
	shared.BaseDomainEvent
	SubOrderID uuid.UUID  `json:"sub_order_id"`
	SellerID   uuid.UUID  `json:"seller_id"`
	ReturnID   *uuid.UUID `json:"return_id,omitempty"`
	Reason     string     `json:"reason"`
}

func NewDisputeOpenedEvent(d *Dispute) *DisputeOpenedEvent {
	return &DisputeOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeOpened, AggregateTypeDispute, d.ID, d.TenantID).WithActor(d.BuyerID),
		SubOrderID:      d.SubOrderID,
		SellerID:        d.SellerID,
		ReturnID:        d.ReturnID,
		Reason:          d.Reason,
	}
}

// DisputeMessagePostedEvent is raised for each message in the thread
type DisputeMessagePostedEvent struct {
	shared.BaseDomainEvent
	MessageID  uuid.UUID   `json:"message_id"`
	AuthorRole shared.Role `json:"author_role"`
}

func NewDisputeMessagePostedEvent(d *Dispute, m Message) *DisputeMessagePostedEvent {
	return &DisputeMessagePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeMessagePosted, AggregateTypeDispute, d.ID, d.TenantID).WithActor(m.AuthorID),
		MessageID:       m.ID,
		AuthorRole:      m.AuthorRole,
	}
}

// DisputeStatusChangedEvent is raised on review, resolution and closing
type DisputeStatusChangedEvent struct {
	shared.BaseDomainEvent
	SubOrderID   uuid.UUID         `json:"sub_order_id"`
	OldStatus    DisputeStatus     `json:"old_status"`
	NewStatus    DisputeStatus     `json:"new_status"`
	Note         string            `json:"note,omitempty"`
	RefundAmount valueobject.Money `json:"refund_amount"`
}

func NewDisputeStatusChangedEvent(d *Dispute, from DisputeStatus, actor shared.Actor, note string) *DisputeStatusChangedEvent {
	return &DisputeStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeStatusChanged, AggregateTypeDispute, d.ID, d.TenantID).WithActor(actor.UserID),
		SubOrderID:      d.SubOrderID,
		OldStatus:       from,
		NewStatus:       d.Status,
		Note:            note,
		RefundAmount:    d.RefundAmount,
	}
}

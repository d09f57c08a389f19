package returns

import (
	"sort"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// DefaultReturnWindow is how long after delivery a return may be requested
const DefaultReturnWindow = 14 * 24 * time.Hour

// ReturnStatus is the state of a return request
type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "REQUESTED"
	ReturnApproved  ReturnStatus = "APPROVED"
	ReturnRejected  ReturnStatus = "REJECTED"
	ReturnReceived  ReturnStatus = "RECEIVED"
	ReturnRefunded  ReturnStatus = "REFUNDED"
)

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnRequested: {ReturnApproved, ReturnRejected},
	ReturnApproved:  {ReturnReceived},
	ReturnReceived:  {ReturnRefunded},
}

// CanTransitionTo checks the return workflow
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	for _, t := range returnTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsOpen reports a return still holding item quantities
func (s ReturnStatus) IsOpen() bool {
	return s == ReturnRequested || s == ReturnApproved || s == ReturnReceived
}

// ItemQuantity is a requested quantity of one order item
type ItemQuantity struct {
	OrderItemID uuid.UUID
	Quantity    int
}

// ReturnItem is a returned order item with its refund share
type ReturnItem struct {
	OrderItemID uuid.UUID
	SKU         string
	Name        string
	Quantity    int
	Refund      valueobject.Money
}

// ReturnRequest is a buyer's request to send items of a delivered sub-order back
type ReturnRequest struct {
	shared.TenantAggregateRoot
	OrderID        uuid.UUID
	SubOrderID     uuid.UUID
	SubOrderNumber string
	SellerID       uuid.UUID
	BuyerID        uuid.UUID
	Items          []ReturnItem
	Reason         string
	RefundAmount   valueobject.Money
	Status         ReturnStatus
	DecisionNote   string
	DecidedBy      *uuid.UUID
	ApprovedAt     *time.Time
	RejectedAt     *time.Time
	ReceivedAt     *time.Time
	RefundedAt     *time.Time
}

// NewReturnRequest validates a return against the sub-order. held holds the
// quantities already claimed by other open returns for the same sub-order.
func NewReturnRequest(o *order.Order, subOrderID uuid.UUID, buyer shared.Actor, items []ItemQuantity, reason string, window time.Duration, held map[uuid.UUID]int, at time.Time) (*ReturnRequest, error) {
	if buyer.UserID != o.BuyerID {
		return nil, shared.ErrForbidden
	}
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return nil, err
	}
	if sub.Status != order.StatusDelivered || sub.DeliveredAt == nil {
		return nil, shared.NewDomainError("NOT_RETURNABLE", "Only delivered sub-orders can be returned")
	}
	if window <= 0 {
		window = DefaultReturnWindow
	}
	if at.After(sub.DeliveredAt.Add(window)) {
		return nil, shared.NewDomainError("RETURN_WINDOW_CLOSED", "The return window for this order has closed")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Return reason is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "At least one item must be returned")
	}

	merged := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for _, iq := range items {
		if iq.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
		}
		if _, seen := merged[iq.OrderItemID]; !seen {
			ids = append(ids, iq.OrderItemID)
		}
		merged[iq.OrderItemID] += iq.Quantity
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })

	r := &ReturnRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(o.TenantID),
		OrderID:             o.ID,
		SubOrderID:          sub.ID,
		SubOrderNumber:      sub.Number,
		SellerID:            sub.SellerID,
		BuyerID:             o.BuyerID,
		Reason:              reason,
		RefundAmount:        valueobject.Zero(o.Currency),
		Status:              ReturnRequested,
	}
	for _, id := range ids {
		item, ok := sub.Item(id)
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Order item not found")
		}
		qty := merged[id]
		if qty > item.Returnable()-held[id] {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity exceeds what can be returned for "+item.SKU)
		}
		refund := item.RefundAfter(item.ReturnedQty+held[id], qty)
		r.Items = append(r.Items, ReturnItem{
			OrderItemID: id,
			SKU:         item.SKU,
			Name:        item.Name,
			Quantity:    qty,
			Refund:      refund,
		})
		r.RefundAmount = r.RefundAmount.MustAdd(refund)
	}
	r.AddDomainEvent(NewReturnRequestedEvent(r))
	return r, nil
}

// Quantities maps order items to returned quantities
func (r *ReturnRequest) Quantities() map[uuid.UUID]int {
	q := make(map[uuid.UUID]int, len(r.Items))
	for _, it := range r.Items {
		q[it.OrderItemID] += it.Quantity
	}
	return q
}

// Approve accepts the return; the seller or an admin decides
func (r *ReturnRequest) Approve(actor shared.Actor, note string) error {
	if err := r.checkSeller(actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := r.transition(ReturnApproved, actor, note); err != nil {
		return err
	}
	r.ApprovedAt = &now
	return nil
}

// Reject declines the return with a reason the buyer can dispute
func (r *ReturnRequest) Reject(actor shared.Actor, reason string) error {
	if err := r.checkSeller(actor); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	now := time.Now().UTC()
	if err := r.transition(ReturnRejected, actor, reason); err != nil {
		return err
	}
	r.RejectedAt = &now
	return nil
}

// MarkReceived confirms the parcel arrived back at the seller
func (r *ReturnRequest) MarkReceived(actor shared.Actor) error {
	if err := r.checkSeller(actor); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := r.transition(ReturnReceived, actor, ""); err != nil {
		return err
	}
	r.ReceivedAt = &now
	return nil
}

// CheckRefundable verifies the return is ready for a refund
func (r *ReturnRequest) CheckRefundable() error {
	if !r.Status.CanTransitionTo(ReturnRefunded) {
		return shared.NewDomainError("INVALID_STATE", "Return must be received before it is refunded")
	}
	return nil
}

// Reprice sets the refund shares from the units the sub-order has booked as
// returned so far. Returns settled in a different order than they were
// requested still add up to each line's net plus VAT.
func (r *ReturnRequest) Reprice(sub *order.SubOrder) error {
	if sub.ID != r.SubOrderID {
		return shared.NewDomainError("NOT_FOUND", "Sub-order not found")
	}
	total := valueobject.Zero(r.RefundAmount.Currency())
	for i := range r.Items {
		item, ok := sub.Item(r.Items[i].OrderItemID)
		if !ok {
			return shared.NewDomainError("NOT_FOUND", "Order item not found")
		}
		if r.Items[i].Quantity > item.Returnable() {
			return shared.NewDomainError("INVALID_QUANTITY", "Return quantity exceeds what can be returned for "+item.SKU)
		}
		r.Items[i].Refund = item.RefundFor(r.Items[i].Quantity)
		total = total.MustAdd(r.Items[i].Refund)
	}
	r.RefundAmount = total
	return nil
}

// MarkRefunded records that the refund went through the provider
func (r *ReturnRequest) MarkRefunded(actor shared.Actor, at time.Time) error {
	if !actor.IsPrivileged() && !actor.OwnsStore(r.SellerID) {
		return shared.ErrForbidden
	}
	if err := r.transition(ReturnRefunded, actor, ""); err != nil {
		return err
	}
	r.RefundedAt = &at
	return nil
}

// IsVisibleTo reports whether the actor may read the return
func (r *ReturnRequest) IsVisibleTo(actor shared.Actor) bool {
	return actor.IsPrivileged() || actor.UserID == r.BuyerID || actor.OwnsStore(r.SellerID)
}

func (r *ReturnRequest) checkSeller(actor shared.Actor) error {
	if actor.IsPrivileged() || actor.OwnsStore(r.SellerID) {
		return nil
	}
	return shared.ErrForbidden
}

func (r *ReturnRequest) transition(target ReturnStatus, actor shared.Actor, note string) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", "Cannot change return status from "+string(r.Status)+" to "+string(target))
	}
	from := r.Status
	r.Status = target
	if note != "" {
		r.DecisionNote = note
	}
	if target == ReturnApproved || target == ReturnRejected {
		id := actor.UserID
		r.DecidedBy = &id
	}
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewReturnStatusChangedEvent(r, from, actor))
	return nil
}

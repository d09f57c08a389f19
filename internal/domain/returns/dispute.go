package returns

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// DefaultDisputeAutoClose is how long a dispute may sit untouched
const DefaultDisputeAutoClose = 30 * 24 * time.Hour

const maxMessageLength = 4000

// DisputeStatus is the state of a dispute
type DisputeStatus string

const (
	DisputeOpen           DisputeStatus = "OPEN"
	DisputeUnderReview    DisputeStatus = "UNDER_REVIEW"
	DisputeResolvedBuyer  DisputeStatus = "RESOLVED_BUYER"
	DisputeResolvedSeller DisputeStatus = "RESOLVED_SELLER"
	DisputeClosed         DisputeStatus = "CLOSED"
)

// IsActive reports a dispute that has not been resolved or closed
func (s DisputeStatus) IsActive() bool {
	return s == DisputeOpen || s == DisputeUnderReview
}

// Message is one entry of the dispute thread
type Message struct {
	ID         uuid.UUID
	AuthorID   uuid.UUID
	AuthorRole shared.Role
	Body       string
	CreatedAt  time.Time
}

// Dispute is a buyer complaint about a sub-order mediated by an admin
type Dispute struct {
	shared.TenantAggregateRoot
	OrderID        uuid.UUID
	SubOrderID     uuid.UUID
	SellerID       uuid.UUID
	BuyerID        uuid.UUID
	ReturnID       *uuid.UUID
	Reason         string
	Status         DisputeStatus
	Messages       []Message
	Resolution     string
	ResolvedBy     *uuid.UUID
	ResolvedAt     *time.Time
	RefundAmount   valueobject.Money
	LastActivityAt time.Time
}

// OpenDispute starts a dispute on a sub-order. A linked return must be a
// rejected return of the same sub-order.
func OpenDispute(o *order.Order, subOrderID uuid.UUID, buyer shared.Actor, reason string, rejected *ReturnRequest) (*Dispute, error) {
	if buyer.UserID != o.BuyerID {
		return nil, shared.ErrForbidden
	}
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return nil, err
	}
	if sub.Status == order.StatusPendingPayment {
		return nil, shared.NewDomainError("NOT_DISPUTABLE", "Unpaid orders cannot be disputed")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Dispute reason is required")
	}
	d := &Dispute{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(o.TenantID),
		OrderID:             o.ID,
		SubOrderID:          sub.ID,
		SellerID:            sub.SellerID,
		BuyerID:             o.BuyerID,
		Reason:              reason,
		Status:              DisputeOpen,
		RefundAmount:        valueobject.Zero(o.Currency),
	}
	if rejected != nil {
		if rejected.SubOrderID != sub.ID || rejected.Status != ReturnRejected {
			return nil, shared.NewDomainError("INVALID_RETURN", "Only a rejected return of this sub-order can be disputed")
		}
		id := rejected.ID
		d.ReturnID = &id
	}
	d.LastActivityAt = d.CreatedAt
	d.AddDomainEvent(NewDisputeOpenedEvent(d))
	return d, nil
}

// IsParticipant reports buyer, owning seller or privileged actors
func (d *Dispute) IsParticipant(actor shared.Actor) bool {
	return actor.IsPrivileged() || actor.UserID == d.BuyerID || actor.OwnsStore(d.SellerID)
}

// PostMessage appends to the thread
func (d *Dispute) PostMessage(actor shared.Actor, body string) (*Message, error) {
	if !d.IsParticipant(actor) {
		return nil, shared.ErrForbidden
	}
	if !d.Status.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Dispute is no longer active")
	}
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > maxMessageLength {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message must be 1-4000 characters")
	}
	now := time.Now().UTC()
	d.Messages = append(d.Messages, Message{
		ID:         uuid.New(),
		AuthorID:   actor.UserID,
		AuthorRole: actor.Role,
		Body:       body,
		CreatedAt:  now,
	})
	d.LastActivityAt = now
	d.Touch()
	d.IncrementVersion()
	msg := d.Messages[len(d.Messages)-1]
	d.AddDomainEvent(NewDisputeMessagePostedEvent(d, msg))
	return &msg, nil
}

// StartReview moves the dispute to an admin
func (d *Dispute) StartReview(actor shared.Actor) error {
	if actor.Role != shared.RoleAdmin {
		return shared.ErrForbidden
	}
	if d.Status != DisputeOpen {
		return shared.NewDomainError("INVALID_STATE", "Only open disputes can be taken into review")
	}
	return d.transition(DisputeUnderReview, actor, "")
}

// Resolve settles the dispute. refund is the amount returned to the buyer
// when resolved in their favour.
func (d *Dispute) Resolve(actor shared.Actor, inFavourOfBuyer bool, resolution string, refund valueobject.Money) error {
	if actor.Role != shared.RoleAdmin {
		return shared.ErrForbidden
	}
	if !d.Status.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Dispute is already settled")
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return shared.NewDomainError("INVALID_RESOLUTION", "Resolution note is required")
	}
	target := DisputeResolvedSeller
	if inFavourOfBuyer {
		target = DisputeResolvedBuyer
		d.RefundAmount = refund
	}
	now := time.Now().UTC()
	id := actor.UserID
	d.Resolution = resolution
	d.ResolvedBy = &id
	d.ResolvedAt = &now
	return d.transition(target, actor, resolution)
}

// Close ends an unresolved dispute: the buyer withdraws it, an admin closes
// it, or the auto-close job finds it stale
func (d *Dispute) Close(actor shared.Actor, reason string) error {
	if !actor.IsPrivileged() && actor.UserID != d.BuyerID {
		return shared.ErrForbidden
	}
	if !d.Status.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Dispute is already settled")
	}
	d.Resolution = strings.TrimSpace(reason)
	return d.transition(DisputeClosed, actor, d.Resolution)
}

// IsStale reports no activity for longer than idle
func (d *Dispute) IsStale(at time.Time, idle time.Duration) bool {
	return d.Status.IsActive() && at.Sub(d.LastActivityAt) >= idle
}

func (d *Dispute) transition(target DisputeStatus, actor shared.Actor, note string) error {
	from := d.Status
	d.Status = target
	d.LastActivityAt = time.Now().UTC()
	d.Touch()
	d.IncrementVersion()
	d.AddDomainEvent(NewDisputeStatusChangedEvent(d, from, actor, note))
	return nil
}

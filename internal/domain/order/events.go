package order

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeOrder is the aggregate type for orders
const AggregateTypeOrder = "Order"

// Order event types
const (
	EventTypeOrderPlaced           = "OrderPlaced"
	EventTypeOrderPaid             = "OrderPaid"
	EventTypeOrderStatusChanged    = "OrderStatusChanged"
	EventTypeSubOrderStatusChanged = "SubOrderStatusChanged"
	EventTypeSubOrderShipped       = "SubOrderShipped"
)

// OrderPlacedEvent is raised once checkout has created the order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	Number    string      `json:"number"`
	BuyerID   uuid.UUID   `json:"buyer_id"`
	Total     string      `json:"total"`
	Currency  string      `json:"currency"`
	SellerIDs []uuid.UUID `json:"seller_ids"`
}

func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID, o.TenantID).WithActor(o.BuyerID),
		Number:          o.Number,
		BuyerID:         o.BuyerID,
		Total:           o.Total.Amount().StringFixed(2),
		Currency:        string(o.Currency),
		SellerIDs:       o.SellerIDs(),
	}
}

// OrderPaidEvent is raised when the payment for an order is captured
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	Number    string    `json:"number"`
	PaymentID uuid.UUID `json:"payment_id"`
	Total     string    `json:"total"`
}

func NewOrderPaidEvent(o *Order, paymentID uuid.UUID) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID, o.TenantID),
		Number:          o.Number,
		PaymentID:       paymentID,
		Total:           o.Total.Amount().StringFixed(2),
	}
}

// OrderStatusChangedEvent is raised when the aggregated parent status changes
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	Number     string    `json:"number"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
}

func NewOrderStatusChangedEvent(o *Order, from Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID, o.TenantID),
		Number:          o.Number,
		BuyerID:         o.BuyerID,
		FromStatus:      from,
		ToStatus:        o.Status,
	}
}

// SubOrderStatusChangedEvent is raised on every sub-order transition
type SubOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	SubOrderID     uuid.UUID   `json:"sub_order_id"`
	SubOrderNumber string      `json:"sub_order_number"`
	SellerID       uuid.UUID   `json:"seller_id"`
	FromStatus     Status      `json:"from_status"`
	ToStatus       Status      `json:"to_status"`
	ActorRole      shared.Role `json:"actor_role"`
	Reason         string      `json:"reason,omitempty"`
}

func NewSubOrderStatusChangedEvent(o *Order, sub *SubOrder, from Status, actor shared.Actor, reason string) *SubOrderStatusChangedEvent {
	return &SubOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubOrderStatusChanged, AggregateTypeOrder, o.ID, o.TenantID).WithActor(actor.UserID),
		SubOrderID:      sub.ID,
		SubOrderNumber:  sub.Number,
		SellerID:        sub.SellerID,
		FromStatus:      from,
		ToStatus:        sub.Status,
		ActorRole:       actor.Role,
		Reason:          reason,
	}
}

// SubOrderShippedEvent triggers carrier booking when no tracking number was given
type SubOrderShippedEvent struct {
	shared.BaseDomainEvent
	SubOrderID     uuid.UUID `json:"sub_order_id"`
	SubOrderNumber string    `json:"sub_order_number"`
	SellerID       uuid.UUID `json:"seller_id"`
	Carrier        string    `json:"carrier"`
	Method         string    `json:"method"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
}

func NewSubOrderShippedEvent(o *Order, sub *SubOrder) *SubOrderShippedEvent {
	return &SubOrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubOrderShipped, AggregateTypeOrder, o.ID, o.TenantID),
		SubOrderID:      sub.ID,
		SubOrderNumber:  sub.Number,
		SellerID:        sub.SellerID,
		Carrier:         sub.Carrier,
		Method:          string(sub.ShippingMethod),
		TrackingNumber:  sub.TrackingNumber,
	}
}

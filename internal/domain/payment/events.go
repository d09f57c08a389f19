package payment

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const AggregateTypePayment = "Payment"

const (
	EventTypePaymentSucceeded = "PaymentSucceeded"
	EventTypePaymentFailed    = "PaymentFailed"
	EventTypePaymentRefunded  = "PaymentRefunded"
)

// PaymentSucceededEvent is raised when the provider confirms capture
type PaymentSucceededEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID         `json:"order_id"`
	Amount      valueobject.Money `json:"amount"`
	Provider    string            `json:"provider"`
	ProviderRef string            `json:"provider_ref"`
}

func NewPaymentSucceededEvent(p *Payment) *PaymentSucceededEvent {
	return &PaymentSucceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentSucceeded, AggregateTypePayment, p.ID, p.TenantID),
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Provider:        p.Provider,
		ProviderRef:     p.ProviderRef,
	}
}

// PaymentFailedEvent is raised when the buyer's payment is declined
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason"`
}

func NewPaymentFailedEvent(p *Payment) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, AggregateTypePayment, p.ID, p.TenantID),
		OrderID:         p.OrderID,
		Reason:          p.FailureReason,
	}
}

// PaymentRefundedEvent is raised for every refund
type PaymentRefundedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID         `json:"order_id"`
	Amount    valueobject.Money `json:"amount"`
	Total     valueobject.Money `json:"total_refunded"`
	RefundRef string            `json:"refund_ref"`
}

func NewPaymentRefundedEvent(p *Payment, amount valueobject.Money, refundRef string) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRefunded, AggregateTypePayment, p.ID, p.TenantID),
		OrderID:         p.OrderID,
		Amount:          amount,
		Total:           p.RefundedAmount,
		RefundRef:       refundRef,
	}
}

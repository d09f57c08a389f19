package payment

import (
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Status is the state of a payment
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusSucceeded         Status = "SUCCEEDED"
	StatusFailed            Status = "FAILED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
	StatusRefunded          Status = "REFUNDED"
)

// IsSettled reports whether the provider outcome is known
func (s Status) IsSettled() bool {
	return s != StatusPending
}

// Refund is one refund recorded against a payment
type Refund struct {
	ID        uuid.UUID
	RefundRef string
	Reference string
	Amount    valueobject.Money
	Reason    string
	CreatedAt time.Time
}

// Payment is money collected for one order
type Payment struct {
	shared.TenantAggregateRoot
	OrderID        uuid.UUID
	BuyerID        uuid.UUID
	Amount         valueobject.Money
	Provider       string
	ProviderRef    string
	RedirectURL    string
	Status         Status
	RefundedAmount valueobject.Money
	Refunds        []Refund
	FailureReason  string
	SucceededAt    *time.Time
}

// NewPayment creates a pending payment for an order
func NewPayment(tenantID, orderID, buyerID uuid.UUID, amount valueobject.Money, provider string) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Payment provider is required")
	}
	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
		BuyerID:             buyerID,
		Amount:              amount,
		Provider:            provider,
		Status:              StatusPending,
		RefundedAmount:      valueobject.Zero(amount.Currency()),
	}, nil
}

// StartCheckout stores the provider session
func (p *Payment) StartCheckout(session *CheckoutSession) {
	p.ProviderRef = session.ProviderRef
	p.RedirectURL = session.RedirectURL
	p.Touch()
	p.IncrementVersion()
}

// Matches checks a provider result against this payment
func (p *Payment) Matches(result *ReturnResult) bool {
	return result.PaymentID == p.ID && result.OrderID == p.OrderID && result.Amount.Equals(p.Amount)
}

// Succeed records a captured payment. It returns false when the payment was
// already settled, so replays change nothing.
func (p *Payment) Succeed(providerRef string, at time.Time) (bool, error) {
	if p.Status.IsSettled() {
		if p.Status == StatusFailed {
			return false, shared.NewDomainError("INVALID_STATE", "Payment has already failed")
		}
		return false, nil
	}
	if providerRef != "" {
		p.ProviderRef = providerRef
	}
	p.Status = StatusSucceeded
	p.SucceededAt = &at
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentSucceededEvent(p))
	return true, nil
}

// Fail records a declined or abandoned payment; the order stays unpaid
func (p *Payment) Fail(reason string) (bool, error) {
	if p.Status.IsSettled() {
		if p.Status == StatusFailed {
			return false, nil
		}
		return false, shared.NewDomainError("INVALID_STATE", "Payment has already succeeded")
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentFailedEvent(p))
	return true, nil
}

// Refundable is the captured amount not yet refunded
func (p *Payment) Refundable() valueobject.Money {
	if p.Status != StatusSucceeded && p.Status != StatusPartiallyRefunded {
		return valueobject.Zero(p.Amount.Currency())
	}
	return p.Amount.MustSubtract(p.RefundedAmount)
}

// CheckRefund validates a refund before it is sent to the provider
func (p *Payment) CheckRefund(amount valueobject.Money) error {
	if p.Status != StatusSucceeded && p.Status != StatusPartiallyRefunded {
		return shared.NewDomainError("INVALID_STATE", "Only captured payments can be refunded")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if over, err := amount.GreaterThan(p.Refundable()); err != nil || over {
		return shared.NewDomainError("REFUND_EXCEEDS_TOTAL", "Refund exceeds the captured amount")
	}
	return nil
}

// FindRefund returns the refund booked under reference
func (p *Payment) FindRefund(reference string) (*Refund, bool) {
	if reference == "" {
		return nil, false
	}
	for i := range p.Refunds {
		if p.Refunds[i].Reference == reference {
			return &p.Refunds[i], true
		}
	}
	return nil, false
}

// RecordRefund books a refund the provider accepted. reference names what
// the refund settles, e.g. a return; it can be booked only once.
func (p *Payment) RecordRefund(refundRef, reference string, amount valueobject.Money, reason string) error {
	if err := p.CheckRefund(amount); err != nil {
		return err
	}
	if _, ok := p.FindRefund(reference); ok {
		return shared.NewDomainError("REFUND_ALREADY_RECORDED", "A refund is already booked for "+reference)
	}
	p.RefundedAmount = p.RefundedAmount.MustAdd(amount)
	p.Refunds = append(p.Refunds, Refund{
		ID:        uuid.New(),
		RefundRef: refundRef,
		Reference: reference,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
	if p.RefundedAmount.Equals(p.Amount) {
		p.Status = StatusRefunded
	} else {
		p.Status = StatusPartiallyRefunded
	}
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentRefundedEvent(p, amount, refundRef))
	return nil
}

package payment

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ReturnRequest carries the token the provider appended to the return URL
type ReturnRequest struct {
	Token    string `form:"token" binding:"required"`
	Provider string `form:"provider" binding:"omitempty,max=50"`
}

// RefundResponse is one refund booked against a payment
type RefundResponse struct {
	ID        uuid.UUID         `json:"id"`
	RefundRef string            `json:"refund_ref"`
	Amount    valueobject.Money `json:"amount"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// PaymentResponse represents a payment
type PaymentResponse struct {
	ID             uuid.UUID         `json:"id"`
	OrderID        uuid.UUID         `json:"order_id"`
	Amount         valueobject.Money `json:"amount"`
	Provider       string            `json:"provider"`
	ProviderRef    string            `json:"provider_ref,omitempty"`
	Status         string            `json:"status"`
	RefundedAmount valueobject.Money `json:"refunded_amount"`
	Refunds        []RefundResponse  `json:"refunds"`
	FailureReason  string            `json:"failure_reason,omitempty"`
	SucceededAt    *time.Time        `json:"succeeded_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ReturnResponse is the outcome shown to the buyer after the provider round-trip
type ReturnResponse struct {
	Payment     PaymentResponse `json:"payment"`
	OrderNumber string          `json:"order_number"`
	OrderStatus string          `json:"order_status"`
	// AlreadyProcessed is set when the token had been handled before
	AlreadyProcessed bool `json:"already_processed"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:             p.ID,
		OrderID:        p.OrderID,
		Amount:         p.Amount,
		Provider:       p.Provider,
		ProviderRef:    p.ProviderRef,
		Status:         string(p.Status),
		RefundedAmount: p.RefundedAmount,
		Refunds:        make([]RefundResponse, len(p.Refunds)),
		FailureReason:  p.FailureReason,
		SucceededAt:    p.SucceededAt,
		CreatedAt:      p.CreatedAt,
	}
	for i, r := range p.Refunds {
		resp.Refunds[i] = RefundResponse{
			ID:        r.ID,
			RefundRef: r.RefundRef,
			Amount:    r.Amount,
			Reason:    r.Reason,
			CreatedAt: r.CreatedAt,
		}
	}
	return resp
}

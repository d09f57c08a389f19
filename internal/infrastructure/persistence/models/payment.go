package models

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type refundRow struct {
	ID        uuid.UUID       `json:"id"`
	RefundRef string          `json:"refund_ref"`
	Reference string          `json:"reference,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantAggregateModel
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuyerID        uuid.UUID       `gorm:"type:uuid;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency       string          `gorm:"type:char(3);not null"`
	Provider       string          `gorm:"type:varchar(50);not null"`
	ProviderRef    string          `gorm:"type:varchar(200);index"`
	RedirectURL    string          `gorm:"type:varchar(1000)"`
	Status         payment.Status  `gorm:"type:varchar(20);not null;index"`
	RefundedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RefundsJSON    string          `gorm:"column:refunds;type:jsonb;not null;default:'[]'"`
	FailureReason  string          `gorm:"type:text"`
	SucceededAt    *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *payment.Payment {
	cur := valueobject.Currency(m.Currency)
	var rows []refundRow
	fromJSON(m.RefundsJSON, &rows)
	refunds := make([]payment.Refund, len(rows))
	for i, r := range rows {
		refunds[i] = payment.Refund{
			ID:        r.ID,
			RefundRef: r.RefundRef,
			Reference: r.Reference,
			Amount:    money(r.Amount, cur),
			Reason:    r.Reason,
			CreatedAt: r.CreatedAt,
		}
	}
	return &payment.Payment{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		OrderID:             m.OrderID,
		BuyerID:             m.BuyerID,
		Amount:              money(m.Amount, cur),
		Provider:            m.Provider,
		ProviderRef:         m.ProviderRef,
		RedirectURL:         m.RedirectURL,
		Status:              m.Status,
		RefundedAmount:      money(m.RefundedAmount, cur),
		Refunds:             refunds,
		FailureReason:       m.FailureReason,
		SucceededAt:         m.SucceededAt,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	rows := make([]refundRow, len(p.Refunds))
	for i, r := range p.Refunds {
		rows[i] = refundRow{
			ID:        r.ID,
			RefundRef: r.RefundRef,
			Reference: r.Reference,
			Amount:    r.Amount.Amount(),
			Reason:    r.Reason,
			CreatedAt: r.CreatedAt,
		}
	}
	m.OrderID = p.OrderID
	m.BuyerID = p.BuyerID
	m.Amount = p.Amount.Amount()
	m.Currency = string(p.Amount.Currency())
	m.Provider = p.Provider
	m.ProviderRef = p.ProviderRef
	m.RedirectURL = p.RedirectURL
	m.Status = p.Status
	m.RefundedAmount = p.RefundedAmount.Amount()
	m.RefundsJSON = toJSON(rows, "[]")
	m.FailureReason = p.FailureReason
	m.SucceededAt = p.SucceededAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

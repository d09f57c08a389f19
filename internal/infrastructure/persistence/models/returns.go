package models

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type returnItemRow struct {
	OrderItemID uuid.UUID       `json:"order_item_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Refund      decimal.Decimal `json:"refund"`
}

// ReturnModel is the persistence model for the ReturnRequest aggregate root.
type ReturnModel struct {
	TenantAggregateModel
	OrderID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	SubOrderID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	SubOrderNumber string                `gorm:"type:varchar(50);not null"`
	SellerID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	BuyerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	ItemsJSON      string                `gorm:"column:items;type:jsonb;not null;default:'[]'"`
	Reason         string                `gorm:"type:text;not null"`
	RefundAmount   decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Currency       string                `gorm:"type:char(3);not null"`
	Status         returns.ReturnStatus  `gorm:"type:varchar(20);not null;index"`
	DecisionNote   string                `gorm:"type:text"`
	DecidedBy      *uuid.UUID            `gorm:"type:uuid"`
	ApprovedAt     *time.Time
	RejectedAt     *time.Time
	ReceivedAt     *time.Time
	RefundedAt     *time.Time
}

// TableName returns the table name for GORM
func (ReturnModel) TableName() string {
	return "return_requests"
}

// ToDomain converts the persistence model to a domain ReturnRequest.
func (m *ReturnModel) ToDomain() *returns.ReturnRequest {
	cur := valueobject.Currency(m.Currency)
	var rows []returnItemRow
	fromJSON(m.ItemsJSON, &rows)
	items := make([]returns.ReturnItem, len(rows))
	for i, r := range rows {
		items[i] = returns.ReturnItem{
			OrderItemID: r.OrderItemID,
			SKU:         r.SKU,
			Name:        r.Name,
			Quantity:    r.Quantity,
			Refund:      money(r.Refund, cur),
		}
	}
	return &returns.ReturnRequest{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		OrderID:             m.OrderID,
		SubOrderID:          m.SubOrderID,
		SubOrderNumber:      m.SubOrderNumber,
		SellerID:            m.SellerID,
		BuyerID:             m.BuyerID,
		Items:               items,
		Reason:              m.Reason,
		RefundAmount:        money(m.RefundAmount, cur),
		Status:              m.Status,
		DecisionNote:        m.DecisionNote,
		DecidedBy:           m.DecidedBy,
		ApprovedAt:          m.ApprovedAt,
		RejectedAt:          m.RejectedAt,
		ReceivedAt:          m.ReceivedAt,
		RefundedAt:          m.RefundedAt,
	}
}

// FromDomain populates the persistence model from a domain ReturnRequest.
func (m *ReturnModel) FromDomain(r *returns.ReturnRequest) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	rows := make([]returnItemRow, len(r.Items))
	for i, it := range r.Items {
		rows[i] = returnItemRow{
			OrderItemID: it.OrderItemID,
			SKU:         it.SKU,
			Name:        it.Name,
			Quantity:    it.Quantity,
			Refund:      it.Refund.Amount(),
		}
	}
	m.OrderID = r.OrderID
	m.SubOrderID = r.SubOrderID
	m.SubOrderNumber = r.SubOrderNumber
	m.SellerID = r.SellerID
	m.BuyerID = r.BuyerID
	m.ItemsJSON = toJSON(rows, "[]")
	m.Reason = r.Reason
	m.RefundAmount = r.RefundAmount.Amount()
	m.Currency = string(r.RefundAmount.Currency())
	m.Status = r.Status
	m.DecisionNote = r.DecisionNote
	m.DecidedBy = r.DecidedBy
	m.ApprovedAt = r.ApprovedAt
	m.RejectedAt = r.RejectedAt
	m.ReceivedAt = r.ReceivedAt
	m.RefundedAt = r.RefundedAt
}

// ReturnModelFromDomain creates a new persistence model from a domain ReturnRequest.
func ReturnModelFromDomain(r *returns.ReturnRequest) *ReturnModel {
	m := &ReturnModel{}
	m.FromDomain(r)
	return m
}

type disputeMessageRow struct {
	ID         uuid.UUID   `json:"id"`
	AuthorID   uuid.UUID   `json:"author_id"`
	AuthorRole shared.Role `json:"author_role"`
	Body       string      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DisputeModel is the persistence model for the Dispute aggregate root.
// The message thread is stored as JSON.
type DisputeModel struct {
	TenantAggregateModel
	OrderID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	SubOrderID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	SellerID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	BuyerID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	ReturnID       *uuid.UUID            `gorm:"type:uuid"`
	Reason         string                `gorm:"type:text;not null"`
	Status         returns.DisputeStatus `gorm:"type:varchar(20);not null;index"`
	MessagesJSON   string                `gorm:"column:messages;type:jsonb;not null;default:'[]'"`
	Resolution     string                `gorm:"type:text"`
	ResolvedBy     *uuid.UUID            `gorm:"type:uuid"`
	ResolvedAt     *time.Time
	RefundAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency       string          `gorm:"type:char(3);not null"`
	LastActivityAt time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (DisputeModel) TableName() string {
	return "disputes"
}

// ToDomain converts the persistence model to a domain Dispute.
func (m *DisputeModel) ToDomain() *returns.Dispute {
	var rows []disputeMessageRow
	fromJSON(m.MessagesJSON, &rows)
	messages := make([]returns.Message, len(rows))
	for i, r := range rows {
		messages[i] = returns.Message{
			ID:         r.ID,
			AuthorID:   r.AuthorID,
			AuthorRole: r.AuthorRole,
			Body:       r.Body,
			CreatedAt:  r.CreatedAt,
		}
	}
	return &returns.Dispute{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		OrderID:             m.OrderID,
		SubOrderID:          m.SubOrderID,
		SellerID:            m.SellerID,
		BuyerID:             m.BuyerID,
		ReturnID:            m.ReturnID,
		Reason:              m.Reason,
		Status:              m.Status,
		Messages:            messages,
		Resolution:          m.Resolution,
		ResolvedBy:          m.ResolvedBy,
		ResolvedAt:          m.ResolvedAt,
		RefundAmount:        money(m.RefundAmount, valueobject.Currency(m.Currency)),
		LastActivityAt:      m.LastActivityAt,
	}
}

// FromDomain populates the persistence model from a domain Dispute.
func (m *DisputeModel) FromDomain(d *returns.Dispute) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	rows := make([]disputeMessageRow, len(d.Messages))
	for i, msg := range d.Messages {
		rows[i] = disputeMessageRow{
			ID:         msg.ID,
			AuthorID:   msg.AuthorID,
			AuthorRole: msg.AuthorRole,
			Body:       msg.Body,
			CreatedAt:  msg.CreatedAt,
		}
	}
	m.OrderID = d.OrderID
	m.SubOrderID = d.SubOrderID
	m.SellerID = d.SellerID
	m.BuyerID = d.BuyerID
	m.ReturnID = d.ReturnID
	m.Reason = d.Reason
	m.Status = d.Status
	m.MessagesJSON = toJSON(rows, "[]")
	m.Resolution = d.Resolution
	m.ResolvedBy = d.ResolvedBy
	m.ResolvedAt = d.ResolvedAt
	m.RefundAmount = d.RefundAmount.Amount()
	m.Currency = string(d.RefundAmount.Currency())
	m.LastActivityAt = d.LastActivityAt
}

// DisputeModelFromDomain creates a new persistence model from a domain Dispute.
func DisputeModelFromDomain(d *returns.Dispute) *DisputeModel {
	m := &DisputeModel{}
	m.FromDomain(d)
	return m
}

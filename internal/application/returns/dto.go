package returns

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ReturnItemRequest is one item the buyer sends back
type ReturnItemRequest struct {
	OrderItemID uuid.UUID `json:"order_item_id" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required,min=1"`
}

// CreateReturnRequest opens a return on a delivered sub-order
type CreateReturnRequest struct {
	SubOrderID uuid.UUID           `json:"sub_order_id" binding:"required"`
	Items      []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
	Reason     string              `json:"reason" binding:"required,min=3,max=1000"`
}

// DecisionRequest carries a note for approve or reject
type DecisionRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

// ListFilter narrows return and dispute listings
type ListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (f ListFilter) toFilter() shared.Filter {
	return shared.Filter{Page: f.Page, PageSize: f.PageSize, OrderBy: "created_at"}.Normalize()
}

// ReturnItemResponse is a returned item with its refund share
type ReturnItemResponse struct {
	OrderItemID uuid.UUID         `json:"order_item_id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Quantity    int               `json:"quantity"`
	Refund      valueobject.Money `json:"refund"`
}

// ReturnResponse represents a return request
type ReturnResponse struct {
	ID             uuid.UUID            `json:"id"`
	OrderID        uuid.UUID            `json:"order_id"`
	SubOrderID     uuid.UUID            `json:"sub_order_id"`
	SubOrderNumber string               `json:"sub_order_number"`
	SellerID       uuid.UUID            `json:"seller_id"`
	BuyerID        uuid.UUID            `json:"buyer_id"`
	Status         string               `json:"status"`
	Reason         string               `json:"reason"`
	Items          []ReturnItemResponse `json:"items"`
	RefundAmount   valueobject.Money    `json:"refund_amount"`
	DecisionNote   string               `json:"decision_note,omitempty"`
	ApprovedAt     *time.Time           `json:"approved_at,omitempty"`
	RejectedAt     *time.Time           `json:"rejected_at,omitempty"`
	ReceivedAt     *time.Time           `json:"received_at,omitempty"`
	RefundedAt     *time.Time           `json:"refunded_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ToReturnResponse converts a domain return request
func ToReturnResponse(r *returns.ReturnRequest) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReturnItemResponse{
			OrderItemID: it.OrderItemID,
			SKU:         it.SKU,
			Name:        it.Name,
			Quantity:    it.Quantity,
			Refund:      it.Refund,
		}
	}
	return ReturnResponse{
		ID:             r.ID,
		OrderID:        r.OrderID,
		SubOrderID:     r.SubOrderID,
		SubOrderNumber: r.SubOrderNumber,
		SellerID:       r.SellerID,
		BuyerID:        r.BuyerID,
		Status:         string(r.Status),
		Reason:         r.Reason,
		Items:          items,
		RefundAmount:   r.RefundAmount,
		DecisionNote:   r.DecisionNote,
		ApprovedAt:     r.ApprovedAt,
		RejectedAt:     r.RejectedAt,
		ReceivedAt:     r.ReceivedAt,
		RefundedAt:     r.RefundedAt,
		CreatedAt:      r.CreatedAt,
	}
}

// OpenDisputeRequest opens a dispute on a sub-order
type OpenDisputeRequest struct {
	SubOrderID uuid.UUID  `json:"sub_order_id" binding:"required"`
	ReturnID   *uuid.UUID `json:"return_id"`
	Reason     string     `json:"reason" binding:"required,min=3,max=2000"`
}

// MessageRequest posts to a dispute thread
type MessageRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// ResolveDisputeRequest settles a dispute
type ResolveDisputeRequest struct {
	InFavourOfBuyer bool   `json:"in_favour_of_buyer"`
	Resolution      string `json:"resolution" binding:"required,max=2000"`
}

// CloseDisputeRequest withdraws or closes a dispute
type CloseDisputeRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// MessageResponse is one entry of a dispute thread
type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorRole string    `json:"author_role"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisputeResponse represents a dispute with its thread
type DisputeResponse struct {
	ID             uuid.UUID         `json:"id"`
	OrderID        uuid.UUID         `json:"order_id"`
	SubOrderID     uuid.UUID         `json:"sub_order_id"`
	SellerID       uuid.UUID         `json:"seller_id"`
	BuyerID        uuid.UUID         `json:"buyer_id"`
	ReturnID       *uuid.UUID        `json:"return_id,omitempty"`
	Reason         string            `json:"reason"`
	Status         string            `json:"status"`
	Messages       []MessageResponse `json:"messages"`
	Resolution     string            `json:"resolution,omitempty"`
	RefundAmount   valueobject.Money `json:"refund_amount"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
	LastActivityAt time.Time         `json:"last_activity_at"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ToDisputeResponse converts a domain dispute
func ToDisputeResponse(d *returns.Dispute) DisputeResponse {
	msgs := make([]MessageResponse, len(d.Messages))
	for i, m := range d.Messages {
		msgs[i] = MessageResponse{
			ID:         m.ID,
			AuthorID:   m.AuthorID,
			AuthorRole: string(m.AuthorRole),
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
		}
	}
	return DisputeResponse{
		ID:             d.ID,
		OrderID:        d.OrderID,
		SubOrderID:     d.SubOrderID,
		SellerID:       d.SellerID,
		BuyerID:        d.BuyerID,
		ReturnID:       d.ReturnID,
		Reason:         d.Reason,
		Status:         string(d.Status),
		Messages:       msgs,
		Resolution:     d.Resolution,
		RefundAmount:   d.RefundAmount,
		ResolvedAt:     d.ResolvedAt,
		LastActivityAt: d.LastActivityAt,
		CreatedAt:      d.CreatedAt,
	}
}

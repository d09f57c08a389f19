package order

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderListFilter narrows order listings
type OrderListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING_PAYMENT PAID PREPARING SHIPPED DELIVERED CANCELLED REFUNDED"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ShipRequest marks a sub-order as shipped. An empty tracking number books a
// shipment with the carrier.
type ShipRequest struct {
	Carrier        string `json:"carrier" binding:"omitempty,max=50"`
	TrackingNumber string `json:"tracking_number" binding:"omitempty,max=100"`
}

// CancelRequest cancels a sub-order
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// SettlementRequest selects the settlement period
type SettlementRequest struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// AddressResponse is a shipping address
type AddressResponse = valueobject.Address

// ItemResponse is an order line snapshot
type ItemResponse struct {
	ID             uuid.UUID         `json:"id"`
	ProductID      uuid.UUID         `json:"product_id"`
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	UnitPrice      valueobject.Money `json:"unit_price"`
	Quantity       int               `json:"quantity"`
	Discount       valueobject.Money `json:"discount"`
	Net            valueobject.Money `json:"net"`
	VatRate        decimal.Decimal   `json:"vat_rate"`
	Vat            valueobject.Money `json:"vat"`
	CommissionRate decimal.Decimal   `json:"commission_rate"`
	Commission     valueobject.Money `json:"commission"`
	ReturnedQty    int               `json:"returned_quantity"`
}

// SubOrderResponse is one seller's part of an order
type SubOrderResponse struct {
	ID             uuid.UUID         `json:"id"`
	Number         string            `json:"number"`
	SellerID       uuid.UUID         `json:"seller_id"`
	Status         string            `json:"status"`
	Items          []ItemResponse    `json:"items"`
	Subtotal       valueobject.Money `json:"subtotal"`
	Discount       valueobject.Money `json:"discount"`
	Shipping       valueobject.Money `json:"shipping"`
	Vat            valueobject.Money `json:"vat"`
	Total          valueobject.Money `json:"total"`
	Commission     valueobject.Money `json:"commission"`
	Payout         valueobject.Money `json:"payout"`
	RefundedAmount valueobject.Money `json:"refunded_amount"`
	ShippingMethod string            `json:"shipping_method"`
	Carrier        string            `json:"carrier,omitempty"`
	TrackingNumber string            `json:"tracking_number,omitempty"`
	LabelURL       string            `json:"label_url,omitempty"`
	CancelReason   string            `json:"cancel_reason,omitempty"`
	PaidAt         *time.Time        `json:"paid_at,omitempty"`
	ShippedAt      *time.Time        `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time        `json:"cancelled_at,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// OrderResponse represents an order with its sub-orders
type OrderResponse struct {
	ID              uuid.UUID          `json:"id"`
	Number          string             `json:"number"`
	BuyerID         uuid.UUID          `json:"buyer_id"`
	Status          string             `json:"status"`
	PaymentState    string             `json:"payment_state"`
	PaymentID       *uuid.UUID         `json:"payment_id,omitempty"`
	Currency        string             `json:"currency"`
	ShippingAddress AddressResponse    `json:"shipping_address"`
	PromotionCode   string             `json:"promotion_code,omitempty"`
	Subtotal        valueobject.Money  `json:"subtotal"`
	Discount        valueobject.Money  `json:"discount"`
	Shipping        valueobject.Money  `json:"shipping"`
	Vat             valueobject.Money  `json:"vat"`
	Total           valueobject.Money  `json:"total"`
	Refunded        valueobject.Money  `json:"refunded"`
	SubOrders       []SubOrderResponse `json:"sub_orders"`
	PlacedAt        time.Time          `json:"placed_at"`
	PaidAt          *time.Time         `json:"paid_at,omitempty"`
}

// SellerSubOrderResponse is a sub-order listed for its seller
type SellerSubOrderResponse struct {
	SubOrderResponse
	OrderID         uuid.UUID       `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	ShippingAddress AddressResponse `json:"shipping_address"`
	PlacedAt        time.Time       `json:"placed_at"`
}

// SettlementResponse summarises a seller's delivered sales over a period
type SettlementResponse struct {
	SellerID   uuid.UUID         `json:"seller_id"`
	From       time.Time         `json:"from"`
	To         time.Time         `json:"to"`
	Currency   string            `json:"currency"`
	SubOrders  int64             `json:"sub_orders"`
	Gross      valueobject.Money `json:"gross"`
	Commission valueobject.Money `json:"commission"`
	Refunded   valueobject.Money `json:"refunded"`
	Payout     valueobject.Money `json:"payout"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		Number:          o.Number,
		BuyerID:         o.BuyerID,
		Status:          string(o.Status),
		PaymentState:    string(o.PaymentState),
		PaymentID:       o.PaymentID,
		Currency:        string(o.Currency),
		ShippingAddress: o.ShippingAddress,
		PromotionCode:   o.PromotionCode,
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		Shipping:        o.Shipping,
		Vat:             o.Vat,
		Total:           o.Total,
		Refunded:        o.TotalRefunded(),
		SubOrders:       make([]SubOrderResponse, len(o.SubOrders)),
		PlacedAt:        o.PlacedAt,
		PaidAt:          o.PaidAt,
	}
	for i := range o.SubOrders {
		resp.SubOrders[i] = ToSubOrderResponse(&o.SubOrders[i])
	}
	return resp
}

// ToSubOrderResponse converts a sub-order
func ToSubOrderResponse(s *order.SubOrder) SubOrderResponse {
	resp := SubOrderResponse{
		ID:             s.ID,
		Number:         s.Number,
		SellerID:       s.SellerID,
		Status:         string(s.Status),
		Items:          make([]ItemResponse, len(s.Items)),
		Subtotal:       s.Subtotal,
		Discount:       s.Discount,
		Shipping:       s.Shipping,
		Vat:            s.Vat,
		Total:          s.Total,
		Commission:     s.Commission,
		Payout:         s.Payout,
		RefundedAmount: s.RefundedAmount,
		ShippingMethod: string(s.ShippingMethod),
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		LabelURL:       s.LabelURL,
		CancelReason:   s.CancelReason,
		PaidAt:         s.PaidAt,
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
		CancelledAt:    s.CancelledAt,
		UpdatedAt:      s.UpdatedAt,
	}
	for i, it := range s.Items {
		resp.Items[i] = ItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			SKU:            it.SKU,
			Name:           it.Name,
			UnitPrice:      it.UnitPrice,
			Quantity:       it.Quantity,
			Discount:       it.Discount,
			Net:            it.Net,
			VatRate:        it.VatRate,
			Vat:            it.Vat,
			CommissionRate: it.CommissionRate,
			Commission:     it.Commission,
			ReturnedQty:    it.ReturnedQty,
		}
	}
	return resp
}

// ToSellerSubOrderResponse converts a seller view
func ToSellerSubOrderResponse(v *order.SubOrderView) SellerSubOrderResponse {
	return SellerSubOrderResponse{
		SubOrderResponse: ToSubOrderResponse(&v.SubOrder),
		OrderID:          v.OrderID,
		OrderNumber:      v.OrderNumber,
		ShippingAddress:  v.ShippingAddress,
		PlacedAt:         v.PlacedAt,
	}
}

// ToSettlementResponse converts a settlement summary
func ToSettlementResponse(s *order.Settlement) SettlementResponse {
	return SettlementResponse{
		SellerID:   s.SellerID,
		From:       s.From,
		To:         s.To,
		Currency:   string(s.Currency),
		SubOrders:  s.SubOrders,
		Gross:      s.Gross,
		Commission: s.Commission,
		Refunded:   s.Refunded,
		Payout:     s.Payout,
	}
}

package models

import (
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderItemRow struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	Amount         decimal.Decimal `json:"amount"`
	Discount       decimal.Decimal `json:"discount"`
	Net            decimal.Decimal `json:"net"`
	VatRate        decimal.Decimal `json:"vat_rate"`
	Vat            decimal.Decimal `json:"vat"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Commission     decimal.Decimal `json:"commission"`
	ReturnedQty    int             `json:"returned_qty"`
}

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	TenantAggregateModel
	Number          string             `gorm:"type:varchar(40);not null;index"`
	BuyerID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status          order.Status       `gorm:"type:varchar(20);not null;index"`
	PaymentState    order.PaymentState `gorm:"type:varchar(20);not null"`
	PaymentID       *uuid.UUID         `gorm:"type:uuid"`
	Currency        string             `gorm:"type:char(3);not null"`
	AddressJSON     string             `gorm:"column:shipping_address;type:jsonb;not null"`
	PromotionCode   string             `gorm:"type:varchar(32)"`
	Subtotal        decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Discount        decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Shipping        decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Vat             decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Total           decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Commission      decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	PlacedAt        time.Time          `gorm:"not null;index"`
	PaidAt          *time.Time
	SubOrders       []SubOrderModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// SubOrderModel is one seller's part of an order.
type SubOrderModel struct {
	ID             uuid.UUID              `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	TenantID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	Number         string                 `gorm:"type:varchar(50);not null;index"`
	SellerID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	Status         order.Status           `gorm:"type:varchar(20);not null;index"`
	ItemsJSON      string                 `gorm:"column:items;type:jsonb;not null;default:'[]'"`
	Subtotal       decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Discount       decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Net            decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Shipping       decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	ShippingVat    decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Vat            decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Total          decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Commission     decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Payout         decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	RefundedAmount decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingMethod pricing.ShippingMethod `gorm:"type:varchar(20);not null"`
	Carrier        string                 `gorm:"type:varchar(50)"`
	TrackingNumber string                 `gorm:"type:varchar(100)"`
	LabelURL       string                 `gorm:"type:varchar(500)"`
	CancelReason   string                 `gorm:"type:text"`
	PaidAt         *time.Time
	PreparingAt    *time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	RefundedAt     *time.Time
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SubOrderModel) TableName() string {
	return "sub_orders"
}

// ToDomain converts the persistence model to a domain Order with its sub-orders.
func (m *OrderModel) ToDomain() *order.Order {
	cur := valueobject.Currency(m.Currency)
	o := &order.Order{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Number:              m.Number,
		BuyerID:             m.BuyerID,
		Status:              m.Status,
		PaymentState:        m.PaymentState,
		PaymentID:           m.PaymentID,
		Currency:            cur,
		PromotionCode:       m.PromotionCode,
		Subtotal:            money(m.Subtotal, cur),
		Discount:            money(m.Discount, cur),
		Shipping:            money(m.Shipping, cur),
		Vat:                 money(m.Vat, cur),
		Total:               money(m.Total, cur),
		Commission:          money(m.Commission, cur),
		SubOrders:           make([]order.SubOrder, len(m.SubOrders)),
		PlacedAt:            m.PlacedAt,
		PaidAt:              m.PaidAt,
	}
	fromJSON(m.AddressJSON, &o.ShippingAddress)
	for i := range m.SubOrders {
		o.SubOrders[i] = m.SubOrders[i].ToDomain(cur)
	}
	return o
}

// ToDomain converts the sub-order row; amounts use the parent order currency.
func (m *SubOrderModel) ToDomain(cur valueobject.Currency) order.SubOrder {
	var rows []orderItemRow
	fromJSON(m.ItemsJSON, &rows)
	items := make([]order.Item, len(rows))
	for i, r := range rows {
		items[i] = order.Item{
			ID:             r.ID,
			ProductID:      r.ProductID,
			SKU:            r.SKU,
			Name:           r.Name,
			UnitPrice:      money(r.UnitPrice, cur),
			Quantity:       r.Quantity,
			Amount:         money(r.Amount, cur),
			Discount:       money(r.Discount, cur),
			Net:            money(r.Net, cur),
			VatRate:        r.VatRate,
			Vat:            money(r.Vat, cur),
			CommissionRate: r.CommissionRate,
			Commission:     money(r.Commission, cur),
			ReturnedQty:    r.ReturnedQty,
		}
	}
	return order.SubOrder{
		ID:             m.ID,
		Number:         m.Number,
		SellerID:       m.SellerID,
		Status:         m.Status,
		Items:          items,
		Subtotal:       money(m.Subtotal, cur),
		Discount:       money(m.Discount, cur),
		Net:            money(m.Net, cur),
		Shipping:       money(m.Shipping, cur),
		ShippingVat:    money(m.ShippingVat, cur),
		Vat:            money(m.Vat, cur),
		Total:          money(m.Total, cur),
		Commission:     money(m.Commission, cur),
		Payout:         money(m.Payout, cur),
		RefundedAmount: money(m.RefundedAmount, cur),
		ShippingMethod: m.ShippingMethod,
		Carrier:        m.Carrier,
		TrackingNumber: m.TrackingNumber,
		LabelURL:       m.LabelURL,
		CancelReason:   m.CancelReason,
		PaidAt:         m.PaidAt,
		PreparingAt:    m.PreparingAt,
		ShippedAt:      m.ShippedAt,
		DeliveredAt:    m.DeliveredAt,
		CancelledAt:    m.CancelledAt,
		RefundedAt:     m.RefundedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.Number = o.Number
	m.BuyerID = o.BuyerID
	m.Status = o.Status
	m.PaymentState = o.PaymentState
	m.PaymentID = o.PaymentID
	m.Currency = string(o.Currency)
	m.AddressJSON = toJSON(o.ShippingAddress, "{}")
	m.PromotionCode = o.PromotionCode
	m.Subtotal = o.Subtotal.Amount()
	m.Discount = o.Discount.Amount()
	m.Shipping = o.Shipping.Amount()
	m.Vat = o.Vat.Amount()
	m.Total = o.Total.Amount()
	m.Commission = o.Commission.Amount()
	m.PlacedAt = o.PlacedAt
	m.PaidAt = o.PaidAt
	m.SubOrders = make([]SubOrderModel, len(o.SubOrders))
	for i := range o.SubOrders {
		m.SubOrders[i] = SubOrderModelFromDomain(o.ID, o.TenantID, &o.SubOrders[i])
	}
}

// SubOrderModelFromDomain creates the row of one sub-order.
func SubOrderModelFromDomain(orderID, tenantID uuid.UUID, s *order.SubOrder) SubOrderModel {
	rows := make([]orderItemRow, len(s.Items))
	for i, it := range s.Items {
		rows[i] = orderItemRow{
			ID:             it.ID,
			ProductID:      it.ProductID,
			SKU:            it.SKU,
			Name:           it.Name,
			UnitPrice:      it.UnitPrice.Amount(),
			Quantity:       it.Quantity,
			Amount:         it.Amount.Amount(),
			Discount:       it.Discount.Amount(),
			Net:            it.Net.Amount(),
			VatRate:        it.VatRate,
			Vat:            it.Vat.Amount(),
			CommissionRate: it.CommissionRate,
			Commission:     it.Commission.Amount(),
			ReturnedQty:    it.ReturnedQty,
		}
	}
	return SubOrderModel{
		ID:             s.ID,
		OrderID:        orderID,
		TenantID:       tenantID,
		Number:         s.Number,
		SellerID:       s.SellerID,
		Status:         s.Status,
		ItemsJSON:      toJSON(rows, "[]"),
		Subtotal:       s.Subtotal.Amount(),
		Discount:       s.Discount.Amount(),
		Net:            s.Net.Amount(),
		Shipping:       s.Shipping.Amount(),
		ShippingVat:    s.ShippingVat.Amount(),
		Vat:            s.Vat.Amount(),
		Total:          s.Total.Amount(),
		Commission:     s.Commission.Amount(),
		Payout:         s.Payout.Amount(),
		RefundedAmount: s.RefundedAmount.Amount(),
		ShippingMethod: s.ShippingMethod,
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		LabelURL:       s.LabelURL,
		CancelReason:   s.CancelReason,
		PaidAt:         s.PaidAt,
		PreparingAt:    s.PreparingAt,
		ShippedAt:      s.ShippedAt,
		DeliveredAt:    s.DeliveredAt,
		CancelledAt:    s.CancelledAt,
		RefundedAt:     s.RefundedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// SubOrderViewRow is a sub-order joined with its parent order for seller listings.
type SubOrderViewRow struct {
	SubOrderModel
	OrderNumber string    `gorm:"column:order_number"`
	BuyerID     uuid.UUID `gorm:"column:buyer_id"`
	Currency    string    `gorm:"column:currency"`
	AddressJSON string    `gorm:"column:shipping_address"`
	PlacedAt    time.Time `gorm:"column:placed_at"`
}

// ToDomain converts the joined row to a domain SubOrderView.
func (r *SubOrderViewRow) ToDomain() order.SubOrderView {
	v := order.SubOrderView{
		SubOrder:    r.SubOrderModel.ToDomain(valueobject.Currency(r.Currency)),
		OrderID:     r.OrderID,
		OrderNumber: r.OrderNumber,
		BuyerID:     r.BuyerID,
		PlacedAt:    r.PlacedAt,
	}
	fromJSON(r.AddressJSON, &v.ShippingAddress)
	return v
}

// AnonymizeAddressColumn scrubs a stored shipping address. Only the country
// survives.
func AnonymizeAddressColumn(column string) string {
	var addr valueobject.Address
	fromJSON(column, &addr)
	return toJSON(addr.Anonymize(), "{}")
}

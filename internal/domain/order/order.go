package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a snapshot of a purchased product line
type Item struct {
	ID             uuid.UUID
	ProductID      uuid.UUID
	SKU            string
	Name           string
	UnitPrice      valueobject.Money
	Quantity       int
	Amount         valueobject.Money
	Discount       valueobject.Money
	Net            valueobject.Money
	VatRate        decimal.Decimal
	Vat            valueobject.Money
	CommissionRate decimal.Decimal
	Commission     valueobject.Money
	ReturnedQty    int
}

// Returnable is the quantity not yet returned
func (i Item) Returnable() int {
	return i.Quantity - i.ReturnedQty
}

// RefundFor is what returning qty more units refunds: their share of the
// line's net amount plus VAT, counted after the units already returned
func (i Item) RefundFor(qty int) valueobject.Money {
	return i.RefundAfter(i.ReturnedQty, qty)
}

// RefundAfter prices qty units returned after prior units. Each share is the
// difference of two rounded cumulative amounts, so a line returned unit by
// unit refunds exactly its net plus VAT.
func (i Item) RefundAfter(prior, qty int) valueobject.Money {
	if qty <= 0 || i.Quantity == 0 || prior < 0 || prior+qty > i.Quantity {
		return valueobject.Zero(i.Net.Currency())
	}
	return i.refundedThrough(prior + qty).MustSubtract(i.refundedThrough(prior))
}

// refundedThrough is the gross refunded once n units have come back
func (i Item) refundedThrough(n int) valueobject.Money {
	gross := i.Net.MustAdd(i.Vat)
	if n >= i.Quantity {
		return gross
	}
	share := decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(int64(i.Quantity)))
	return gross.Multiply(share).RoundMinor()
}

// SubOrder is the part of an order fulfilled by one seller
type SubOrder struct {
	ID             uuid.UUID
	Number         string
	SellerID       uuid.UUID
	Status         Status
	Items          []Item
	Subtotal       valueobject.Money
	Discount       valueobject.Money
	Net            valueobject.Money
	Shipping       valueobject.Money
	ShippingVat    valueobject.Money
	Vat            valueobject.Money
	Total          valueobject.Money
	Commission     valueobject.Money
	Payout         valueobject.Money
	RefundedAmount valueobject.Money
	ShippingMethod pricing.ShippingMethod
	Carrier        string
	TrackingNumber string
	LabelURL       string
	CancelReason   string
	PaidAt         *time.Time
	PreparingAt    *time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	RefundedAt     *time.Time
	UpdatedAt      time.Time
}

// Refundable is the amount that can still be refunded
func (s *SubOrder) Refundable() valueobject.Money {
	return s.Total.MustSubtract(s.RefundedAmount)
}

// FullyReturned reports whether every unit has been returned
func (s *SubOrder) FullyReturned() bool {
	for _, it := range s.Items {
		if it.Returnable() > 0 {
			return false
		}
	}
	return true
}

// Item looks up an item by ID
func (s *SubOrder) Item(id uuid.UUID) (*Item, bool) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i], true
		}
	}
	return nil, false
}

// Order is the buyer's purchase; it owns one sub-order per seller
type Order struct {
	shared.TenantAggregateRoot
	Number          string
	BuyerID         uuid.UUID
	Status          Status
	PaymentState    PaymentState
	PaymentID       *uuid.UUID
	Currency        valueobject.Currency
	ShippingAddress valueobject.Address
	PromotionCode   string
	Subtotal        valueobject.Money
	Discount        valueobject.Money
	Shipping        valueobject.Money
	Vat             valueobject.Money
	Total           valueobject.Money
	Commission      valueobject.Money
	SubOrders       []SubOrder
	PlacedAt        time.Time
	PaidAt          *time.Time
}

// NewOrder builds an order from a priced quote
func NewOrder(tenantID, buyerID uuid.UUID, number string, address valueobject.Address, quote *pricing.Quote) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer is required")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number is required")
	}
	if quote == nil || len(quote.Sellers) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if err := address.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	o := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		BuyerID:             buyerID,
		Status:              StatusPendingPayment,
		PaymentState:        PaymentAwaiting,
		Currency:            quote.Currency,
		ShippingAddress:     address,
		PromotionCode:       quote.PromotionCode,
		Subtotal:            quote.Subtotal,
		Discount:            quote.Discount,
		Shipping:            quote.Shipping,
		Vat:                 quote.Vat,
		Total:               quote.Total,
		Commission:          quote.Commission,
		PlacedAt:            time.Now().UTC(),
	}
	for i, sq := range quote.Sellers {
		sub := SubOrder{
			ID:             uuid.New(),
			Number:         fmt.Sprintf("%s-%d", number, i+1),
			SellerID:       sq.SellerID,
			Status:         StatusPendingPayment,
			Subtotal:       sq.Subtotal,
			Discount:       sq.Discount,
			Net:            sq.Net,
			Shipping:       sq.Shipping,
			ShippingVat:    sq.ShippingVat,
			Vat:            sq.Vat,
			Total:          sq.Total,
			Commission:     sq.Commission,
			Payout:         sq.Payout,
			RefundedAmount: valueobject.Zero(quote.Currency),
			ShippingMethod: sq.Method,
			Carrier:        sq.Carrier,
			UpdatedAt:      o.PlacedAt,
		}
		for _, l := range sq.Lines {
			sub.Items = append(sub.Items, Item{
				ID:             uuid.New(),
				ProductID:      l.ProductID,
				SKU:            l.SKU,
				Name:           l.Name,
				UnitPrice:      l.UnitPrice,
				Quantity:       l.Quantity,
				Amount:         l.Amount,
				Discount:       l.Discount,
				Net:            l.Net,
				VatRate:        l.VatRate,
				Vat:            l.Vat,
				CommissionRate: l.CommissionRate,
				Commission:     l.Commission,
			})
		}
		o.SubOrders = append(o.SubOrders, sub)
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// SubOrder looks up a sub-order by ID
func (o *Order) SubOrder(id uuid.UUID) (*SubOrder, error) {
	for i := range o.SubOrders {
		if o.SubOrders[i].ID == id {
			return &o.SubOrders[i], nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Sub-order not found")
}

// SubOrderForSeller returns the seller's sub-order in this order
func (o *Order) SubOrderForSeller(sellerID uuid.UUID) (*SubOrder, error) {
	for i := range o.SubOrders {
		if o.SubOrders[i].SellerID == sellerID {
			return &o.SubOrders[i], nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Sub-order not found")
}

// SellerIDs lists the sellers involved in the order
func (o *Order) SellerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.SubOrders))
	for i := range o.SubOrders {
		ids[i] = o.SubOrders[i].SellerID
	}
	return ids
}

// IsVisibleTo reports whether the actor may read the order
func (o *Order) IsVisibleTo(actor shared.Actor) bool {
	if actor.IsPrivileged() || actor.UserID == o.BuyerID {
		return true
	}
	if actor.Role == shared.RoleSeller && actor.SellerID != nil {
		_, err := o.SubOrderForSeller(*actor.SellerID)
		return err == nil
	}
	return false
}

// HasOpenSubOrders reports outstanding fulfilment work
func (o *Order) HasOpenSubOrders() bool {
	for i := range o.SubOrders {
		if o.SubOrders[i].Status.IsOpen() {
			return true
		}
	}
	return false
}

// MarkPaid records a captured payment and moves every sub-order awaiting
// payment to PAID. Repeating it for the same payment is a no-op.
func (o *Order) MarkPaid(paymentID uuid.UUID, at time.Time) error {
	if o.PaymentState == PaymentCaptured && o.PaymentID != nil && *o.PaymentID == paymentID {
		return nil
	}
	if o.PaymentState != PaymentAwaiting {
		return shared.NewDomainError("INVALID_STATE", "Order payment is already settled")
	}
	pending := 0
	for i := range o.SubOrders {
		if o.SubOrders[i].Status == StatusPendingPayment {
			pending++
		}
	}
	if pending == 0 {
		return shared.NewDomainError("INVALID_STATE", "Order has nothing awaiting payment")
	}

	o.PaymentID = &paymentID
	o.PaymentState = PaymentCaptured
	o.PaidAt = &at
	o.AddDomainEvent(NewOrderPaidEvent(o, paymentID))
	for i := range o.SubOrders {
		if o.SubOrders[i].Status == StatusPendingPayment {
			if err := o.transition(&o.SubOrders[i], StatusPaid, shared.SystemActor(), "", at); err != nil {
				return err
			}
		}
	}
	o.IncrementVersion()
	return nil
}

// AttachPayment links the payment created at checkout
func (o *Order) AttachPayment(paymentID uuid.UUID) {
	o.PaymentID = &paymentID
	o.Touch()
}

// StartPreparing moves a paid sub-order into fulfilment
func (o *Order) StartPreparing(actor shared.Actor, subOrderID uuid.UUID) error {
	sub, err := o.sellerSubOrder(actor, subOrderID)
	if err != nil {
		return err
	}
	return o.apply(sub, StatusPreparing, actor, "")
}

// Ship marks a sub-order as handed to the carrier. Tracking may be empty, in
// which case a shipment is booked with the carrier asynchronously.
func (o *Order) Ship(actor shared.Actor, subOrderID uuid.UUID, carrier, tracking string) error {
	sub, err := o.sellerSubOrder(actor, subOrderID)
	if err != nil {
		return err
	}
	if !sub.Status.CanTransitionTo(StatusShipped) {
		return invalidTransition(sub.Status, StatusShipped)
	}
	if c := strings.ToUpper(strings.TrimSpace(carrier)); c != "" {
		sub.Carrier = c
	}
	sub.TrackingNumber = strings.TrimSpace(tracking)
	if err := o.apply(sub, StatusShipped, actor, ""); err != nil {
		return err
	}
	o.AddDomainEvent(NewSubOrderShippedEvent(o, sub))
	return nil
}

// AttachShipment stores the carrier booking for a shipped sub-order
func (o *Order) AttachShipment(subOrderID uuid.UUID, carrier, tracking, labelURL string) error {
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return err
	}
	if sub.Status != StatusShipped && sub.Status != StatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Sub-order is not shipped")
	}
	sub.Carrier = strings.ToUpper(carrier)
	sub.TrackingNumber = tracking
	sub.LabelURL = labelURL
	sub.UpdatedAt = time.Now().UTC()
	o.Touch()
	o.IncrementVersion()
	return nil
}

// MarkDelivered closes fulfilment of a shipped sub-order
func (o *Order) MarkDelivered(actor shared.Actor, subOrderID uuid.UUID) error {
	sub, err := o.sellerSubOrder(actor, subOrderID)
	if err != nil {
		return err
	}
	return o.apply(sub, StatusDelivered, actor, "")
}

// CancelSubOrder cancels one seller's part before it ships. Buyers may cancel
// their own orders, sellers their own sub-orders, admins anything.
func (o *Order) CancelSubOrder(actor shared.Actor, subOrderID uuid.UUID, reason string) error {
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return err
	}
	switch {
	case actor.IsPrivileged():
	case actor.Role == shared.RoleBuyer && actor.UserID == o.BuyerID:
	case actor.OwnsStore(sub.SellerID):
	default:
		return shared.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}
	if !sub.Status.IsCancellable() {
		return shared.NewDomainError("NOT_CANCELLABLE", "Sub-order can no longer be cancelled")
	}
	sub.CancelReason = reason
	return o.apply(sub, StatusCancelled, actor, reason)
}

// CancelUnpaid cancels every sub-order still awaiting payment, used when the
// payment window expires
func (o *Order) CancelUnpaid(reason string) error {
	if o.PaymentState != PaymentAwaiting {
		return shared.NewDomainError("INVALID_STATE", "Order is already paid")
	}
	at := time.Now().UTC()
	changed := false
	for i := range o.SubOrders {
		sub := &o.SubOrders[i]
		if sub.Status != StatusPendingPayment {
			continue
		}
		sub.CancelReason = reason
		if err := o.transition(sub, StatusCancelled, shared.SystemActor(), reason, at); err != nil {
			return err
		}
		changed = true
	}
	if !changed {
		return shared.NewDomainError("INVALID_STATE", "Order has nothing awaiting payment")
	}
	o.PaymentState = PaymentVoided
	o.IncrementVersion()
	return nil
}

// RecordReturn marks items of a sub-order as returned
func (o *Order) RecordReturn(subOrderID uuid.UUID, quantities map[uuid.UUID]int) error {
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return err
	}
	for itemID, qty := range quantities {
		item, ok := sub.Item(itemID)
		if !ok {
			return shared.NewDomainError("NOT_FOUND", "Order item not found")
		}
		if qty <= 0 || qty > item.Returnable() {
			return shared.NewDomainError("INVALID_QUANTITY", "Return quantity exceeds what can be returned for "+item.SKU)
		}
	}
	for itemID, qty := range quantities {
		item, _ := sub.Item(itemID)
		item.ReturnedQty += qty
	}
	sub.UpdatedAt = time.Now().UTC()
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Refund records money returned to the buyer for a sub-order. When full is
// set, or the whole refundable amount is returned, the sub-order moves to
// REFUNDED.
func (o *Order) Refund(actor shared.Actor, subOrderID uuid.UUID, amount valueobject.Money, full bool, reason string) error {
	if !actor.IsPrivileged() {
		return shared.ErrForbidden
	}
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	refundable := sub.Refundable()
	if over, err := amount.GreaterThan(refundable); err != nil || over {
		return shared.NewDomainError("REFUND_EXCEEDS_TOTAL", "Refund exceeds the refundable amount")
	}
	// Cancelled sub-orders keep their status; the refund only returns captured money
	settle := (full || amount.Equals(refundable)) && sub.Status != StatusCancelled
	if settle && !sub.Status.CanTransitionTo(StatusRefunded) {
		return invalidTransition(sub.Status, StatusRefunded)
	}

	sub.RefundedAmount = sub.RefundedAmount.MustAdd(amount)
	if settle {
		if err := o.apply(sub, StatusRefunded, actor, reason); err != nil {
			return err
		}
	} else {
		sub.UpdatedAt = time.Now().UTC()
		o.Touch()
		o.IncrementVersion()
	}
	o.updatePaymentState()
	return nil
}

func (o *Order) updatePaymentState() {
	if o.PaymentState == PaymentAwaiting || o.PaymentState == PaymentVoided {
		return
	}
	refunded := valueobject.Zero(o.Currency)
	for i := range o.SubOrders {
		refunded = refunded.MustAdd(o.SubOrders[i].RefundedAmount)
	}
	switch {
	case refunded.IsZero():
		o.PaymentState = PaymentCaptured
	case refunded.Amount().GreaterThanOrEqual(o.Total.Amount()):
		o.PaymentState = PaymentRefunded
	default:
		o.PaymentState = PaymentPartiallyRefunded
	}
}

// TotalRefunded sums refunds across sub-orders
func (o *Order) TotalRefunded() valueobject.Money {
	total := valueobject.Zero(o.Currency)
	for i := range o.SubOrders {
		total = total.MustAdd(o.SubOrders[i].RefundedAmount)
	}
	return total
}

// AnonymizeAddress strips personal data from the shipping address
func (o *Order) AnonymizeAddress() {
	o.ShippingAddress = o.ShippingAddress.Anonymize()
	o.Touch()
	o.IncrementVersion()
}

func (o *Order) sellerSubOrder(actor shared.Actor, subOrderID uuid.UUID) (*SubOrder, error) {
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPrivileged() && !actor.OwnsStore(sub.SellerID) {
		return nil, shared.ErrForbidden
	}
	return sub, nil
}

func (o *Order) apply(sub *SubOrder, target Status, actor shared.Actor, reason string) error {
	if err := o.transition(sub, target, actor, reason, time.Now().UTC()); err != nil {
		return err
	}
	o.IncrementVersion()
	return nil
}

// transition moves a sub-order along the table and re-derives the parent status
func (o *Order) transition(sub *SubOrder, target Status, actor shared.Actor, reason string, at time.Time) error {
	if !sub.Status.CanTransitionTo(target) {
		return invalidTransition(sub.Status, target)
	}
	from := sub.Status
	sub.Status = target
	sub.UpdatedAt = at
	switch target {
	case StatusPaid:
		sub.PaidAt = &at
	case StatusPreparing:
		sub.PreparingAt = &at
	case StatusShipped:
		sub.ShippedAt = &at
	case StatusDelivered:
		sub.DeliveredAt = &at
	case StatusCancelled:
		sub.CancelledAt = &at
	case StatusRefunded:
		sub.RefundedAt = &at
	}
	o.AddDomainEvent(NewSubOrderStatusChangedEvent(o, sub, from, actor, reason))
	o.recomputeStatus()
	o.Touch()
	return nil
}

func (o *Order) recomputeStatus() {
	statuses := make([]Status, len(o.SubOrders))
	for i := range o.SubOrders {
		statuses[i] = o.SubOrders[i].Status
	}
	next := Aggregate(statuses)
	if next == o.Status {
		return
	}
	from := o.Status
	o.Status = next
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
}

func invalidTransition(from, to Status) error {
	return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change sub-order status from %s to %s", from, to))
}

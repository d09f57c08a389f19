package order

// Status is the lifecycle state of a sub-order. The parent order reuses the
// same values, derived by Aggregate.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusPreparing      Status = "PREPARING"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
	StatusRefunded       Status = "REFUNDED"
)

var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusPaid, StatusCancelled},
	StatusPaid:           {StatusPreparing, StatusCancelled, StatusRefunded},
	StatusPreparing:      {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:        {StatusDelivered},
	StatusDelivered:      {StatusRefunded},
	StatusCancelled:      nil,
	StatusRefunded:       nil,
}

// precedence is the order in which sub-order states claim the parent status
var precedence = []Status{
	StatusRefunded,
	StatusCancelled,
	StatusDelivered,
	StatusShipped,
	StatusPreparing,
	StatusPaid,
	StatusPendingPayment,
}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks the static transition table
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports CANCELLED and REFUNDED
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// IsOpen reports whether work is still outstanding. Delivered sub-orders are
// closed even though a refund can still follow.
func (s Status) IsOpen() bool {
	return !s.IsTerminal() && s != StatusDelivered
}

// IsCancellable reports whether a buyer or seller may still cancel
func (s Status) IsCancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// Aggregate derives the parent order status: the first status in precedence
// held by any sub-order wins. An order without sub-orders is pending payment.
func Aggregate(statuses []Status) Status {
	present := make(map[Status]bool, len(statuses))
	for _, s := range statuses {
		present[s] = true
	}
	for _, s := range precedence {
		if present[s] {
			return s
		}
	}
	return StatusPendingPayment
}

// AllStatuses lists every status in lifecycle order
func AllStatuses() []Status {
	return []Status{
		StatusPendingPayment,
		StatusPaid,
		StatusPreparing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
		StatusRefunded,
	}
}

// PaymentState tracks money received for the whole order
type PaymentState string

const (
	PaymentAwaiting          PaymentState = "AWAITING"
	PaymentCaptured          PaymentState = "CAPTURED"
	PaymentPartiallyRefunded PaymentState = "PARTIALLY_REFUNDED"
	PaymentRefunded          PaymentState = "REFUNDED"
	PaymentVoided            PaymentState = "VOIDED"
)

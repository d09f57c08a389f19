package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPendingPayment: {StatusPaid, StatusCancelled},
		StatusPaid:           {StatusPreparing, StatusCancelled, StatusRefunded},
		StatusPreparing:      {StatusShipped, StatusCancelled, StatusRefunded},
		StatusShipped:        {StatusDelivered},
		StatusDelivered:      {StatusRefunded},
	}
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.False(t, StatusDelivered.IsTerminal())
	assert.False(t, Status("BOGUS").IsTerminal())
	assert.False(t, Status("BOGUS").IsValid())

	assert.True(t, StatusPreparing.IsOpen())
	assert.False(t, StatusDelivered.IsOpen())

	assert.True(t, StatusPreparing.IsCancellable())
	assert.False(t, StatusShipped.IsCancellable())
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no sub-orders", nil, StatusPendingPayment},
		{"single pending", []Status{StatusPendingPayment}, StatusPendingPayment},
		{"paid beats pending", []Status{StatusPendingPayment, StatusPaid}, StatusPaid},
		{"preparing beats paid", []Status{StatusPaid, StatusPreparing}, StatusPreparing},
		{"shipped beats preparing", []Status{StatusPreparing, StatusShipped, StatusPaid}, StatusShipped},
		{"delivered beats shipped", []Status{StatusShipped, StatusDelivered}, StatusDelivered},
		{"cancelled dominates delivered", []Status{StatusDelivered, StatusCancelled}, StatusCancelled},
		{"refunded dominates cancelled", []Status{StatusCancelled, StatusRefunded, StatusShipped}, StatusRefunded},
		{"order independent", []Status{StatusShipped, StatusPaid, StatusDelivered, StatusPreparing}, StatusDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.statuses))
		})
	}
}

package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shipping"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCarrier struct {
	code     string
	status   shipping.TrackingStatus
	bookings []shipping.ShipmentRequest
}

func (c *fakeCarrier) Code() string { return c.code }

func (c *fakeCarrier) CreateShipment(_ context.Context, req shipping.ShipmentRequest) (*shipping.Shipment, error) {
	c.bookings = append(c.bookings, req)
	return &shipping.Shipment{
		Carrier:        c.code,
		TrackingNumber: "SP-" + req.SubOrderNumber,
		LabelURL:       "https://labels.example.test/" + req.SubOrderNumber,
	}, nil
}

func (c *fakeCarrier) Track(context.Context, string) (shipping.TrackingStatus, error) {
	return c.status, nil
}

func shippedOrder(t *testing.T, tracking string) (*order.Order, *order.SubOrderShippedEvent) {
	t.Helper()
	sellerID := uuid.New()
	o := testutil.NewTestOrder(uuid.New(), uuid.New(),
		testutil.OrderLine{SellerID: sellerID, SKU: "A-1", UnitPrice: "10.00", Quantity: 3})
	require.NoError(t, o.MarkPaid(uuid.New(), time.Now().UTC()))
	sub := o.SubOrders[0]
	seller := testutil.SellerActor(sellerID)
	require.NoError(t, o.StartPreparing(seller, sub.ID))
	require.NoError(t, o.Ship(seller, sub.ID, "", tracking))

	var shipped *order.SubOrderShippedEvent
	for _, e := range o.PullDomainEvents() {
		if ev, ok := e.(*order.SubOrderShippedEvent); ok {
			shipped = ev
		}
	}
	require.NotNil(t, shipped)
	return o, shipped
}

func TestShipmentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("books a shipment for the default carrier", func(t *testing.T) {
		o, ev := shippedOrder(t, "")
		carrier := &fakeCarrier{code: CarrierStandardPost}
		orders := new(testutil.MockOrderRepository)
		orders.On("FindByIDForTenant", ctx, o.TenantID, o.ID).Return(o, nil)
		orders.On("SaveWithLock", ctx, o).Return(nil)

		h := NewShipmentHandler(orders, shipping.NewRegistry(carrier), nil, zap.NewNop())
		require.NoError(t, h.Handle(ctx, ev))

		sub := o.SubOrders[0]
		require.Len(t, carrier.bookings, 1)
		assert.Equal(t, 3, carrier.bookings[0].Parcel.Items)
		assert.Equal(t, CarrierStandardPost, sub.Carrier)
		assert.Equal(t, "SP-"+sub.Number, sub.TrackingNumber)
		assert.NotEmpty(t, sub.LabelURL)
		orders.AssertExpectations(t)
	})

	t.Run("seller supplied tracking is kept", func(t *testing.T) {
		_, ev := shippedOrder(t, "TRK-1")
		carrier := &fakeCarrier{code: CarrierStandardPost}
		orders := new(testutil.MockOrderRepository)

		h := NewShipmentHandler(orders, shipping.NewRegistry(carrier), nil, zap.NewNop())
		require.NoError(t, h.Handle(ctx, ev))

		assert.Empty(t, carrier.bookings)
		orders.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown carrier is skipped", func(t *testing.T) {
		_, ev := shippedOrder(t, "")
		orders := new(testutil.MockOrderRepository)

		h := NewShipmentHandler(orders, shipping.NewRegistry(), nil, zap.NewNop())
		assert.NoError(t, h.Handle(ctx, ev))
	})

	t.Run("rejects other events", func(t *testing.T) {
		h := NewShipmentHandler(new(testutil.MockOrderRepository), shipping.NewRegistry(), nil, zap.NewNop())
		err := h.Handle(ctx, testutil.NewTestEvent("Other", uuid.New()))
		assert.Error(t, err)
	})
}

func TestTrackingService_Track(t *testing.T) {
	ctx := context.Background()
	o, _ := shippedOrder(t, "TRK-9")
	sub := o.SubOrders[0]
	sub.Carrier = CarrierExpressCourier
	o.SubOrders[0] = sub
	carrier := &fakeCarrier{code: CarrierExpressCourier, status: shipping.TrackingDelivered}
	orders := new(testutil.MockOrderRepository)
	orders.On("FindBySubOrderID", ctx, o.TenantID, sub.ID).Return(o, nil)
	orders.On("SaveWithLock", ctx, o).Return(nil)
	publisher := new(testutil.MockEventPublisher)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	svc := NewTrackingService(orders, shipping.NewRegistry(carrier), zap.NewNop())
	svc.SetEventPublisher(publisher)

	resp, err := svc.Track(ctx, o.TenantID, sub.ID, testutil.BuyerActor(o.BuyerID))

	require.NoError(t, err)
	assert.Equal(t, shipping.TrackingDelivered, resp.TrackingStatus)
	assert.Equal(t, string(order.StatusDelivered), resp.SubOrderStatus)
	publisher.AssertExpectations(t)

	_, err = svc.Track(ctx, o.TenantID, sub.ID, testutil.BuyerActor(uuid.New()))
	assert.Equal(t, shared.ErrNotFound.Code, shared.CodeOf(err))
}

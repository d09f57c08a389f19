package order

import (
	"context"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderFixture struct {
	tenantID  uuid.UUID
	buyerID   uuid.UUID
	sellerA   uuid.UUID
	sellerB   uuid.UUID
	order     *order.Order
	repo      *testutil.MockOrderRepository
	publisher *testutil.MockEventPublisher
	svc       *Service
}

func newOrderFixture(t *testing.T, paid bool) *orderFixture {
	t.Helper()
	f := &orderFixture{
		tenantID:  uuid.New(),
		buyerID:   uuid.New(),
		sellerA:   uuid.New(),
		sellerB:   uuid.New(),
		repo:      new(testutil.MockOrderRepository),
		publisher: new(testutil.MockEventPublisher),
	}
	f.order = testutil.NewTestOrder(f.tenantID, f.buyerID,
		testutil.OrderLine{SellerID: f.sellerA, SKU: "A-1", UnitPrice: "10.00", Quantity: 1},
		testutil.OrderLine{SellerID: f.sellerB, SKU: "B-1", UnitPrice: "20.00", Quantity: 2},
	)
	if paid {
		require.NoError(t, f.order.MarkPaid(uuid.New(), time.Now().UTC()))
		f.order.ClearDomainEvents()
	}
	for _, sub := range f.order.SubOrders {
		f.repo.On("FindBySubOrderID", mock.Anything, f.tenantID, sub.ID).Return(f.order, nil)
	}
	f.repo.On("FindByIDForTenant", mock.Anything, f.tenantID, f.order.ID).Return(f.order, nil)
	f.repo.On("SaveWithLock", mock.Anything, f.order).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	f.svc = NewService(f.repo, zap.NewNop())
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func (f *orderFixture) sub(t *testing.T, sellerID uuid.UUID) *order.SubOrder {
	t.Helper()
	sub, err := f.order.SubOrderForSeller(sellerID)
	require.NoError(t, err)
	return sub
}

func TestService_Get_Visibility(t *testing.T) {
	f := newOrderFixture(t, false)
	ctx := context.Background()

	resp, err := f.svc.Get(ctx, f.tenantID, f.order.ID, testutil.BuyerActor(f.buyerID))
	require.NoError(t, err)
	assert.Equal(t, "PENDING_PAYMENT", resp.Status)
	assert.Len(t, resp.SubOrders, 2)

	_, err = f.svc.Get(ctx, f.tenantID, f.order.ID, testutil.SellerActor(f.sellerA))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.tenantID, f.order.ID, testutil.BuyerActor(uuid.New()))
	assert.Equal(t, "NOT_FOUND", shared.CodeOf(err))
}

func TestService_SellerFulfilment(t *testing.T) {
	f := newOrderFixture(t, true)
	ctx := context.Background()
	seller := testutil.SellerActor(f.sellerA)
	subA := f.sub(t, f.sellerA)

	resp, err := f.svc.StartPreparing(ctx, f.tenantID, subA.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, "PREPARING", resp.Status)

	resp, err = f.svc.Ship(ctx, f.tenantID, subA.ID, ShipRequest{Carrier: "dpd", TrackingNumber: "TRK1"}, seller)
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", resp.Status)
	assert.Equal(t, "DPD", f.sub(t, f.sellerA).Carrier)

	resp, err = f.svc.MarkDelivered(ctx, f.tenantID, subA.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", resp.Status)
	assert.Equal(t, "PAID", string(f.sub(t, f.sellerB).Status))
	f.publisher.AssertNumberOfCalls(t, "Publish", 3)
}

func TestService_Ship_OtherSellerForbidden(t *testing.T) {
	f := newOrderFixture(t, true)
	subB := f.sub(t, f.sellerB)

	_, err := f.svc.StartPreparing(context.Background(), f.tenantID, subB.ID, testutil.SellerActor(f.sellerA))
	assert.Equal(t, "FORBIDDEN", shared.CodeOf(err))
	f.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestService_Cancel_ByBuyerDominatesParent(t *testing.T) {
	f := newOrderFixture(t, true)
	subA := f.sub(t, f.sellerA)

	resp, err := f.svc.Cancel(context.Background(), f.tenantID, subA.ID, CancelRequest{Reason: "changed my mind"}, testutil.BuyerActor(f.buyerID))
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "changed my mind", resp.SubOrders[0].CancelReason+resp.SubOrders[1].CancelReason)
}

func TestService_ListForSeller(t *testing.T) {
	f := newOrderFixture(t, true)
	seller := testutil.SellerActor(f.sellerA)
	views := []order.SubOrderView{{SubOrder: *f.sub(t, f.sellerA), OrderID: f.order.ID, OrderNumber: f.order.Number}}
	f.repo.On("FindSubOrdersForSeller", mock.Anything, f.tenantID, f.sellerA,
		mock.MatchedBy(func(s *order.Status) bool { return s != nil && *s == order.StatusPaid }),
		mock.Anything).Return(views, int64(1), nil)

	page, err := f.svc.ListForSeller(context.Background(), f.tenantID, OrderListFilter{Status: "PAID"}, seller)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, f.order.Number, page.Items[0].OrderNumber)

	_, err = f.svc.ListForSeller(context.Background(), f.tenantID, OrderListFilter{}, testutil.BuyerActor(f.buyerID))
	assert.Equal(t, "NOT_A_SELLER", shared.CodeOf(err))
}

func TestService_Settlement(t *testing.T) {
	f := newOrderFixture(t, true)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	f.repo.On("Settlement", mock.Anything, f.tenantID, f.sellerA, from, to.Add(24*time.Hour)).Return(&order.Settlement{
		SellerID:   f.sellerA,
		From:       from,
		To:         to.Add(24 * time.Hour),
		Currency:   "EUR",
		SubOrders:  2,
		Gross:      testutil.EUR("100.00"),
		Commission: testutil.EUR("10.00"),
		Refunded:   testutil.EUR("0"),
		Payout:     testutil.EUR("90.00"),
	}, nil)

	resp, err := f.svc.Settlement(context.Background(), f.tenantID, f.sellerA, SettlementRequest{From: from, To: to}, testutil.SellerActor(f.sellerA))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.SubOrders)
	assert.Equal(t, "90.00", resp.Payout.Amount().StringFixed(2))

	_, err = f.svc.Settlement(context.Background(), f.tenantID, f.sellerA, SettlementRequest{From: from, To: to}, testutil.SellerActor(f.sellerB))
	assert.Equal(t, "FORBIDDEN", shared.CodeOf(err))
}

func TestService_ExpireUnpaid(t *testing.T) {
	f := newOrderFixture(t, false)
	paid := newOrderFixture(t, true)
	f.repo.On("FindUnpaidPlacedBefore", mock.Anything, mock.AnythingOfType("time.Time"), 50).
		Return([]order.Order{*f.order, *paid.order}, nil)
	f.repo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	n, err := f.svc.ExpireUnpaid(context.Background(), 30*time.Minute, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.publisher.AssertNumberOfCalls(t, "Publish", 1)
}

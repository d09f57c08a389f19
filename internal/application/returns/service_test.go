package returns

import (
	"context"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubRefunder pays out once per reference, like the payment service
type stubRefunder struct {
	amounts    []valueobject.Money
	references []string
	err        error
}

func (r *stubRefunder) Refund(_ context.Context, _, _ uuid.UUID, amount valueobject.Money, reference, _ string) (*payment.Payment, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, seen := range r.references {
		if seen == reference {
			r.references = append(r.references, reference)
			return &payment.Payment{}, nil
		}
	}
	r.references = append(r.references, reference)
	r.amounts = append(r.amounts, amount)
	return &payment.Payment{}, nil
}

// cloneOrder copies an order deep enough that refunding one copy leaves the
// other as it was loaded
func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.SubOrders = make([]order.SubOrder, len(o.SubOrders))
	for i, sub := range o.SubOrders {
		sub.Items = append([]order.Item(nil), sub.Items...)
		c.SubOrders[i] = sub
	}
	return &c
}

func cloneReturn(r *returns.ReturnRequest) *returns.ReturnRequest {
	c := *r
	c.Items = append([]returns.ReturnItem(nil), r.Items...)
	return &c
}

type returnsFixture struct {
	order    *order.Order
	sub      uuid.UUID
	buyer    shared.Actor
	seller   shared.Actor
	orders   *testutil.MockOrderRepository
	returns  *testutil.MockReturnRepository
	disputes *testutil.MockDisputeRepository
	recorder *txscope.MemoryRecorder
	refunder *stubRefunder
	scope    *txscope.NoOpTransactionScope
}

// newReturnsFixture builds a delivered single-seller order of two units
func newReturnsFixture(t *testing.T) *returnsFixture {
	t.Helper()
	sellerID := uuid.New()
	buyerID := uuid.New()
	o := testutil.NewTestOrder(uuid.New(), buyerID,
		testutil.OrderLine{SellerID: sellerID, SKU: "MUG", UnitPrice: "10.00", Quantity: 2})
	seller := testutil.SellerActor(sellerID)
	sub := o.SubOrders[0].ID
	require.NoError(t, o.MarkPaid(uuid.New(), time.Now().UTC()))
	require.NoError(t, o.StartPreparing(seller, sub))
	require.NoError(t, o.Ship(seller, sub, "STANDARD_POST", "TRK-1"))
	require.NoError(t, o.MarkDelivered(seller, sub))
	o.ClearDomainEvents()

	f := &returnsFixture{
		order:    o,
		sub:      sub,
		buyer:    testutil.BuyerActor(buyerID),
		seller:   seller,
		orders:   new(testutil.MockOrderRepository),
		returns:  new(testutil.MockReturnRepository),
		disputes: new(testutil.MockDisputeRepository),
		recorder: &txscope.MemoryRecorder{},
		refunder: &stubRefunder{},
	}
	f.scope = txscope.NewNoOpTransactionScope(txscope.StaticRepositories{
		OrderRepo:   f.orders,
		ReturnRepo:  f.returns,
		DisputeRepo: f.disputes,
		Recorder:    f.recorder,
	})
	return f
}

func (f *returnsFixture) returnService() *ReturnService {
	return NewReturnService(f.scope, f.returns, f.orders, f.refunder, 0, zap.NewNop())
}

func (f *returnsFixture) itemID() uuid.UUID {
	return f.order.SubOrders[0].Items[0].ID
}

func TestReturnService_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a return", func(t *testing.T) {
		f := newReturnsFixture(t)
		f.orders.On("FindBySubOrderID", ctx, f.order.TenantID, f.sub).Return(f.order, nil)
		f.returns.On("FindBySubOrder", ctx, f.order.TenantID, f.sub).Return([]returns.ReturnRequest{}, nil)
		f.returns.On("Save", ctx, mock.AnythingOfType("*returns.ReturnRequest")).Return(nil)

		resp, err := f.returnService().Request(ctx, f.order.TenantID, CreateReturnRequest{
			SubOrderID: f.sub,
			Items:      []ReturnItemRequest{{OrderItemID: f.itemID(), Quantity: 1}},
			Reason:     "cracked",
		}, f.buyer)

		require.NoError(t, err)
		assert.Equal(t, string(returns.ReturnRequested), resp.Status)
		assert.True(t, resp.RefundAmount.Equals(f.order.SubOrders[0].Items[0].RefundFor(1)))
	})

	t.Run("quantities held by open returns count", func(t *testing.T) {
		f := newReturnsFixture(t)
		open, err := returns.NewReturnRequest(f.order, f.sub, f.buyer,
			[]returns.ItemQuantity{{OrderItemID: f.itemID(), Quantity: 2}}, "first", 0, nil, time.Now().UTC())
		require.NoError(t, err)
		f.orders.On("FindBySubOrderID", ctx, f.order.TenantID, f.sub).Return(f.order, nil)
		f.returns.On("FindBySubOrder", ctx, f.order.TenantID, f.sub).Return([]returns.ReturnRequest{*open}, nil)

		_, err = f.returnService().Request(ctx, f.order.TenantID, CreateReturnRequest{
			SubOrderID: f.sub,
			Items:      []ReturnItemRequest{{OrderItemID: f.itemID(), Quantity: 1}},
			Reason:     "second",
		}, f.buyer)

		assert.Equal(t, "INVALID_QUANTITY", shared.CodeOf(err))
	})

	t.Run("other buyers cannot see the order", func(t *testing.T) {
		f := newReturnsFixture(t)
		f.orders.On("FindBySubOrderID", ctx, f.order.TenantID, f.sub).Return(f.order, nil)

		_, err := f.returnService().Request(ctx, f.order.TenantID, CreateReturnRequest{
			SubOrderID: f.sub,
			Items:      []ReturnItemRequest{{OrderItemID: f.itemID(), Quantity: 1}},
			Reason:     "mine",
		}, testutil.BuyerActor(uuid.New()))

		assert.Equal(t, shared.ErrNotFound.Code, shared.CodeOf(err))
	})
}

func TestReturnService_Refund(t *testing.T) {
	ctx := context.Background()

	received := func(t *testing.T, f *returnsFixture, qty int) *returns.ReturnRequest {
		r, err := returns.NewReturnRequest(f.order, f.sub, f.buyer,
			[]returns.ItemQuantity{{OrderItemID: f.itemID(), Quantity: qty}}, "broken", 0, nil, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, r.Approve(f.seller, ""))
		require.NoError(t, r.MarkReceived(f.seller))
		r.ClearDomainEvents()
		return r
	}

	t.Run("partial return keeps the sub-order delivered", func(t *testing.T) {
		f := newReturnsFixture(t)
		r := received(t, f, 1)
		f.returns.On("FindByIDForTenant", ctx, f.order.TenantID, r.ID).Return(r, nil)
		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil)
		f.returns.On("SaveWithLock", ctx, r).Return(nil)
		f.orders.On("SaveWithLock", ctx, f.order).Return(nil)

		resp, err := f.returnService().Refund(ctx, f.order.TenantID, r.ID, f.seller)

		require.NoError(t, err)
		assert.Equal(t, string(returns.ReturnRefunded), resp.Status)
		require.Len(t, f.refunder.amounts, 1)
		assert.True(t, f.refunder.amounts[0].Equals(r.RefundAmount))
		assert.Equal(t, order.StatusDelivered, f.order.SubOrders[0].Status)
		assert.Equal(t, 1, f.order.SubOrders[0].Items[0].ReturnedQty)
		assert.Equal(t, order.PaymentPartiallyRefunded, f.order.PaymentState)
		assert.Contains(t, f.recorder.Types(), returns.EventTypeReturnStatusChanged)
	})

	t.Run("full return refunds the sub-order", func(t *testing.T) {
		f := newReturnsFixture(t)
		r := received(t, f, 2)
		f.returns.On("FindByIDForTenant", ctx, f.order.TenantID, r.ID).Return(r, nil)
		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil)
		f.returns.On("SaveWithLock", ctx, r).Return(nil)
		f.orders.On("SaveWithLock", ctx, f.order).Return(nil)

		_, err := f.returnService().Refund(ctx, f.order.TenantID, r.ID, f.seller)

		require.NoError(t, err)
		assert.Equal(t, order.StatusRefunded, f.order.SubOrders[0].Status)
		assert.Equal(t, order.StatusRefunded, f.order.Status)
	})

	t.Run("retry after a failed save pays out once", func(t *testing.T) {
		f := newReturnsFixture(t)
		r := received(t, f, 1)
		retryReturn := cloneReturn(r)
		retryOrder := cloneOrder(f.order)
		f.returns.On("FindByIDForTenant", ctx, f.order.TenantID, r.ID).Return(r, nil).Once()
		f.returns.On("FindByIDForTenant", ctx, f.order.TenantID, r.ID).Return(retryReturn, nil).Once()
		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil).Once()
		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(retryOrder, nil).Once()
		f.returns.On("SaveWithLock", ctx, mock.Anything).Return(nil)
		f.orders.On("SaveWithLock", ctx, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
		f.orders.On("SaveWithLock", ctx, mock.Anything).Return(nil).Once()
		svc := f.returnService()

		_, err := svc.Refund(ctx, f.order.TenantID, r.ID, f.seller)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		resp, err := svc.Refund(ctx, f.order.TenantID, r.ID, f.seller)
		require.NoError(t, err)
		assert.Equal(t, string(returns.ReturnRefunded), resp.Status)

		reference := "return:" + r.ID.String()
		assert.Equal(t, []string{reference, reference}, f.refunder.references)
		require.Len(t, f.refunder.amounts, 1)
		assert.Equal(t, 1, retryOrder.SubOrders[0].Items[0].ReturnedQty)
	})

	t.Run("unit by unit returns settle the whole line", func(t *testing.T) {
		f := newReturnsFixture(t)
		sub, err := f.order.SubOrder(f.sub)
		require.NoError(t, err)
		// an odd cent on a 2-unit line: gross 24.61 splits into 12.31 and 12.30
		sub.Items[0].Vat = sub.Items[0].Vat.MustAdd(testutil.EUR("0.01"))
		sub.Vat = sub.Vat.MustAdd(testutil.EUR("0.01"))
		sub.Total = sub.Total.MustAdd(testutil.EUR("0.01"))
		gross := sub.Items[0].Net.MustAdd(sub.Items[0].Vat)

		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil)
		f.returns.On("SaveWithLock", ctx, mock.Anything).Return(nil)
		f.orders.On("SaveWithLock", ctx, f.order).Return(nil)
		svc := f.returnService()

		for unit := 0; unit < 2; unit++ {
			r := received(t, f, 1)
			f.returns.On("FindByIDForTenant", ctx, f.order.TenantID, r.ID).Return(r, nil)
			_, err := svc.Refund(ctx, f.order.TenantID, r.ID, f.seller)
			require.NoError(t, err)
		}

		require.Len(t, f.refunder.amounts, 2)
		assert.True(t, f.refunder.amounts[0].MustAdd(f.refunder.amounts[1]).Equals(gross))
		assert.True(t, sub.RefundedAmount.Equals(gross))
		assert.Equal(t, order.StatusRefunded, sub.Status)
	})

	t.Run("requested return cannot be refunded", func(t *testing.T) {
		f := newReturnsFixture(t)
		r, err := returns.NewReturnRequest(f.order, f.sub, f.buyer,
			[]returns.ItemQuantity{{OrderItemID: f.itemID(), Quantity: 1}}, "broken", 0, nil, time.Now().UTC())
		require.NoError(t, err)
		f.returns.On("FindByIDForTenant", ctx, f.order.TenantID, r.ID).Return(r, nil)

		_, err = f.returnService().Refund(ctx, f.order.TenantID, r.ID, f.seller)

		assert.Equal(t, "INVALID_STATE", shared.CodeOf(err))
		assert.Empty(t, f.refunder.amounts)
	})
}

func TestReturnService_Approve(t *testing.T) {
	ctx := context.Background()
	f := newReturnsFixture(t)
	r, err := returns.NewReturnRequest(f.order, f.sub, f.buyer,
		[]returns.ItemQuantity{{OrderItemID: f.itemID(), Quantity: 1}}, "broken", 0, nil, time.Now().UTC())
	require.NoError(t, err)
	r.ClearDomainEvents()
	f.returns.On("FindByIDForTenant", ctx, f.order.TenantID, r.ID).Return(r, nil)
	f.returns.On("SaveWithLock", ctx, r).Return(nil)

	svc := f.returnService()
	_, err = svc.Approve(ctx, f.order.TenantID, r.ID, DecisionRequest{}, f.buyer)
	assert.Equal(t, shared.ErrForbidden.Code, shared.CodeOf(err))

	resp, err := svc.Approve(ctx, f.order.TenantID, r.ID, DecisionRequest{Note: "ok"}, f.seller)
	require.NoError(t, err)
	assert.Equal(t, string(returns.ReturnApproved), resp.Status)
}

func TestDisputeService(t *testing.T) {
	ctx := context.Background()

	newService := func(f *returnsFixture) *DisputeService {
		return NewDisputeService(f.scope, f.disputes, f.returns, f.orders, f.refunder, zap.NewNop())
	}

	t.Run("one active dispute per sub-order", func(t *testing.T) {
		f := newReturnsFixture(t)
		f.orders.On("FindBySubOrderID", ctx, f.order.TenantID, f.sub).Return(f.order, nil)
		f.disputes.On("ExistsActiveForSubOrder", ctx, f.order.TenantID, f.sub).Return(true, nil)

		_, err := newService(f).Open(ctx, f.order.TenantID, OpenDisputeRequest{SubOrderID: f.sub, Reason: "never came"}, f.buyer)

		assert.Equal(t, "DISPUTE_EXISTS", shared.CodeOf(err))
	})

	t.Run("concurrent open losing on the unique index is DISPUTE_EXISTS", func(t *testing.T) {
		f := newReturnsFixture(t)
		f.orders.On("FindBySubOrderID", ctx, f.order.TenantID, f.sub).Return(f.order, nil)
		f.disputes.On("ExistsActiveForSubOrder", ctx, f.order.TenantID, f.sub).Return(false, nil)
		f.disputes.On("Create", ctx, mock.AnythingOfType("*returns.Dispute")).Return(shared.ErrAlreadyExists).Once()

		_, err := newService(f).Open(ctx, f.order.TenantID, OpenDisputeRequest{SubOrderID: f.sub, Reason: "never came"}, f.buyer)

		assert.Equal(t, "DISPUTE_EXISTS", shared.CodeOf(err))
		f.disputes.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("resolution for the buyer refunds the remainder", func(t *testing.T) {
		f := newReturnsFixture(t)
		d, err := returns.OpenDispute(f.order, f.sub, f.buyer, "not as described", nil)
		require.NoError(t, err)
		d.ClearDomainEvents()
		remaining := f.order.SubOrders[0].Refundable()
		f.disputes.On("FindByIDForTenant", ctx, f.order.TenantID, d.ID).Return(d, nil)
		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil)
		f.disputes.On("SaveWithLock", ctx, d).Return(nil)
		f.orders.On("SaveWithLock", ctx, f.order).Return(nil)

		resp, err := newService(f).Resolve(ctx, f.order.TenantID, d.ID,
			ResolveDisputeRequest{InFavourOfBuyer: true, Resolution: "refund"}, testutil.AdminActor())

		require.NoError(t, err)
		assert.Equal(t, string(returns.DisputeResolvedBuyer), resp.Status)
		require.Len(t, f.refunder.amounts, 1)
		assert.True(t, f.refunder.amounts[0].Equals(remaining))
		assert.Equal(t, order.StatusRefunded, f.order.SubOrders[0].Status)
	})

	t.Run("resolution for the seller moves no money", func(t *testing.T) {
		f := newReturnsFixture(t)
		d, err := returns.OpenDispute(f.order, f.sub, f.buyer, "not as described", nil)
		require.NoError(t, err)
		f.disputes.On("FindByIDForTenant", ctx, f.order.TenantID, d.ID).Return(d, nil)
		f.disputes.On("SaveWithLock", ctx, d).Return(nil)

		resp, err := newService(f).Resolve(ctx, f.order.TenantID, d.ID,
			ResolveDisputeRequest{Resolution: "item as listed"}, testutil.AdminActor())

		require.NoError(t, err)
		assert.Equal(t, string(returns.DisputeResolvedSeller), resp.Status)
		assert.Empty(t, f.refunder.amounts)
	})

	t.Run("auto close stale disputes", func(t *testing.T) {
		f := newReturnsFixture(t)
		d, err := returns.OpenDispute(f.order, f.sub, f.buyer, "silence", nil)
		require.NoError(t, err)
		d.LastActivityAt = time.Now().UTC().Add(-40 * 24 * time.Hour)
		fresh, err := returns.OpenDispute(f.order, f.sub, f.buyer, "fresh", nil)
		require.NoError(t, err)
		f.disputes.On("FindStale", ctx, mock.AnythingOfType("time.Time"), 50).
			Return([]returns.Dispute{*d, *fresh}, nil)
		f.disputes.On("SaveWithLock", ctx, mock.AnythingOfType("*returns.Dispute")).Return(nil)

		closed, err := newService(f).AutoCloseStale(ctx, 30*24*time.Hour, 50)

		require.NoError(t, err)
		assert.Equal(t, 1, closed)
		f.disputes.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})
}

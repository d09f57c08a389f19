package payment

import (
	"context"
	"testing"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	result    *payment.ReturnResult
	verifyErr error
	refunds   []payment.RefundRequest
}

func (p *stubProvider) Name() string { return "simulated" }

func (p *stubProvider) CreateCheckout(context.Context, payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	return &payment.CheckoutSession{}, nil
}

func (p *stubProvider) VerifyReturn(context.Context, string) (*payment.ReturnResult, error) {
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.result, nil
}

func (p *stubProvider) Refund(_ context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	p.refunds = append(p.refunds, req)
	return &payment.RefundResult{RefundRef: "rf-1", Amount: req.Amount}, nil
}

type paymentFixture struct {
	order    *order.Order
	payment  *payment.Payment
	provider *stubProvider
	payments *testutil.MockPaymentRepository
	orders   *testutil.MockOrderRepository
	recorder *txscope.MemoryRecorder
	svc      *Service
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	tenantID := uuid.New()
	o := testutil.NewTestOrder(tenantID, uuid.New(),
		testutil.OrderLine{SellerID: uuid.New(), SKU: "A-1", UnitPrice: "10.00", Quantity: 2})
	p, err := payment.NewPayment(tenantID, o.ID, o.BuyerID, o.Total, "simulated")
	require.NoError(t, err)
	o.AttachPayment(p.ID)
	o.ClearDomainEvents()

	f := &paymentFixture{
		order:    o,
		payment:  p,
		provider: &stubProvider{},
		payments: new(testutil.MockPaymentRepository),
		orders:   new(testutil.MockOrderRepository),
		recorder: &txscope.MemoryRecorder{},
	}
	f.provider.result = &payment.ReturnResult{
		PaymentID:   p.ID,
		OrderID:     o.ID,
		ProviderRef: "sim-ref",
		Amount:      p.Amount,
		Outcome:     payment.OutcomeSucceeded,
	}
	scope := txscope.NewNoOpTransactionScope(txscope.StaticRepositories{
		OrderRepo:   f.orders,
		PaymentRepo: f.payments,
		Recorder:    f.recorder,
	})
	f.svc = NewService(scope, f.payments, f.orders, payment.NewRegistry(f.provider), zap.NewNop())
	return f
}

func TestService_HandleReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("success marks the order paid", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.payments.On("FindByID", ctx, f.payment.ID).Return(f.payment, nil)
		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil)
		f.payments.On("SaveWithLock", ctx, f.payment).Return(nil)
		f.orders.On("SaveWithLock", ctx, f.order).Return(nil)

		resp, err := f.svc.HandleReturn(ctx, ReturnRequest{Token: "t"})

		require.NoError(t, err)
		assert.False(t, resp.AlreadyProcessed)
		assert.Equal(t, string(payment.StatusSucceeded), resp.Payment.Status)
		assert.Equal(t, "sim-ref", resp.Payment.ProviderRef)
		assert.Equal(t, order.StatusPaid, f.order.Status)
		assert.Equal(t, order.PaymentCaptured, f.order.PaymentState)
		assert.Contains(t, f.recorder.Types(), payment.EventTypePaymentSucceeded)
		assert.Contains(t, f.recorder.Types(), order.EventTypeOrderPaid)
		f.payments.AssertExpectations(t)
		f.orders.AssertExpectations(t)
	})

	t.Run("replay changes nothing", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.payments.On("FindByID", ctx, f.payment.ID).Return(f.payment, nil)
		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil)
		f.payments.On("SaveWithLock", ctx, f.payment).Return(nil).Once()
		f.orders.On("SaveWithLock", ctx, f.order).Return(nil).Once()

		_, err := f.svc.HandleReturn(ctx, ReturnRequest{Token: "t"})
		require.NoError(t, err)
		recorded := len(f.recorder.Events)

		resp, err := f.svc.HandleReturn(ctx, ReturnRequest{Token: "t"})

		require.NoError(t, err)
		assert.True(t, resp.AlreadyProcessed)
		assert.Len(t, f.recorder.Events, recorded)
		f.payments.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})

	t.Run("declined payment leaves the order unpaid", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.provider.result.Outcome = payment.OutcomeFailed
		f.payments.On("FindByID", ctx, f.payment.ID).Return(f.payment, nil)
		f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil)
		f.payments.On("SaveWithLock", ctx, f.payment).Return(nil)

		resp, err := f.svc.HandleReturn(ctx, ReturnRequest{Token: "t"})

		require.NoError(t, err)
		assert.Equal(t, string(payment.StatusFailed), resp.Payment.Status)
		assert.Equal(t, order.StatusPendingPayment, f.order.Status)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("amount mismatch is rejected", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.provider.result.Amount = testutil.EUR("1.00")
		f.payments.On("FindByID", ctx, f.payment.ID).Return(f.payment, nil)

		_, err := f.svc.HandleReturn(ctx, ReturnRequest{Token: "t"})

		assert.Equal(t, "PAYMENT_TOKEN_MISMATCH", shared.CodeOf(err))
		assert.Equal(t, payment.StatusPending, f.payment.Status)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.provider.verifyErr = payment.ErrTokenExpired

		_, err := f.svc.HandleReturn(ctx, ReturnRequest{Token: "t"})

		assert.Equal(t, "INVALID_PAYMENT_TOKEN", shared.CodeOf(err))
	})

	t.Run("unknown provider", func(t *testing.T) {
		f := newPaymentFixture(t)

		_, err := f.svc.HandleReturn(ctx, ReturnRequest{Token: "t", Provider: "nope"})

		assert.Equal(t, "UNKNOWN_PAYMENT_PROVIDER", shared.CodeOf(err))
	})
}

func TestService_GetForOrder(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.orders.On("FindByIDForTenant", ctx, f.order.TenantID, f.order.ID).Return(f.order, nil)
	f.payments.On("FindByOrder", ctx, f.order.TenantID, f.order.ID).Return(f.payment, nil)

	resp, err := f.svc.GetForOrder(ctx, f.order.TenantID, f.order.ID, testutil.BuyerActor(f.order.BuyerID))
	require.NoError(t, err)
	assert.Equal(t, f.payment.ID, resp.ID)

	_, err = f.svc.GetForOrder(ctx, f.order.TenantID, f.order.ID, testutil.BuyerActor(uuid.New()))
	assert.Equal(t, shared.ErrNotFound.Code, shared.CodeOf(err))
}

func TestService_Refund(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	_, err := f.payment.Succeed("sim-ref", f.order.PlacedAt)
	require.NoError(t, err)
	f.payment.ClearDomainEvents()
	f.payments.On("FindByOrder", ctx, f.order.TenantID, f.order.ID).Return(f.payment, nil)
	f.payments.On("SaveWithLock", ctx, f.payment).Return(nil)

	p, err := f.svc.Refund(ctx, f.order.TenantID, f.order.ID, testutil.EUR("5.00"), "return:1", "damaged")

	require.NoError(t, err)
	assert.Equal(t, payment.StatusPartiallyRefunded, p.Status)
	require.Len(t, f.provider.refunds, 1)
	assert.Equal(t, "sim-ref", f.provider.refunds[0].ProviderRef)
	assert.Equal(t, "return:1", f.provider.refunds[0].Reference)
	assert.Equal(t, []string{payment.EventTypePaymentRefunded}, f.recorder.Types())

	_, err = f.svc.Refund(ctx, f.order.TenantID, f.order.ID, p.Refundable().MustAdd(testutil.EUR("0.01")), "return:2", "too much")
	assert.Equal(t, "REFUND_EXCEEDS_TOTAL", shared.CodeOf(err))
	assert.Len(t, f.provider.refunds, 1)
}

func TestService_Refund_SameReferenceRefundsOnce(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	_, err := f.payment.Succeed("sim-ref", f.order.PlacedAt)
	require.NoError(t, err)
	f.payment.ClearDomainEvents()
	f.payments.On("FindByOrder", ctx, f.order.TenantID, f.order.ID).Return(f.payment, nil)
	f.payments.On("SaveWithLock", ctx, f.payment).Return(nil)

	first, err := f.svc.Refund(ctx, f.order.TenantID, f.order.ID, testutil.EUR("5.00"), "return:7", "return 7")
	require.NoError(t, err)
	again, err := f.svc.Refund(ctx, f.order.TenantID, f.order.ID, testutil.EUR("5.00"), "return:7", "return 7")
	require.NoError(t, err)

	assert.Len(t, f.provider.refunds, 1)
	assert.Len(t, again.Refunds, 1)
	assert.Equal(t, "5.00", first.RefundedAmount.Amount().StringFixed(2))
	assert.Equal(t, "5.00", again.RefundedAmount.Amount().StringFixed(2))
	f.payments.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

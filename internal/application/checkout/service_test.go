package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	cartapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/cache"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticTree struct{ tree *catalog.CategoryTree }

func (s staticTree) Tree(context.Context, uuid.UUID) (*catalog.CategoryTree, error) {
	return s.tree, nil
}

type staticRules struct{ snapshot *pricing.RuleSnapshot }

func (s staticRules) Snapshot(context.Context, uuid.UUID) (*pricing.RuleSnapshot, error) {
	return s.snapshot, nil
}

type staticFlags bool

func (f staticFlags) IsEnabled(context.Context, string, featureflag.EvalContext) bool { return bool(f) }

type stubProvider struct {
	err   error
	calls int
}

func (p *stubProvider) Name() string { return "simulated" }

func (p *stubProvider) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &payment.CheckoutSession{
		ProviderRef: "sim-" + req.PaymentID.String(),
		RedirectURL: "https://pay.example.test/checkout?p=" + req.PaymentID.String(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (p *stubProvider) VerifyReturn(context.Context, string) (*payment.ReturnResult, error) {
	return nil, payment.ErrInvalidToken
}

func (p *stubProvider) Refund(context.Context, payment.RefundRequest) (*payment.RefundResult, error) {
	return nil, payment.ErrRefundNotSupported
}

type checkoutFixture struct {
	tenantID uuid.UUID
	buyer    shared.Actor
	product  *catalog.Product
	cart     *cart.Cart
	carts    *testutil.MockCartRepository
	products *testutil.MockProductRepository
	sellers  *testutil.MockSellerRepository
	orders   *testutil.MockOrderRepository
	payments *testutil.MockPaymentRepository
	promos   *testutil.MockPromotionRepository
	recorder *txscope.MemoryRecorder
	provider *stubProvider
	store    *cache.InMemoryIdempotencyStore
	svc      *Service
}

func newCheckoutFixture(t *testing.T, stock int, flags FlagChecker) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		tenantID: uuid.New(),
		buyer:    testutil.BuyerActor(uuid.New()),
		carts:    new(testutil.MockCartRepository),
		products: new(testutil.MockProductRepository),
		sellers:  new(testutil.MockSellerRepository),
		orders:   new(testutil.MockOrderRepository),
		payments: new(testutil.MockPaymentRepository),
		promos:   new(testutil.MockPromotionRepository),
		recorder: &txscope.MemoryRecorder{},
		provider: &stubProvider{},
		store:    cache.NewInMemoryIdempotencyStore(),
	}
	t.Cleanup(func() { _ = f.store.Close() })

	seller, err := catalog.NewSeller(f.tenantID, uuid.New(), "Amber Shop", catalog.SellerTypeBusiness, "PL", "shop@example.com")
	require.NoError(t, err)
	require.NoError(t, seller.Approve())
	category, err := catalog.NewCategory(f.tenantID, "Jewellery", nil)
	require.NoError(t, err)
	product, err := catalog.NewProduct(f.tenantID, seller.ID, category.ID, "AMB-1", "Amber ring", testutil.EUR("10.00"), stock)
	require.NoError(t, err)
	require.NoError(t, product.Publish(seller))
	f.product = product

	c, err := cart.NewCart(f.tenantID, f.buyer.UserID, valueobject.EUR, time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(cart.Item{
		ProductID:  product.ID,
		SellerID:   seller.ID,
		CategoryID: category.ID,
		SKU:        product.SKU,
		Name:       product.Name,
		UnitPrice:  testutil.EUR("9.00"), // stale price, refreshed at checkout
		Quantity:   2,
	}, time.Hour))
	f.cart = c

	f.carts.On("FindByIDForTenant", mock.Anything, f.tenantID, c.ID).Return(c, nil)
	f.carts.On("Delete", mock.Anything, f.tenantID, c.ID).Return(nil)
	f.products.On("FindByIDs", mock.Anything, f.tenantID, mock.Anything).Return([]catalog.Product{*product}, nil)
	f.products.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)
	f.sellers.On("FindByIDs", mock.Anything, f.tenantID, mock.Anything).Return([]catalog.Seller{*seller}, nil)
	f.orders.On("GenerateOrderNumber", mock.Anything, f.tenantID, mock.AnythingOfType("time.Time")).Return("MKT-20250101-00001", nil)
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.payments.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)
	f.payments.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)

	scope := txscope.NewNoOpTransactionScope(txscope.StaticRepositories{
		SellerRepo:    f.sellers,
		ProductRepo:   f.products,
		PromotionRepo: f.promos,
		CartRepo:      f.carts,
		OrderRepo:     f.orders,
		PaymentRepo:   f.payments,
		Recorder:      f.recorder,
	})
	quoter := cartapp.NewQuoter(f.sellers,
		staticTree{catalog.NewCategoryTree([]catalog.Category{*category})},
		staticRules{testutil.TestRuleSnapshot(f.tenantID)})
	f.svc = NewService(ServiceConfig{
		TxScope:     scope,
		CartRepo:    f.carts,
		PaymentRepo: f.payments,
		Quoter:      quoter,
		Providers:   payment.NewRegistry(f.provider),
		Idempotency: f.store,
		Flags:       flags,
		Config:      Config{PaymentReturnURL: "http://localhost:8080/api/v1/payments/return"},
		Logger:      zap.NewNop(),
	})
	return f
}

func (f *checkoutFixture) request() CheckoutRequest {
	a := testutil.TestAddress()
	return CheckoutRequest{
		CartID: f.cart.ID,
		Address: AddressRequest{
			FullName:   a.FullName,
			Line1:      a.Line1,
			City:       a.City,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Phone:      a.Phone,
		},
	}
}

func TestService_Checkout_PlacesOrder(t *testing.T) {
	f := newCheckoutFixture(t, 5, staticFlags(true))

	resp, err := f.svc.Checkout(context.Background(), f.tenantID, f.request(), "", f.buyer)
	require.NoError(t, err)

	assert.Equal(t, "MKT-20250101-00001", resp.Order.Number)
	assert.Equal(t, "PENDING_PAYMENT", resp.Order.Status)
	require.Len(t, resp.Order.SubOrders, 1)
	assert.Equal(t, "MKT-20250101-00001-1", resp.Order.SubOrders[0].Number)
	// current price 10.00 x 2, not the stale 9.00 from the cart
	assert.Equal(t, "20.00", resp.Order.Subtotal.Amount().StringFixed(2))
	assert.Equal(t, "simulated", resp.Payment.Provider)
	assert.Contains(t, resp.Payment.RedirectURL, resp.Payment.ID.String())
	assert.Equal(t, resp.Payment.ID, *resp.Order.PaymentID)

	f.products.AssertCalled(t, "SaveWithLock", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.ID == f.product.ID && p.Reserved == 2
	}))
	f.carts.AssertCalled(t, "Delete", mock.Anything, f.tenantID, f.cart.ID)
	assert.Contains(t, f.recorder.Types(), "OrderPlaced")
}

func TestService_Checkout_IdempotentReplay(t *testing.T) {
	f := newCheckoutFixture(t, 5, nil)
	ctx := context.Background()

	first, err := f.svc.Checkout(ctx, f.tenantID, f.request(), "key-1", f.buyer)
	require.NoError(t, err)
	second, err := f.svc.Checkout(ctx, f.tenantID, f.request(), "key-1", f.buyer)
	require.NoError(t, err)

	assert.False(t, first.Replayed)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, first.Payment.RedirectURL, second.Payment.RedirectURL)
	f.orders.AssertNumberOfCalls(t, "GenerateOrderNumber", 1)
	assert.Equal(t, 1, f.provider.calls)
}

func TestService_Checkout_Disabled(t *testing.T) {
	f := newCheckoutFixture(t, 5, staticFlags(false))

	_, err := f.svc.Checkout(context.Background(), f.tenantID, f.request(), "", f.buyer)
	assert.Equal(t, "CHECKOUT_DISABLED", shared.CodeOf(err))
	f.carts.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Checkout_InsufficientStockReleasesKey(t *testing.T) {
	f := newCheckoutFixture(t, 1, nil)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, f.tenantID, f.request(), "key-2", f.buyer)
	assert.Equal(t, "INSUFFICIENT_STOCK", shared.CodeOf(err))
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	// the failed attempt does not block a retry with the same key
	claimed, err := f.store.Claim(ctx, "checkout:"+f.tenantID.String()+":"+f.buyer.UserID.String()+":key-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestService_Checkout_OtherBuyersCart(t *testing.T) {
	f := newCheckoutFixture(t, 5, nil)

	_, err := f.svc.Checkout(context.Background(), f.tenantID, f.request(), "", testutil.BuyerActor(uuid.New()))
	assert.Equal(t, "NOT_FOUND", shared.CodeOf(err))
}

func TestService_Checkout_UnknownProvider(t *testing.T) {
	f := newCheckoutFixture(t, 5, nil)
	req := f.request()
	req.Provider = "paypal"

	_, err := f.svc.Checkout(context.Background(), f.tenantID, req, "", f.buyer)
	assert.Equal(t, "UNKNOWN_PAYMENT_PROVIDER", shared.CodeOf(err))
}

func TestService_Checkout_ProviderFailure(t *testing.T) {
	f := newCheckoutFixture(t, 5, nil)
	f.provider.err = errors.New("gateway timeout")

	_, err := f.svc.Checkout(context.Background(), f.tenantID, f.request(), "", f.buyer)
	assert.Equal(t, "PAYMENT_UNAVAILABLE", shared.CodeOf(err))
	f.payments.AssertCalled(t, "SaveWithLock", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
		return p.Status == payment.StatusFailed
	}))
}

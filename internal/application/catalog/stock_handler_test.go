package catalog

import (
	"context"
	"testing"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// trackingScope runs on fixed repositories and remembers how each unit of
// work ended
type trackingScope struct {
	*txscope.NoOpTransactionScope
	results []error
}

func (s *trackingScope) Execute(ctx context.Context, fn func(repos txscope.TransactionalRepositories) error) error {
	err := s.NoOpTransactionScope.Execute(ctx, fn)
	s.results = append(s.results, err)
	return err
}

type stockFixture struct {
	tenantID uuid.UUID
	order    *order.Order
	product  *catalog.Product
	orders   *testutil.MockOrderRepository
	products *testutil.MockProductRepository
	scope    *trackingScope
	handler  *StockHandler
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	tenantID := uuid.New()
	sellerID := uuid.New()

	p, err := catalog.NewProduct(tenantID, sellerID, uuid.New(), "MUG-1", "Mug", testutil.EUR("12.00"), 10)
	require.NoError(t, err)
	p.Status = catalog.ProductStatusActive
	require.NoError(t, p.Reserve(3))

	o := testutil.NewTestOrder(tenantID, uuid.New(), testutil.OrderLine{
		SellerID: sellerID, ProductID: p.ID, SKU: "MUG-1", UnitPrice: "12.00", Quantity: 3,
	})

	f := &stockFixture{
		tenantID: tenantID,
		order:    o,
		product:  p,
		orders:   new(testutil.MockOrderRepository),
		products: new(testutil.MockProductRepository),
	}
	f.scope = &trackingScope{NoOpTransactionScope: txscope.NewNoOpTransactionScope(txscope.StaticRepositories{
		ProductRepo: f.products,
	})}
	f.handler = NewStockHandler(f.scope, f.orders, zap.NewNop())
	f.orders.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)
	f.products.On("FindByIDForTenant", mock.Anything, tenantID, p.ID).Return(p, nil)
	f.products.On("SaveWithLock", mock.Anything, p).Return(nil)
	return f
}

func (f *stockFixture) event(to order.Status) *order.SubOrderStatusChangedEvent {
	sub := &f.order.SubOrders[0]
	return order.NewSubOrderStatusChangedEvent(f.order, &order.SubOrder{
		ID: sub.ID, Number: sub.Number, SellerID: sub.SellerID, Status: to,
	}, order.StatusPaid, shared.SystemActor(), "")
}

func TestStockHandler_ShippedFulfilsReservation(t *testing.T) {
	f := newStockFixture(t)

	require.NoError(t, f.handler.Handle(context.Background(), f.event(order.StatusShipped)))
	assert.Equal(t, 7, f.product.Stock)
	assert.Equal(t, 0, f.product.Reserved)
	require.Len(t, f.scope.results, 1)
	assert.NoError(t, f.scope.results[0])
}

func TestStockHandler_CancelledReleasesReservation(t *testing.T) {
	f := newStockFixture(t)

	require.NoError(t, f.handler.Handle(context.Background(), f.event(order.StatusCancelled)))
	assert.Equal(t, 10, f.product.Stock)
	assert.Equal(t, 0, f.product.Reserved)
	assert.Equal(t, 10, f.product.Available())
}

func TestStockHandler_IgnoresOtherTransitions(t *testing.T) {
	f := newStockFixture(t)

	require.NoError(t, f.handler.Handle(context.Background(), f.event(order.StatusPreparing)))
	f.orders.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 3, f.product.Reserved)
}

func TestStockHandler_RejectsUnexpectedEvent(t *testing.T) {
	f := newStockFixture(t)
	err := f.handler.Handle(context.Background(), order.NewOrderPaidEvent(f.order, uuid.New()))
	assert.Error(t, err)
}

func TestStockHandler_SettlesAllItemsInOneTransaction(t *testing.T) {
	tenantID := uuid.New()
	sellerID := uuid.New()
	mug, err := catalog.NewProduct(tenantID, sellerID, uuid.New(), "MUG-1", "Mug", testutil.EUR("12.00"), 10)
	require.NoError(t, err)
	pot, err := catalog.NewProduct(tenantID, sellerID, uuid.New(), "POT-1", "Pot", testutil.EUR("30.00"), 4)
	require.NoError(t, err)
	mug.Status = catalog.ProductStatusActive
	pot.Status = catalog.ProductStatusActive
	require.NoError(t, mug.Reserve(2))
	require.NoError(t, pot.Reserve(1))
	o := testutil.NewTestOrder(tenantID, uuid.New(),
		testutil.OrderLine{SellerID: sellerID, ProductID: mug.ID, SKU: "MUG-1", UnitPrice: "12.00", Quantity: 2},
		testutil.OrderLine{SellerID: sellerID, ProductID: pot.ID, SKU: "POT-1", UnitPrice: "30.00", Quantity: 1},
	)

	orders := new(testutil.MockOrderRepository)
	products := new(testutil.MockProductRepository)
	orders.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)
	products.On("FindByIDForTenant", mock.Anything, tenantID, mug.ID).Return(mug, nil)
	products.On("FindByIDForTenant", mock.Anything, tenantID, pot.ID).Return(pot, nil)
	products.On("SaveWithLock", mock.Anything, mug).Return(nil).Once()
	products.On("SaveWithLock", mock.Anything, pot).Return(shared.ErrConcurrencyConflict).Once()
	scope := &trackingScope{NoOpTransactionScope: txscope.NewNoOpTransactionScope(txscope.StaticRepositories{
		ProductRepo: products,
	})}

	sub := &o.SubOrders[0]
	event := order.NewSubOrderStatusChangedEvent(o, &order.SubOrder{
		ID: sub.ID, Number: sub.Number, SellerID: sub.SellerID, Status: order.StatusShipped,
	}, order.StatusPaid, shared.SystemActor(), "")

	err = NewStockHandler(scope, orders, zap.NewNop()).Handle(context.Background(), event)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	// The mug save and the failed pot save share one unit of work, which
	// ends in error and is rolled back as a whole
	require.Len(t, scope.results, 1)
	assert.ErrorIs(t, scope.results[0], shared.ErrConcurrencyConflict)
	products.AssertNumberOfCalls(t, "SaveWithLock", 2)
}

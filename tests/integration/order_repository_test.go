package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
)

// placeOrder stores a two-seller order numbered through the repository
func placeOrder(t *testing.T, tdb *TestDB, m *Marketplace, second uuid.UUID) *order.Order {
	t.Helper()
	ctx := context.Background()
	repo := persistence.NewGormOrderRepository(tdb.DB)

	number, err := repo.GenerateOrderNumber(ctx, m.Tenant.ID, time.Now())
	require.NoError(t, err)

	quote := testutil.NewTestQuote(m.Tenant.ID,
		testutil.OrderLine{SellerID: m.Seller.ID, SKU: "MUG-1", UnitPrice: "12.50", Quantity: 2},
		testutil.OrderLine{SellerID: second, SKU: "POT-1", UnitPrice: "40.00", Quantity: 1},
	)
	o, err := order.NewOrder(m.Tenant.ID, m.Buyer.ID, number, testutil.TestAddress(), quote)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))
	return o
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	m := tdb.SeedMarketplace()
	other := tdb.CreateSeller(m.Tenant.ID, "Second store")
	repo := persistence.NewGormOrderRepository(tdb.DB)
	ctx := context.Background()

	placed := placeOrder(t, tdb, m, other.ID)

	found, err := repo.FindByIDForTenant(ctx, m.Tenant.ID, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.Number, found.Number)
	assert.Equal(t, order.PaymentAwaiting, found.PaymentState)
	require.Len(t, found.SubOrders, 2)
	assert.True(t, placed.Total.Equals(found.Total))

	bySub, err := repo.FindBySubOrderID(ctx, m.Tenant.ID, placed.SubOrders[1].ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, bySub.ID)

	views, total, err := repo.FindSubOrdersForSeller(ctx, m.Tenant.ID, other.ID, nil, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, placed.Number, views[0].OrderNumber)
	assert.Equal(t, other.ID, views[0].SellerID)
}

func TestOrderRepository_TenantIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	m := tdb.SeedMarketplace()
	foreign := tdb.SeedMarketplace()
	repo := persistence.NewGormOrderRepository(tdb.DB)
	ctx := context.Background()

	placed := placeOrder(t, tdb, m, m.Seller.ID)

	_, err := repo.FindByIDForTenant(ctx, foreign.Tenant.ID, placed.ID)
	assert.Equal(t, "NOT_FOUND", shared.CodeOf(err))

	_, err = repo.FindBySubOrderID(ctx, foreign.Tenant.ID, placed.SubOrders[0].ID)
	assert.Equal(t, "NOT_FOUND", shared.CodeOf(err))

	_, total, err := repo.FindSubOrdersForSeller(ctx, foreign.Tenant.ID, m.Seller.ID, nil, shared.Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestOrderRepository_GenerateOrderNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	m := tdb.SeedMarketplace()
	repo := persistence.NewGormOrderRepository(tdb.DB)
	ctx := context.Background()
	prefix := "MKT-" + time.Now().UTC().Format("20060102") + "-"

	first := placeOrder(t, tdb, m, m.Seller.ID)
	assert.Equal(t, prefix+"00001", first.Number)

	second := placeOrder(t, tdb, m, m.Seller.ID)
	assert.Equal(t, prefix+"00002", second.Number)

	// Sequences are per tenant
	foreign := tdb.SeedMarketplace()
	next, err := repo.GenerateOrderNumber(ctx, foreign.Tenant.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, prefix+"00001", next)
}

func TestOrderRepository_SaveWithLock(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	m := tdb.SeedMarketplace()
	repo := persistence.NewGormOrderRepository(tdb.DB)
	ctx := context.Background()

	placed := placeOrder(t, tdb, m, m.Seller.ID)

	fresh, err := repo.FindByIDForTenant(ctx, m.Tenant.ID, placed.ID)
	require.NoError(t, err)
	stale, err := repo.FindByIDForTenant(ctx, m.Tenant.ID, placed.ID)
	require.NoError(t, err)

	require.NoError(t, fresh.MarkPaid(uuid.New(), time.Now().UTC()))
	require.NoError(t, repo.SaveWithLock(ctx, fresh))

	require.NoError(t, stale.MarkPaid(uuid.New(), time.Now().UTC()))
	err = repo.SaveWithLock(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	paid, err := repo.FindByIDForTenant(ctx, m.Tenant.ID, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentCaptured, paid.PaymentState)
	assert.Equal(t, *fresh.PaymentID, *paid.PaymentID)
	for _, sub := range paid.SubOrders {
		assert.Equal(t, order.StatusPaid, sub.Status)
	}
}

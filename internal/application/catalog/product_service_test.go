package catalog

import (
	"context"
	"testing"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type productFixture struct {
	tenantID   uuid.UUID
	seller     *catalog.Seller
	category   *catalog.Category
	actor      shared.Actor
	products   *testutil.MockProductRepository
	sellers    *testutil.MockSellerRepository
	categories *testutil.MockCategoryRepository
	svc        *ProductService
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	tenantID := uuid.New()
	seller, err := catalog.NewSeller(tenantID, uuid.New(), "Nordic Home", catalog.SellerTypeBusiness, "SE", "shop@nordic.example")
	require.NoError(t, err)
	require.NoError(t, seller.Approve())
	seller.ClearDomainEvents()

	f := &productFixture{
		tenantID:   tenantID,
		seller:     seller,
		category:   mustCategory(t, tenantID, "Lamps", nil),
		actor:      testutil.SellerActor(seller.ID),
		products:   new(testutil.MockProductRepository),
		sellers:    new(testutil.MockSellerRepository),
		categories: new(testutil.MockCategoryRepository),
	}
	f.svc = NewProductService(f.products, f.sellers, f.categories, valueobject.EUR, zap.NewNop())
	f.sellers.On("FindByIDForTenant", mock.Anything, tenantID, seller.ID).Return(seller, nil)
	f.categories.On("FindByIDForTenant", mock.Anything, tenantID, f.category.ID).Return(f.category, nil)
	return f
}

func (f *productFixture) draft(t *testing.T, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(f.tenantID, f.seller.ID, f.category.ID, "LAMP-1", "Desk lamp", testutil.EUR("49.90"), stock)
	require.NoError(t, err)
	p.ClearDomainEvents()
	f.products.On("FindByIDForTenant", mock.Anything, f.tenantID, p.ID).Return(p, nil)
	return p
}

func TestProductService_Create(t *testing.T) {
	f := newProductFixture(t)
	f.products.On("ExistsBySKU", mock.Anything, f.tenantID, f.seller.ID, "LAMP-1").Return(false, nil)
	f.products.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := f.svc.Create(context.Background(), f.tenantID, CreateProductRequest{
		SKU:         "lamp-1",
		Name:        "Desk lamp",
		Description: "Brass desk lamp",
		CategoryID:  f.category.ID,
		Price:       decimal.RequireFromString("49.90"),
		Stock:       5,
		WeightGrams: 1200,
	}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "LAMP-1", resp.SKU)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, valueobject.EUR, resp.Price.Currency())
	assert.Equal(t, 1200, resp.WeightGrams)
	assert.Equal(t, 5, resp.Available)
}

func TestProductService_Create_Errors(t *testing.T) {
	t.Run("duplicate sku in the same store", func(t *testing.T) {
		f := newProductFixture(t)
		f.products.On("ExistsBySKU", mock.Anything, f.tenantID, f.seller.ID, "LAMP-1").Return(true, nil)

		_, err := f.svc.Create(context.Background(), f.tenantID, CreateProductRequest{
			SKU: "LAMP-1", Name: "Lamp", CategoryID: f.category.ID, Price: decimal.NewFromInt(10),
		}, f.actor)
		assert.Equal(t, "SKU_TAKEN", shared.CodeOf(err))
	})

	t.Run("buyer cannot create listings", func(t *testing.T) {
		f := newProductFixture(t)
		_, err := f.svc.Create(context.Background(), f.tenantID, CreateProductRequest{
			SKU: "X", Name: "X", CategoryID: f.category.ID, Price: decimal.NewFromInt(1),
		}, testutil.BuyerActor(uuid.New()))
		assert.Equal(t, "NOT_A_SELLER", shared.CodeOf(err))
	})

	t.Run("inactive category", func(t *testing.T) {
		f := newProductFixture(t)
		require.NoError(t, f.category.Deactivate())
		_, err := f.svc.Create(context.Background(), f.tenantID, CreateProductRequest{
			SKU: "X", Name: "X", CategoryID: f.category.ID, Price: decimal.NewFromInt(1),
		}, f.actor)
		assert.Equal(t, "CATEGORY_INACTIVE", shared.CodeOf(err))
	})
}

func TestProductService_Publish(t *testing.T) {
	f := newProductFixture(t)
	p := f.draft(t, 3)
	f.products.On("Save", mock.Anything, p).Return(nil)

	resp, err := f.svc.Publish(context.Background(), f.tenantID, p.ID, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)

	require.NoError(t, f.seller.Suspend("chargebacks"))
	p2 := f.draft(t, 1)
	_, err = f.svc.Publish(context.Background(), f.tenantID, p2.ID, f.actor)
	assert.Equal(t, "SELLER_NOT_ACTIVE", shared.CodeOf(err))
}

func TestProductService_OwnershipEnforced(t *testing.T) {
	f := newProductFixture(t)
	p := f.draft(t, 3)
	other := testutil.SellerActor(uuid.New())

	_, err := f.svc.ChangePrice(context.Background(), f.tenantID, p.ID, ChangePriceRequest{Price: decimal.NewFromInt(5)}, other)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	f.products.On("Save", mock.Anything, p).Return(nil)
	resp, err := f.svc.Archive(context.Background(), f.tenantID, p.ID, testutil.AdminActor())
	require.NoError(t, err)
	assert.Equal(t, "ARCHIVED", resp.Status)
}

func TestProductService_AdjustStock(t *testing.T) {
	f := newProductFixture(t)
	p := f.draft(t, 3)
	p.Status = catalog.ProductStatusActive
	require.NoError(t, p.Reserve(2))
	f.products.On("SaveWithLock", mock.Anything, p).Return(nil)

	resp, err := f.svc.AdjustStock(context.Background(), f.tenantID, p.ID, AdjustStockRequest{Delta: 4}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Stock)
	assert.Equal(t, 5, resp.Available)

	_, err = f.svc.AdjustStock(context.Background(), f.tenantID, p.ID, AdjustStockRequest{Delta: -6}, f.actor)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestProductService_ListForSeller(t *testing.T) {
	f := newProductFixture(t)
	p := f.draft(t, 1)
	f.products.On("Search", mock.Anything, f.tenantID, mock.MatchedBy(func(s catalog.ProductSearch) bool {
		return s.SellerID != nil && *s.SellerID == f.seller.ID && s.Status != nil && *s.Status == catalog.ProductStatusDraft
	}), mock.Anything).Return([]catalog.Product{*p}, int64(1), nil)

	page, err := f.svc.ListForSeller(context.Background(), f.tenantID, ProductListFilter{Status: "DRAFT"}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, p.ID, page.Items[0].ID)
}

package testutil

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ret returns the i-th mocked value, or the zero value when it was set to nil
func ret[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}
	return zero
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*identity.User](args, 0), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, email)
	return ret[*identity.User](args, 0), args.Error(1)
}

func (m *MockUserRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter identity.UserFilter) ([]identity.User, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return ret[[]identity.User](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, tenantID, email)
	return ret[bool](args, 0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	return ret[*identity.Tenant](args, 0), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	return ret[*identity.Tenant](args, 0), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context) ([]identity.Tenant, error) {
	args := m.Called(ctx)
	return ret[[]identity.Tenant](args, 0), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*catalog.Category](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	args := m.Called(ctx, tenantID)
	return ret[[]catalog.Category](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) FindDescendants(ctx context.Context, tenantID, id uuid.UUID) ([]catalog.Category, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[[]catalog.Category](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) ExistsBySlug(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID, slug string) (bool, error) {
	args := m.Called(ctx, tenantID, parentID, slug)
	return ret[bool](args, 0), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) SaveAll(ctx context.Context, categories []*catalog.Category) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

// MockSellerRepository is a mock implementation of catalog.SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Seller, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*catalog.Seller](args, 0), args.Error(1)
}

func (m *MockSellerRepository) FindByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*catalog.Seller, error) {
	args := m.Called(ctx, tenantID, userID)
	return ret[*catalog.Seller](args, 0), args.Error(1)
}

func (m *MockSellerRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Seller, error) {
	args := m.Called(ctx, tenantID, ids)
	return ret[[]catalog.Seller](args, 0), args.Error(1)
}

func (m *MockSellerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Seller, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return ret[[]catalog.Seller](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockSellerRepository) ExistsBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	args := m.Called(ctx, tenantID, slug)
	return ret[bool](args, 0), args.Error(1)
}

func (m *MockSellerRepository) Save(ctx context.Context, seller *catalog.Seller) error {
	args := m.Called(ctx, seller)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*catalog.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return ret[[]catalog.Product](args, 0), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, tenantID uuid.UUID, search catalog.ProductSearch, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, tenantID, search, filter)
	return ret[[]catalog.Product](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, tenantID, sellerID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, tenantID, sellerID, sku)
	return ret[bool](args, 0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockPromotionRepository is a mock implementation of pricing.PromotionRepository
type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pricing.Promotion, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*pricing.Promotion](args, 0), args.Error(1)
}

func (m *MockPromotionRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*pricing.Promotion, error) {
	args := m.Called(ctx, tenantID, code)
	return ret[*pricing.Promotion](args, 0), args.Error(1)
}

func (m *MockPromotionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pricing.Promotion, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return ret[[]pricing.Promotion](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockPromotionRepository) Save(ctx context.Context, promotion *pricing.Promotion) error {
	args := m.Called(ctx, promotion)
	return args.Error(0)
}

func (m *MockPromotionRepository) SaveWithLock(ctx context.Context, promotion *pricing.Promotion) error {
	args := m.Called(ctx, promotion)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of cart.Repository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*cart.Cart](args, 0), args.Error(1)
}

func (m *MockCartRepository) FindByBuyer(ctx context.Context, tenantID, buyerID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, tenantID, buyerID)
	return ret[*cart.Cart](args, 0), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return ret[int64](args, 0), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*order.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*order.Order, error) {
	args := m.Called(ctx, tenantID, number)
	return ret[*order.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) FindBySubOrderID(ctx context.Context, tenantID, subOrderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tenantID, subOrderID)
	return ret[*order.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) FindForBuyer(ctx context.Context, tenantID, buyerID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, tenantID, buyerID, filter)
	return ret[[]order.Order](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return ret[[]order.Order](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockOrderRepository) FindSubOrdersForSeller(ctx context.Context, tenantID, sellerID uuid.UUID, status *order.Status, filter shared.Filter) ([]order.SubOrderView, int64, error) {
	args := m.Called(ctx, tenantID, sellerID, status, filter)
	return ret[[]order.SubOrderView](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockOrderRepository) FindUnpaidPlacedBefore(ctx context.Context, before time.Time, limit int) ([]order.Order, error) {
	args := m.Called(ctx, before, limit)
	return ret[[]order.Order](args, 0), args.Error(1)
}

func (m *MockOrderRepository) CountOpenForUser(ctx context.Context, tenantID, userID uuid.UUID, sellerID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID, sellerID)
	return ret[int64](args, 0), args.Error(1)
}

func (m *MockOrderRepository) AnonymizeBuyerAddresses(ctx context.Context, tenantID, buyerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, buyerID)
	return ret[int64](args, 0), args.Error(1)
}

func (m *MockOrderRepository) Settlement(ctx context.Context, tenantID, sellerID uuid.UUID, from, to time.Time) (*order.Settlement, error) {
	args := m.Called(ctx, tenantID, sellerID, from, to)
	return ret[*order.Settlement](args, 0), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error) {
	args := m.Called(ctx, tenantID, at)
	return ret[string](args, 0), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	return ret[*payment.Payment](args, 0), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*payment.Payment](args, 0), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, tenantID, orderID)
	return ret[*payment.Payment](args, 0), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockReturnRepository is a mock implementation of returns.ReturnRepository
type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*returns.ReturnRequest, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*returns.ReturnRequest](args, 0), args.Error(1)
}

func (m *MockReturnRepository) FindBySubOrder(ctx context.Context, tenantID, subOrderID uuid.UUID) ([]returns.ReturnRequest, error) {
	args := m.Called(ctx, tenantID, subOrderID)
	return ret[[]returns.ReturnRequest](args, 0), args.Error(1)
}

func (m *MockReturnRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter returns.ReturnFilter) ([]returns.ReturnRequest, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return ret[[]returns.ReturnRequest](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockReturnRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]returns.ReturnRequest, error) {
	args := m.Called(ctx, tenantID, userID)
	return ret[[]returns.ReturnRequest](args, 0), args.Error(1)
}

func (m *MockReturnRepository) Save(ctx context.Context, r *returns.ReturnRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReturnRepository) SaveWithLock(ctx context.Context, r *returns.ReturnRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockDisputeRepository is a mock implementation of returns.DisputeRepository
type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*returns.Dispute, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*returns.Dispute](args, 0), args.Error(1)
}

func (m *MockDisputeRepository) ExistsActiveForSubOrder(ctx context.Context, tenantID, subOrderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, subOrderID)
	return ret[bool](args, 0), args.Error(1)
}

func (m *MockDisputeRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter returns.DisputeFilter) ([]returns.Dispute, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return ret[[]returns.Dispute](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockDisputeRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]returns.Dispute, error) {
	args := m.Called(ctx, tenantID, userID)
	return ret[[]returns.Dispute](args, 0), args.Error(1)
}

func (m *MockDisputeRepository) CountActiveForUser(ctx context.Context, tenantID, userID uuid.UUID, sellerID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID, sellerID)
	return ret[int64](args, 0), args.Error(1)
}

func (m *MockDisputeRepository) FindStale(ctx context.Context, before time.Time, limit int) ([]returns.Dispute, error) {
	args := m.Called(ctx, before, limit)
	return ret[[]returns.Dispute](args, 0), args.Error(1)
}

func (m *MockDisputeRepository) Create(ctx context.Context, d *returns.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDisputeRepository) Save(ctx context.Context, d *returns.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDisputeRepository) SaveWithLock(ctx context.Context, d *returns.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockFeatureFlagRepository is a mock implementation of featureflag.Repository
type MockFeatureFlagRepository struct {
	mock.Mock
}

func (m *MockFeatureFlagRepository) FindByID(ctx context.Context, id uuid.UUID) (*featureflag.FeatureFlag, error) {
	args := m.Called(ctx, id)
	return ret[*featureflag.FeatureFlag](args, 0), args.Error(1)
}

func (m *MockFeatureFlagRepository) FindByKey(ctx context.Context, key string) (*featureflag.FeatureFlag, error) {
	args := m.Called(ctx, key)
	return ret[*featureflag.FeatureFlag](args, 0), args.Error(1)
}

func (m *MockFeatureFlagRepository) FindAll(ctx context.Context) ([]featureflag.FeatureFlag, error) {
	args := m.Called(ctx)
	return ret[[]featureflag.FeatureFlag](args, 0), args.Error(1)
}

func (m *MockFeatureFlagRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return ret[bool](args, 0), args.Error(1)
}

func (m *MockFeatureFlagRepository) Save(ctx context.Context, flag *featureflag.FeatureFlag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

func (m *MockFeatureFlagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entries ...*audit.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockAuditRepository) Find(ctx context.Context, tenantID uuid.UUID, filter audit.Filter) ([]audit.Entry, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return ret[[]audit.Entry](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockAuditRepository) FindAboutUser(ctx context.Context, tenantID, userID uuid.UUID) ([]audit.Entry, error) {
	args := m.Called(ctx, tenantID, userID)
	return ret[[]audit.Entry](args, 0), args.Error(1)
}

func (m *MockAuditRepository) ScrubUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID)
	return ret[int64](args, 0), args.Error(1)
}

// MockDataRequestRepository is a mock implementation of privacy.Repository
type MockDataRequestRepository struct {
	mock.Mock
}

func (m *MockDataRequestRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*privacy.DataRequest, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*privacy.DataRequest](args, 0), args.Error(1)
}

func (m *MockDataRequestRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]privacy.DataRequest, error) {
	args := m.Called(ctx, tenantID, userID)
	return ret[[]privacy.DataRequest](args, 0), args.Error(1)
}

func (m *MockDataRequestRepository) FindAll(ctx context.Context, tenantID uuid.UUID, status *privacy.RequestStatus, filter shared.Filter) ([]privacy.DataRequest, int64, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return ret[[]privacy.DataRequest](args, 0), ret[int64](args, 1), args.Error(2)
}

func (m *MockDataRequestRepository) ExistsOpen(ctx context.Context, tenantID, userID uuid.UUID, typ privacy.RequestType) (bool, error) {
	args := m.Called(ctx, tenantID, userID, typ)
	return ret[bool](args, 0), args.Error(1)
}

func (m *MockDataRequestRepository) FindPending(ctx context.Context, limit int) ([]privacy.DataRequest, error) {
	args := m.Called(ctx, limit)
	return ret[[]privacy.DataRequest](args, 0), args.Error(1)
}

func (m *MockDataRequestRepository) Save(ctx context.Context, r *privacy.DataRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockDataRequestRepository) SaveWithLock(ctx context.Context, r *privacy.DataRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockRuleRepository is a mock implementation of pricing.RuleRepository
type MockRuleRepository[R any] struct {
	mock.Mock
}

func (m *MockRuleRepository[R]) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*R, error) {
	args := m.Called(ctx, tenantID, id)
	return ret[*R](args, 0), args.Error(1)
}

func (m *MockRuleRepository[R]) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]R, error) {
	args := m.Called(ctx, tenantID)
	return ret[[]R](args, 0), args.Error(1)
}

func (m *MockRuleRepository[R]) Save(ctx context.Context, rule *R) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository[R]) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var (
	_ identity.UserRepository     = (*MockUserRepository)(nil)
	_ identity.TenantRepository   = (*MockTenantRepository)(nil)
	_ catalog.CategoryRepository  = (*MockCategoryRepository)(nil)
	_ catalog.SellerRepository    = (*MockSellerRepository)(nil)
	_ catalog.ProductRepository   = (*MockProductRepository)(nil)
	_ pricing.PromotionRepository = (*MockPromotionRepository)(nil)
	_ pricing.VatRuleRepository   = (*MockRuleRepository[pricing.VatRule])(nil)
	_ cart.Repository             = (*MockCartRepository)(nil)
	_ order.Repository            = (*MockOrderRepository)(nil)
	_ payment.Repository          = (*MockPaymentRepository)(nil)
	_ returns.ReturnRepository    = (*MockReturnRepository)(nil)
	_ returns.DisputeRepository   = (*MockDisputeRepository)(nil)
	_ featureflag.Repository      = (*MockFeatureFlagRepository)(nil)
	_ audit.Repository            = (*MockAuditRepository)(nil)
	_ privacy.Repository          = (*MockDataRequestRepository)(nil)
	_ shared.EventPublisher       = (*MockEventPublisher)(nil)
)

package privacy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	objects map[string][]byte
	err     error
}

func (m *memoryStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStore) DeleteObject(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) GenerateDownloadURL(_ context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	return "https://files.test/" + key, time.Now().Add(ttl), nil
}

type privacyFixture struct {
	tenant   uuid.UUID
	user     *identity.User
	requests *testutil.MockDataRequestRepository
	users    *testutil.MockUserRepository
	sellers  *testutil.MockSellerRepository
	orders   *testutil.MockOrderRepository
	returns  *testutil.MockReturnRepository
	disputes *testutil.MockDisputeRepository
	audit    *testutil.MockAuditRepository
	recorder *txscope.MemoryRecorder
	store    *memoryStore
}

func newPrivacyFixture(t *testing.T) *privacyFixture {
	t.Helper()
	tenant := uuid.New()
	user, err := identity.NewUser(tenant, "ann@example.com", "Ann Buyer", "correct-horse", shared.RoleBuyer)
	require.NoError(t, err)
	user.ClearDomainEvents()
	return &privacyFixture{
		tenant:   tenant,
		user:     user,
		requests: new(testutil.MockDataRequestRepository),
		users:    new(testutil.MockUserRepository),
		sellers:  new(testutil.MockSellerRepository),
		orders:   new(testutil.MockOrderRepository),
		returns:  new(testutil.MockReturnRepository),
		disputes: new(testutil.MockDisputeRepository),
		audit:    new(testutil.MockAuditRepository),
		recorder: &txscope.MemoryRecorder{},
		store:    &memoryStore{objects: map[string][]byte{}},
	}
}

func (f *privacyFixture) service() *Service {
	scope := txscope.NewNoOpTransactionScope(txscope.StaticRepositories{
		UserRepo:        f.users,
		OrderRepo:       f.orders,
		AuditRepo:       f.audit,
		DataRequestRepo: f.requests,
		Recorder:        f.recorder,
	})
	return NewService(Deps{
		TxScope:  scope,
		Requests: f.requests,
		Users:    f.users,
		Sellers:  f.sellers,
		Orders:   f.orders,
		Returns:  f.returns,
		Disputes: f.disputes,
		Audit:    f.audit,
		Store:    f.store,
	}, zap.NewNop())
}

func (f *privacyFixture) pending(t *testing.T, typ privacy.RequestType) *privacy.DataRequest {
	t.Helper()
	r, err := privacy.NewDataRequest(f.tenant, f.user.ID, typ)
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}

func TestService_Request(t *testing.T) {
	ctx := context.Background()

	t.Run("queues a request", func(t *testing.T) {
		f := newPrivacyFixture(t)
		f.requests.On("ExistsOpen", ctx, f.tenant, f.user.ID, privacy.RequestExport).Return(false, nil)
		f.requests.On("Save", ctx, mock.AnythingOfType("*privacy.DataRequest")).Return(nil)
		publisher := new(testutil.MockEventPublisher)
		publisher.On("Publish", ctx, mock.Anything).Return(nil)
		svc := f.service()
		svc.SetEventPublisher(publisher)

		resp, err := svc.Request(ctx, f.tenant, CreateRequest{Type: "EXPORT"}, testutil.BuyerActor(f.user.ID))

		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		publisher.AssertExpectations(t)
	})

	t.Run("one open request per type", func(t *testing.T) {
		f := newPrivacyFixture(t)
		f.requests.On("ExistsOpen", ctx, f.tenant, f.user.ID, privacy.RequestErasure).Return(true, nil)

		_, err := f.service().Request(ctx, f.tenant, CreateRequest{Type: "ERASURE"}, testutil.BuyerActor(f.user.ID))

		assert.ErrorIs(t, err, ErrRequestOpen)
	})
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	f := newPrivacyFixture(t)
	o := testutil.NewTestOrder(f.tenant, f.user.ID,
		testutil.OrderLine{SellerID: uuid.New(), SKU: "MUG", UnitPrice: "10.00", Quantity: 1})
	entry, err := audit.NewEntry(f.tenant, &f.user.ID, shared.RoleBuyer, "OrderPlaced", "Order", o.ID.String(), nil)
	require.NoError(t, err)
	r := f.pending(t, privacy.RequestExport)

	f.requests.On("FindPending", ctx, 10).Return([]privacy.DataRequest{*r}, nil)
	f.requests.On("SaveWithLock", ctx, mock.AnythingOfType("*privacy.DataRequest")).Return(nil)
	f.users.On("FindByIDForTenant", ctx, f.tenant, f.user.ID).Return(f.user, nil)
	f.orders.On("FindForBuyer", ctx, f.tenant, f.user.ID, mock.Anything).Return([]order.Order{*o}, int64(1), nil)
	f.returns.On("FindForUser", ctx, f.tenant, f.user.ID).Return([]returns.ReturnRequest{}, nil)
	f.disputes.On("FindForUser", ctx, f.tenant, f.user.ID).Return([]returns.Dispute{}, nil)
	f.audit.On("FindAboutUser", ctx, f.tenant, f.user.ID).Return([]audit.Entry{*entry}, nil)

	done, err := f.service().ProcessPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, done)

	key := privacy.ExportKey(f.tenant, f.user.ID, r.ID)
	require.Contains(t, f.store.objects, key)
	var doc ExportDocument
	require.NoError(t, json.Unmarshal(f.store.objects[key], &doc))
	assert.Equal(t, "ann@example.com", doc.Profile.Email)
	assert.Len(t, doc.Orders, 1)
	assert.Len(t, doc.Addresses, 1)
	assert.Len(t, doc.AuditTrail, 1)

	saved := f.requests.Calls[len(f.requests.Calls)-1].Arguments.Get(1).(*privacy.DataRequest)
	assert.Equal(t, privacy.StatusCompleted, saved.Status)
	assert.Equal(t, key, saved.ResultKey)
}

func TestService_Export_UploadFailure(t *testing.T) {
	ctx := context.Background()
	f := newPrivacyFixture(t)
	f.store.err = errors.New("bucket unavailable")
	r := f.pending(t, privacy.RequestExport)

	f.requests.On("SaveWithLock", ctx, r).Return(nil)
	f.users.On("FindByIDForTenant", ctx, f.tenant, f.user.ID).Return(f.user, nil)
	f.orders.On("FindForBuyer", ctx, f.tenant, f.user.ID, mock.Anything).Return([]order.Order{}, int64(0), nil)
	f.returns.On("FindForUser", ctx, f.tenant, f.user.ID).Return(nil, nil)
	f.disputes.On("FindForUser", ctx, f.tenant, f.user.ID).Return(nil, nil)
	f.audit.On("FindAboutUser", ctx, f.tenant, f.user.ID).Return(nil, nil)

	require.NoError(t, f.service().process(ctx, r))

	assert.Equal(t, privacy.StatusFailed, r.Status)
	assert.Contains(t, r.FailureReason, "bucket unavailable")
	assert.Empty(t, f.store.objects)
}

func TestService_Erasure(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymizes the user", func(t *testing.T) {
		f := newPrivacyFixture(t)
		r := f.pending(t, privacy.RequestErasure)
		f.requests.On("SaveWithLock", ctx, r).Return(nil)
		f.sellers.On("FindByUserID", ctx, f.tenant, f.user.ID).Return(nil, shared.ErrNotFound)
		f.orders.On("CountOpenForUser", ctx, f.tenant, f.user.ID, (*uuid.UUID)(nil)).Return(int64(0), nil)
		f.disputes.On("CountActiveForUser", ctx, f.tenant, f.user.ID, (*uuid.UUID)(nil)).Return(int64(0), nil)
		f.users.On("FindByIDForTenant", ctx, f.tenant, f.user.ID).Return(f.user, nil)
		f.users.On("Save", ctx, f.user).Return(nil)
		f.orders.On("AnonymizeBuyerAddresses", ctx, f.tenant, f.user.ID).Return(int64(2), nil)
		f.audit.On("ScrubUser", ctx, f.tenant, f.user.ID).Return(int64(5), nil)
		export := f.pending(t, privacy.RequestExport)
		require.NoError(t, export.Start(time.Now()))
		require.NoError(t, export.Complete(privacy.ExportKey(f.tenant, f.user.ID, export.ID), time.Now()))
		f.store.objects[export.ResultKey] = []byte(`{}`)
		f.requests.On("FindForUser", ctx, f.tenant, f.user.ID).Return([]privacy.DataRequest{*export, *r}, nil)

		require.NoError(t, f.service().process(ctx, r))

		assert.Equal(t, privacy.StatusCompleted, r.Status)
		assert.Empty(t, f.store.objects)
		assert.True(t, f.user.IsAnonymized())
		assert.Equal(t, identity.AnonymizedEmail(f.user.ID), f.user.Email)
		assert.Equal(t, identity.AnonymizedName, f.user.DisplayName)
		assert.Empty(t, f.user.PasswordHash)
		f.orders.AssertExpectations(t)
		f.audit.AssertExpectations(t)
	})

	t.Run("open sub-orders reject the request", func(t *testing.T) {
		f := newPrivacyFixture(t)
		r := f.pending(t, privacy.RequestErasure)
		f.requests.On("SaveWithLock", ctx, r).Return(nil)
		f.sellers.On("FindByUserID", ctx, f.tenant, f.user.ID).Return(nil, shared.ErrNotFound)
		f.orders.On("CountOpenForUser", ctx, f.tenant, f.user.ID, (*uuid.UUID)(nil)).Return(int64(1), nil)

		require.NoError(t, f.service().process(ctx, r))

		assert.Equal(t, privacy.StatusRejected, r.Status)
		assert.Contains(t, r.RejectionReason, "sub-orders")
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("open disputes reject the request", func(t *testing.T) {
		f := newPrivacyFixture(t)
		r := f.pending(t, privacy.RequestErasure)
		f.requests.On("SaveWithLock", ctx, r).Return(nil)
		f.sellers.On("FindByUserID", ctx, f.tenant, f.user.ID).Return(nil, shared.ErrNotFound)
		f.orders.On("CountOpenForUser", ctx, f.tenant, f.user.ID, (*uuid.UUID)(nil)).Return(int64(0), nil)
		f.disputes.On("CountActiveForUser", ctx, f.tenant, f.user.ID, (*uuid.UUID)(nil)).Return(int64(1), nil)

		require.NoError(t, f.service().process(ctx, r))

		assert.Equal(t, privacy.StatusRejected, r.Status)
		assert.False(t, f.user.IsAnonymized())
	})
}

func TestService_ProcessPending_SkipsClaimedRequests(t *testing.T) {
	ctx := context.Background()
	f := newPrivacyFixture(t)
	r := f.pending(t, privacy.RequestExport)
	f.requests.On("FindPending", ctx, 5).Return([]privacy.DataRequest{*r}, nil)
	f.requests.On("SaveWithLock", ctx, mock.Anything).Return(shared.ErrConcurrencyConflict)

	done, err := f.service().ProcessPending(ctx, 5)

	require.NoError(t, err)
	assert.Zero(t, done)
	f.users.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	f := newPrivacyFixture(t)
	r := f.pending(t, privacy.RequestExport)
	require.NoError(t, r.Start(time.Now()))
	require.NoError(t, r.Complete(privacy.ExportKey(f.tenant, f.user.ID, r.ID), time.Now()))
	f.requests.On("FindByIDForTenant", ctx, f.tenant, r.ID).Return(r, nil)
	svc := f.service()

	resp, err := svc.Get(ctx, f.tenant, r.ID, testutil.BuyerActor(f.user.ID))
	require.NoError(t, err)
	assert.Contains(t, resp.DownloadURL, r.ID.String())
	require.NotNil(t, resp.DownloadExpires)

	_, err = svc.Get(ctx, f.tenant, r.ID, testutil.BuyerActor(uuid.New()))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	admin, err := svc.Get(ctx, f.tenant, r.ID, testutil.AdminActor())
	require.NoError(t, err)
	assert.Empty(t, admin.DownloadURL)
}

func TestService_Process_RequiresAdmin(t *testing.T) {
	_, err := newPrivacyFixture(t).service().Process(context.Background(), uuid.New(), uuid.New(), testutil.BuyerActor(uuid.New()))
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

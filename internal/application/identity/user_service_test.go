package identity

import (
	"context"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/auth"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_SuspendAndReactivate(t *testing.T) {
	users := new(testutil.MockUserRepository)
	publisher := new(testutil.MockEventPublisher)
	revoker := auth.NewInMemoryTokenRevoker()
	service := NewUserService(users, revoker, 24*time.Hour, zap.NewNop())
	service.SetEventPublisher(publisher)

	tenantID := uuid.New()
	user := newTestUser(t, tenantID, shared.RoleBuyer)
	admin := shared.Actor{UserID: uuid.New(), Role: shared.RoleAdmin}

	users.On("FindByIDForTenant", mock.Anything, tenantID, user.ID).Return(user, nil)
	users.On("Save", mock.Anything, user).Return(nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].(shared.ActorAware).Actor() == admin.UserID
	})).Return(nil)

	info, err := service.Suspend(context.Background(), tenantID, user.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, string(identity.UserStatusSuspended), info.Status)

	revoked, err := revoker.IsUserRevoked(context.Background(), user.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = service.Suspend(context.Background(), tenantID, user.ID, admin)
	assert.Equal(t, "INVALID_STATE", shared.CodeOf(err))

	info, err = service.Reactivate(context.Background(), tenantID, user.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, string(identity.UserStatusActive), info.Status)
	publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestUserService_SuspendSelf(t *testing.T) {
	service := NewUserService(new(testutil.MockUserRepository), nil, time.Hour, zap.NewNop())
	admin := shared.Actor{UserID: uuid.New(), Role: shared.RoleAdmin}

	_, err := service.Suspend(context.Background(), uuid.New(), admin.UserID, admin)
	assert.Equal(t, "CANNOT_SUSPEND_SELF", shared.CodeOf(err))
}

func TestUserService_List(t *testing.T) {
	users := new(testutil.MockUserRepository)
	service := NewUserService(users, nil, time.Hour, zap.NewNop())
	tenantID := uuid.New()
	role := shared.RoleSeller

	u := newTestUser(t, tenantID, shared.RoleSeller)
	users.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(f identity.UserFilter) bool {
		return f.Page == 2 && f.PageSize == 100 && *f.Role == shared.RoleSeller
	})).Return([]identity.User{*u}, int64(101), nil)

	page, err := service.List(context.Background(), ListUsersInput{
		TenantID: tenantID,
		Role:     &role,
		Filter:   shared.Filter{Page: 2, PageSize: 500},
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.TotalPages)
}

func TestTenantService(t *testing.T) {
	tenants := new(testutil.MockTenantRepository)
	service := NewTenantService(tenants, zap.NewNop())

	tenants.On("FindByCode", mock.Anything, "baltic").Return(nil, shared.ErrNotFound).Once()
	tenants.On("Save", mock.Anything, mock.AnythingOfType("*identity.Tenant")).Return(nil)

	info, err := service.Create(context.Background(), CreateTenantInput{Code: "baltic", Name: "Baltic Market", Country: "lt"})
	require.NoError(t, err)
	assert.Equal(t, "BALTIC", info.Code)
	assert.Equal(t, string(valueobject.DefaultCurrency), info.DefaultCurrency)

	existing, err := identity.NewTenant("BALTIC", "Baltic Market", "EUR", "LT")
	require.NoError(t, err)
	tenants.On("FindByCode", mock.Anything, "baltic").Return(existing, nil)

	_, err = service.Create(context.Background(), CreateTenantInput{Code: "baltic", Name: "Again", Country: "LT"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	tenants.On("FindByCode", mock.Anything, "BALTIC").Return(existing, nil)
	require.NoError(t, existing.Suspend())
	_, err = service.Resolve(context.Background(), "BALTIC")
	assert.Equal(t, "TENANT_SUSPENDED", shared.CodeOf(err))
}

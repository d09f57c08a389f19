package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	domainIdentity "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/auth"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const handlerTestPassword = "correct-horse-1"

type authRouter struct {
	engine  *gin.Engine
	users   *testutil.MockUserRepository
	sellers *testutil.MockSellerRepository
}

func newAuthRouter(tenantID uuid.UUID, actor *shared.Actor) *authRouter {
	users := new(testutil.MockUserRepository)
	sellers := new(testutil.MockSellerRepository)
	scope := txscope.NewNoOpTransactionScope(txscope.StaticRepositories{
		UserRepo:   users,
		SellerRepo: sellers,
		Recorder:   &txscope.MemoryRecorder{},
	})
	jwt := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-jwt-testing-only",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "mercato-test",
		MaxRefreshCount:        3,
	})
	svc := identity.NewAuthService(users, sellers, scope, jwt, auth.NewInMemoryTokenRevoker(),
		identity.DefaultAuthServiceConfig(), zap.NewNop())

	h := NewAuthHandler(svc)
	r := gin.New()
	g := r.Group("/auth", scoped(tenantID, actor))
	g.POST("/register", h.RegisterBuyer)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me)
	return &authRouter{engine: r, users: users, sellers: sellers}
}

func newHandlerTestUser(t *testing.T, tenantID uuid.UUID) *domainIdentity.User {
	t.Helper()
	user, err := domainIdentity.NewUser(tenantID, "jan@example.com", "Jan Kowalski", handlerTestPassword, shared.RoleBuyer)
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func TestAuthHandler_Login(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid credentials", func(t *testing.T) {
		a := newAuthRouter(tenantID, nil)
		user := newHandlerTestUser(t, tenantID)
		a.users.On("FindByEmail", mock.Anything, tenantID, "jan@example.com").Return(user, nil)
		a.users.On("Save", mock.Anything, user).Return(nil)

		w := perform(t, a.engine, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "jan@example.com",
			Password: handlerTestPassword,
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeAs[LoginResponse](t, w)
		assert.NotEmpty(t, resp.Data.Token.AccessToken)
		assert.Equal(t, "Bearer", resp.Data.Token.TokenType)
		assert.Equal(t, user.ID, resp.Data.User.ID)
		a.sellers.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong password", func(t *testing.T) {
		a := newAuthRouter(tenantID, nil)
		user := newHandlerTestUser(t, tenantID)
		a.users.On("FindByEmail", mock.Anything, tenantID, "jan@example.com").Return(user, nil)
		a.users.On("Save", mock.Anything, user).Return(nil)

		w := perform(t, a.engine, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "jan@example.com",
			Password: "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))
		assert.NotContains(t, w.Body.String(), "access_token")
	})

	t.Run("malformed email", func(t *testing.T) {
		a := newAuthRouter(tenantID, nil)

		w := perform(t, a.engine, http.MethodPost, "/auth/login", LoginRequest{Email: "jan", Password: "x"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		a.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_RegisterBuyer_EmailTaken(t *testing.T) {
	tenantID := uuid.New()
	a := newAuthRouter(tenantID, nil)
	a.users.On("ExistsByEmail", mock.Anything, tenantID, "anna@example.com").Return(true, nil)

	w := perform(t, a.engine, http.MethodPost, "/auth/register", RegisterBuyerRequest{
		Email:       "anna@example.com",
		DisplayName: "Anna",
		Password:    handlerTestPassword,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	a.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthHandler_Me(t *testing.T) {
	tenantID := uuid.New()
	user := newHandlerTestUser(t, tenantID)
	actor := testutil.BuyerActor(user.ID)
	a := newAuthRouter(tenantID, &actor)
	a.users.On("FindByIDForTenant", mock.Anything, tenantID, user.ID).Return(user, nil)

	w := perform(t, a.engine, http.MethodGet, "/auth/me", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeAs[identity.UserInfo](t, w)
	assert.Equal(t, "jan@example.com", resp.Data.Email)
	assert.Nil(t, resp.Data.SellerID)
}

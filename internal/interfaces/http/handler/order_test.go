package handler

import (
	"net/http"
	"testing"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrderRouter(tenantID uuid.UUID, actor shared.Actor, orders *testutil.MockOrderRepository) *gin.Engine {
	svc := order.NewService(orders, zap.NewNop())
	h := NewOrderHandler(svc, nil, nil)
	s := NewSellerOrderHandler(svc)
	r := gin.New()
	g := r.Group("", scoped(tenantID, &actor))
	g.GET("/orders/:id", h.Get)
	g.GET("/seller/settlement", s.Settlement)
	return r
}

func TestOrderHandler_Get(t *testing.T) {
	tenantID := uuid.New()
	buyerID := uuid.New()
	o := testutil.NewTestOrder(tenantID, buyerID, testutil.OrderLine{
		SellerID:  uuid.New(),
		SKU:       "MUG-01",
		UnitPrice: "24.90",
		Quantity:  2,
	})

	orders := new(testutil.MockOrderRepository)
	orders.On("FindByIDForTenant", mock.Anything, tenantID, o.ID).Return(o, nil)

	t.Run("buyer sees own order", func(t *testing.T) {
		r := newOrderRouter(tenantID, testutil.BuyerActor(buyerID), orders)

		w := perform(t, r, http.MethodGet, "/orders/"+o.ID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeAs[order.OrderResponse](t, w)
		assert.Equal(t, o.Number, resp.Data.Number)
		assert.Equal(t, buyerID, resp.Data.BuyerID)
	})

	t.Run("other buyers get not found", func(t *testing.T) {
		r := newOrderRouter(tenantID, testutil.BuyerActor(uuid.New()), orders)

		w := perform(t, r, http.MethodGet, "/orders/"+o.ID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", errorCode(t, w))
	})

	t.Run("admin sees any order", func(t *testing.T) {
		r := newOrderRouter(tenantID, testutil.AdminActor(), orders)

		w := perform(t, r, http.MethodGet, "/orders/"+o.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSellerOrderHandler_Settlement(t *testing.T) {
	tenantID := uuid.New()

	t.Run("requires a storefront", func(t *testing.T) {
		orders := new(testutil.MockOrderRepository)
		r := newOrderRouter(tenantID, testutil.BuyerActor(uuid.New()), orders)

		w := perform(t, r, http.MethodGet, "/seller/settlement?from=2026-01-01&to=2026-01-31", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		orders.AssertNotCalled(t, "Settlement", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a reversed period", func(t *testing.T) {
		orders := new(testutil.MockOrderRepository)
		r := newOrderRouter(tenantID, testutil.SellerActor(uuid.New()), orders)

		w := perform(t, r, http.MethodGet, "/seller/settlement?from=2026-02-10&to=2026-01-01", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_PERIOD", errorCode(t, w))
	})

	t.Run("requires both dates", func(t *testing.T) {
		orders := new(testutil.MockOrderRepository)
		r := newOrderRouter(tenantID, testutil.SellerActor(uuid.New()), orders)

		w := perform(t, r, http.MethodGet, "/seller/settlement?from=2026-02-10", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

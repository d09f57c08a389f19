package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	return m.Called(ctx, key, result, ttl).Error(0)
}

func (m *MockIdempotencyStore) Result(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func newStore(t *testing.T) *cache.InMemoryIdempotencyStore {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	inner := newTestHandler("OrderPaid")
	h := NewIdempotentHandler(inner, newStore(t), zap.NewNop())
	event := newTestEvent("OrderPaid", uuid.New())

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Len(t, inner.getHandled(), 1)
	assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 1}, h.Stats())
}

func TestIdempotentHandler_ReleasesKeyOnFailure(t *testing.T) {
	inner := newTestHandler("OrderPaid")
	inner.setError(errors.New("temporary"))
	h := NewIdempotentHandler(inner, newStore(t), zap.NewNop())
	event := newTestEvent("OrderPaid", uuid.New())

	require.Error(t, h.Handle(context.Background(), event))

	inner.setError(nil)
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Len(t, inner.getHandled(), 2)
	assert.Equal(t, int64(1), h.Stats().EventsFailed)
}

func TestIdempotentHandler_KeysArePerHandler(t *testing.T) {
	store := newStore(t)
	first := newTestHandler("OrderPaid")
	second := &otherTestHandler{testHandler: newTestHandler("OrderPaid")}
	event := newTestEvent("OrderPaid", uuid.New())

	require.NoError(t, NewIdempotentHandler(first, store, zap.NewNop()).Handle(context.Background(), event))
	require.NoError(t, NewIdempotentHandler(second, store, zap.NewNop()).Handle(context.Background(), event))

	assert.Len(t, first.getHandled(), 1)
	assert.Len(t, second.getHandled(), 1)
}

type otherTestHandler struct{ *testHandler }

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := new(MockIdempotencyStore)
	store.On("Claim", mock.Anything, mock.Anything, DefaultHandledEventTTL).Return(false, errors.New("redis down"))
	inner := newTestHandler("OrderPaid")
	h := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), newTestEvent("OrderPaid", uuid.New())))
	assert.Len(t, inner.getHandled(), 1)
	store.AssertExpectations(t)
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	h := NewIdempotentHandler(newTestHandler("A", "B"), newStore(t), zap.NewNop())
	assert.Equal(t, []string{"A", "B"}, h.EventTypes())
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	inner := newTestHandler("OrderPaid")
	h := NewIdempotentHandler(inner, newStore(t), zap.NewNop())
	event := newTestEvent("OrderPaid", uuid.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Handle(context.Background(), event)
		}()
	}
	wg.Wait()

	assert.Len(t, inner.getHandled(), 1)
	assert.Equal(t, int64(19), h.Stats().EventsDuplicate)
}

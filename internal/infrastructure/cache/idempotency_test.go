package cache

import (
	"context"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryIdempotencyStore()
	defer s.Close()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ok, err := s.Claim(ctx, "checkout:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Claim(ctx, "checkout:k1", time.Minute)
	assert.False(t, ok, "second claim loses")

	res, err := s.Result(ctx, "checkout:k1")
	require.NoError(t, err)
	assert.Nil(t, res, "in-flight claims have no result")

	require.NoError(t, s.Complete(ctx, "checkout:k1", []byte(`{"order":"MKT-1"}`), time.Hour))
	res, _ = s.Result(ctx, "checkout:k1")
	assert.JSONEq(t, `{"order":"MKT-1"}`, string(res))

	now = now.Add(2 * time.Hour)
	res, _ = s.Result(ctx, "checkout:k1")
	assert.Nil(t, res, "results expire")
	ok, _ = s.Claim(ctx, "checkout:k1", time.Minute)
	assert.True(t, ok)
}

func TestInMemoryIdempotencyStore_ReleaseAndCleanup(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryIdempotencyStore()
	defer s.Close()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, _ = s.Claim(ctx, "a", time.Minute)
	_, _ = s.Claim(ctx, "b", time.Hour)
	require.NoError(t, s.Release(ctx, "a"))
	ok, _ := s.Claim(ctx, "a", time.Minute)
	assert.True(t, ok, "released keys can be claimed again")

	now = now.Add(10 * time.Minute)
	s.cleanup()
	assert.Equal(t, 1, s.Size())
	assert.NoError(t, s.Close())
}

func TestNewIdempotencyStore_FallsBackToMemory(t *testing.T) {
	s := NewIdempotencyStore(nil, config.CacheConfig{}, nil)
	defer s.Close()
	_, ok := s.(*InMemoryIdempotencyStore)
	assert.True(t, ok)
}

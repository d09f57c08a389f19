package audit

import (
	"testing"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	actor := uuid.New()
	e, err := NewEntry(uuid.New(), &actor, shared.RoleAdmin, " order.refund ", "Order", "42", map[string]string{"amount": "10.00"})
	require.NoError(t, err)
	assert.Equal(t, "order.refund", e.Action)
	assert.JSONEq(t, `{"amount":"10.00"}`, string(e.Details))
	assert.False(t, e.CreatedAt.IsZero())

	e.WithRequest("10.1.1.1", "req-1")
	assert.Equal(t, "req-1", e.RequestID)

	_, err = NewEntry(uuid.New(), nil, shared.RoleSystem, "", "Order", "1", nil)
	assert.Equal(t, "INVALID_ACTION", shared.CodeOf(err))

	_, err = NewEntry(uuid.New(), nil, shared.RoleSystem, "x", "Order", "1", make(chan int))
	assert.Equal(t, "INVALID_DETAILS", shared.CodeOf(err))

	e, err = NewEntry(uuid.New(), nil, shared.RoleSystem, "x", "Order", "1", nil)
	require.NoError(t, err)
	assert.Nil(t, e.Details)
}

package shared

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	BaseDomainEvent
}

func newTestEvent() *testEvent {
	return &testEvent{BaseDomainEvent: NewBaseDomainEvent("TestHappened", "Test", uuid.New(), uuid.New())}
}

func TestNewOutboxMessage(t *testing.T) {
	evt := newTestEvent()
	msg := NewOutboxMessage(evt, []byte(`{}`))

	assert.Equal(t, evt.EventID(), msg.EventID)
	assert.Equal(t, evt.TenantID(), msg.TenantID)
	assert.Equal(t, "TestHappened", msg.EventType)
	assert.Equal(t, OutboxPending, msg.Status)
	assert.Equal(t, DefaultOutboxMaxAttempts, msg.MaxAttempts)
	assert.True(t, msg.Due(time.Now().UTC().Add(time.Second)))
}

func TestOutboxMessage_MarkFailed(t *testing.T) {
	t.Run("schedules exponential backoff", func(t *testing.T) {
		msg := NewOutboxMessage(newTestEvent(), nil)
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

		msg.MarkFailed(errors.New("boom"), now)
		assert.Equal(t, OutboxFailed, msg.Status)
		assert.Equal(t, 1, msg.Attempts)
		assert.Equal(t, "boom", msg.LastError)
		assert.Equal(t, now.Add(2*time.Second), msg.NextAttemptAt)
		assert.False(t, msg.Due(now))

		msg.MarkFailed(errors.New("boom"), now)
		assert.Equal(t, now.Add(4*time.Second), msg.NextAttemptAt)
	})

	t.Run("dead-letters after max attempts", func(t *testing.T) {
		msg := NewOutboxMessage(newTestEvent(), nil)
		now := time.Now().UTC()
		for i := 0; i < DefaultOutboxMaxAttempts; i++ {
			msg.MarkFailed(errors.New("boom"), now)
		}
		assert.Equal(t, OutboxDead, msg.Status)
		assert.False(t, msg.Due(now.Add(time.Hour)))
	})
}

func TestOutboxMessage_MarkDelivered(t *testing.T) {
	msg := NewOutboxMessage(newTestEvent(), nil)
	msg.MarkFailed(errors.New("temporary"), time.Now())
	at := time.Now().UTC()
	msg.MarkDelivered(at)

	assert.Equal(t, OutboxDelivered, msg.Status)
	assert.Empty(t, msg.LastError)
	assert.Equal(t, &at, msg.DeliveredAt)
}

func TestOutboxMessage_Requeue(t *testing.T) {
	msg := NewOutboxMessage(newTestEvent(), nil)
	assert.Equal(t, "INVALID_STATUS", CodeOf(msg.Requeue(time.Now())))

	now := time.Now().UTC()
	for i := 0; i < DefaultOutboxMaxAttempts; i++ {
		msg.MarkFailed(errors.New("boom"), now)
	}
	assert.NoError(t, msg.Requeue(now))
	assert.Equal(t, OutboxPending, msg.Status)
	assert.Zero(t, msg.Attempts)
	assert.True(t, msg.Due(now))
}

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "order not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "NOT_FOUND", CodeOf(err))
	assert.Empty(t, CodeOf(errors.New("plain")))
}

package privacy

import (
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataRequest(t *testing.T) {
	_, err := NewDataRequest(uuid.New(), uuid.Nil, RequestExport)
	assert.Equal(t, "INVALID_USER", shared.CodeOf(err))
	_, err = NewDataRequest(uuid.New(), uuid.New(), "DELETE")
	assert.Equal(t, "INVALID_REQUEST_TYPE", shared.CodeOf(err))

	r, err := NewDataRequest(uuid.New(), uuid.New(), RequestErasure)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, r.CreatedAt, r.RequestedAt)
}

func TestDataRequest_Lifecycle(t *testing.T) {
	now := time.Now().UTC()

	t.Run("export completes with key", func(t *testing.T) {
		r, _ := NewDataRequest(uuid.New(), uuid.New(), RequestExport)
		assert.Error(t, r.Complete("k", now), "must be started first")
		require.NoError(t, r.Start(now))
		assert.Error(t, r.Start(now))
		assert.Equal(t, "INVALID_RESULT", shared.CodeOf(r.Complete("", now)))

		key := ExportKey(r.TenantID, r.UserID, r.ID)
		require.NoError(t, r.Complete(key, now))
		assert.Equal(t, StatusCompleted, r.Status)
		assert.Equal(t, "exports/"+r.TenantID.String()+"/"+r.UserID.String()+"/"+r.ID.String()+".json", r.ResultKey)
		assert.True(t, r.Status.IsTerminal())
	})

	t.Run("erasure rejected", func(t *testing.T) {
		r, _ := NewDataRequest(uuid.New(), uuid.New(), RequestErasure)
		require.NoError(t, r.Start(now))
		require.NoError(t, r.Reject("open orders", now))
		assert.Equal(t, "open orders", r.RejectionReason)
		assert.Error(t, r.Reject("again", now))
	})

	t.Run("failed request can be retried", func(t *testing.T) {
		r, _ := NewDataRequest(uuid.New(), uuid.New(), RequestExport)
		require.NoError(t, r.Start(now))
		require.NoError(t, r.Fail("s3 down", now))
		assert.Equal(t, StatusFailed, r.Status)
		require.NoError(t, r.Retry())
		assert.Equal(t, StatusPending, r.Status)
		require.NoError(t, r.Start(now))
		assert.Equal(t, 2, r.Attempts)
	})

	t.Run("events carry user id only", func(t *testing.T) {
		r, _ := NewDataRequest(uuid.New(), uuid.New(), RequestErasure)
		require.NoError(t, r.Start(now))
		require.NoError(t, r.Complete("", now))
		events := r.GetDomainEvents()
		require.Len(t, events, 2)
		last := events[1].(*DataRequestEvent)
		assert.Equal(t, EventTypeDataRequestCompleted, last.EventType())
		assert.Equal(t, r.UserID, last.UserID)
	})
}

package event

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

var outboxColumns = []string{
	"id", "tenant_id", "event_id", "event_type", "aggregate_id", "aggregate_type",
	"payload", "status", "attempts", "max_attempts", "last_error", "next_attempt_at",
	"delivered_at", "created_at",
}

func TestGormOutboxRepository_Save(t *testing.T) {
	db, mock := setupMockDB(t)
	m := shared.NewOutboxMessage(newTestEvent("OrderPlaced", uuid.New()), []byte(`{"data":"x"}`))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "outbox_messages"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewGormOutboxRepository(db).Save(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_Save_Empty(t *testing.T) {
	db, mock := setupMockDB(t)

	require.NoError(t, NewGormOutboxRepository(db).Save(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_FindDue(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()
	id, eventID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "outbox_messages" WHERE status IN \(\$1,\$2\) AND next_attempt_at <= \$3 ORDER BY next_attempt_at ASC LIMIT \$4`).
		WithArgs(shared.OutboxPending, shared.OutboxFailed, now, 50).
		WillReturnRows(sqlmock.NewRows(outboxColumns).AddRow(
			id, uuid.New(), eventID, "OrderPlaced", uuid.New(), "Order",
			[]byte(`{}`), "FAILED", 2, 5, "timeout", now, nil, now,
		))

	messages, err := NewGormOutboxRepository(db).FindDue(context.Background(), now, 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
	assert.Equal(t, eventID, messages[0].EventID)
	assert.Equal(t, shared.OutboxFailed, messages[0].Status)
	assert.Equal(t, 2, messages[0].Attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	m := shared.NewOutboxMessage(newTestEvent("OrderPlaced", uuid.New()), []byte(`{}`))
	m.MarkDelivered(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "outbox_messages" SET .* WHERE id = `).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewGormOutboxRepository(db).Update(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_DeleteDeliveredBefore(t *testing.T) {
	db, mock := setupMockDB(t)
	cutoff := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "outbox_messages" WHERE status = \$1 AND delivered_at < \$2`).
		WithArgs(shared.OutboxDelivered, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectCommit()

	n, err := NewGormOutboxRepository(db).DeleteDeliveredBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_WithTx(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	assert.NotSame(t, repo, repo.WithTx(db))
}

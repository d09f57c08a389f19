package integration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/event"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
)

func dueForTenant(t *testing.T, repo *event.GormOutboxRepository, tenantID uuid.UUID, at time.Time) []*shared.OutboxMessage {
	t.Helper()
	due, err := repo.FindDue(context.Background(), at, 500)
	require.NoError(t, err)
	var out []*shared.OutboxMessage
	for _, msg := range due {
		if msg.TenantID == tenantID {
			out = append(out, msg)
		}
	}
	return out
}

func TestOutboxRepository_DeliveryLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	repo := event.NewGormOutboxRepository(tdb.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	o := testutil.NewTestOrder(tenantID, uuid.New(),
		testutil.OrderLine{SellerID: uuid.New(), SKU: "MUG-1", UnitPrice: "9.99", Quantity: 1})
	placed := shared.NewOutboxMessage(order.NewOrderPlacedEvent(o), []byte(`{"number":"`+o.Number+`"}`))
	paid := shared.NewOutboxMessage(order.NewOrderPaidEvent(o, uuid.New()), []byte(`{}`))
	require.NoError(t, repo.Save(ctx, placed, paid))

	now := time.Now().UTC()
	require.Len(t, dueForTenant(t, repo, tenantID, now), 2)

	placed.MarkDelivered(now)
	require.NoError(t, repo.Update(ctx, placed))

	paid.MarkFailed(errors.New("broker unavailable"), now)
	require.NoError(t, repo.Update(ctx, paid))

	// the failed message waits for its backoff
	assert.Empty(t, dueForTenant(t, repo, tenantID, now))
	later := dueForTenant(t, repo, tenantID, paid.NextAttemptAt.Add(time.Second))
	require.Len(t, later, 1)
	assert.Equal(t, paid.ID, later[0].ID)
	assert.Equal(t, 1, later[0].Attempts)
	assert.Equal(t, "broker unavailable", later[0].LastError)

	stored, err := repo.FindByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxDelivered, stored.Status)
	assert.JSONEq(t, `{"number":"`+o.Number+`"}`, string(stored.Payload))

	// the unique event id rejects a second copy of the same event
	dup := shared.NewOutboxMessage(order.NewOrderPlacedEvent(o), []byte(`{}`))
	dup.EventID = placed.EventID
	assert.Error(t, repo.Save(ctx, dup))
}

func TestFeatureFlagRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	repo := persistence.NewGormFeatureFlagRepository(tdb.DB)
	ctx := context.Background()
	admin := uuid.New()
	tenantID := uuid.New()
	key := "it.flag_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	flag, err := featureflag.NewFeatureFlag(key, "integration", admin)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, flag))

	exists, err := repo.ExistsByKey(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, flag.Update("targeted", 50, []shared.Role{shared.RoleSeller}, []uuid.UUID{tenantID}, admin))
	flag.Toggle(true, admin)
	require.NoError(t, repo.Save(ctx, flag))

	stored, err := repo.FindByKey(ctx, key)
	require.NoError(t, err)
	assert.True(t, stored.Enabled)
	assert.Equal(t, 50, stored.RolloutPercent)
	assert.Equal(t, []shared.Role{shared.RoleSeller}, stored.TargetRoles)
	assert.Equal(t, []uuid.UUID{tenantID}, stored.TargetTenants)

	require.NoError(t, repo.Delete(ctx, flag.ID))
	_, err = repo.FindByKey(ctx, key)
	assert.Equal(t, "NOT_FOUND", shared.CodeOf(err))
	assert.Equal(t, "NOT_FOUND", shared.CodeOf(repo.Delete(ctx, flag.ID)))
}

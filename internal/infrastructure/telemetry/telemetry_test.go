package telemetry_test

import (
	"context"
	"testing"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tel.Tracer.IsEnabled())
	assert.False(t, tel.Meter.IsEnabled())
	assert.False(t, tel.Logs.IsEnabled())
	assert.False(t, tel.Profiler.IsEnabled())
	assert.False(t, tel.Tracer.SpanProfilesEnabled())
	assert.NotNil(t, tel.Tracer.Tracer("test"))
	assert.NotNil(t, tel.Meter.Meter("test"))

	base := zap.NewNop()
	assert.Same(t, base, tel.Logs.Bridge(base, "mercato", zapcore.InfoLevel))
	assert.NoError(t, tel.Shutdown(ctx))
	assert.NoError(t, tel.Profiler.Stop())
}

func TestNewProfiler_RequiresServerAddress(t *testing.T) {
	_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(nil, nil, zap.NewNop())
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_CountsOrdersAndPayments(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zap.NewNop())
	bm, err := telemetry.NewBusinessMetrics(mp.Meter("test"), nil, zap.NewNop())
	require.NoError(t, err)

	tenantID := uuid.New()
	placed := &order.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPlaced, order.AggregateTypeOrder, uuid.New(), tenantID),
		Total:           "120.45",
		Currency:        "EUR",
	}
	require.NoError(t, bm.Handle(ctx, placed))
	placed.Total = "9.55"
	require.NoError(t, bm.Handle(ctx, placed))

	paid := &payment.PaymentSucceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(payment.EventTypePaymentSucceeded, payment.AggregateTypePayment, uuid.New(), tenantID),
		Provider:        "simulated",
	}
	require.NoError(t, bm.Handle(ctx, paid))
	failed := &payment.PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(payment.EventTypePaymentFailed, payment.AggregateTypePayment, uuid.New(), tenantID),
	}
	require.NoError(t, bm.Handle(ctx, failed))
	bm.RecordCheckoutFailure(ctx, tenantID.String(), "OUT_OF_STOCK")

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["mercato_orders_placed_total"]))
	assert.Equal(t, int64(13000), sumOf(t, data["mercato_gmv_minor_total"]))
	assert.Equal(t, int64(2), sumOf(t, data["mercato_payments_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["mercato_checkout_failures_total"]))
}

func TestBusinessMetrics_IgnoresBadTotals(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zap.NewNop())
	bm, err := telemetry.NewBusinessMetrics(mp.Meter("test"), nil, zap.NewNop())
	require.NoError(t, err)

	err = bm.Handle(context.Background(), &order.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(order.EventTypeOrderPlaced, order.AggregateTypeOrder, uuid.New(), uuid.New()),
		Total:           "n/a",
		Currency:        "EUR",
	})
	require.NoError(t, err)

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, data["mercato_orders_placed_total"]))
	_, hasGMV := data["mercato_gmv_minor_total"]
	assert.False(t, hasGMV)
}

func TestBusinessMetrics_CacheHitRatioGauge(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zap.NewNop())
	bm, err := telemetry.NewBusinessMetrics(mp.Meter("test"), func() map[string]float64 {
		return map[string]float64{"flags": 0.75}
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bm.Close() })

	data := collect(t, reader)
	gauge, ok := data["mercato_snapshot_cache_hit_ratio"].(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 0.75, gauge.DataPoints[0].Value)
	name, _ := gauge.DataPoints[0].Attributes.Value(telemetry.AttrCacheName)
	assert.Equal(t, "flags", name.AsString())
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.NewMeterProviderWithReader(sdkmetric.NewManualReader(), zap.NewNop()).Meter("t"), nil, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		order.EventTypeOrderPlaced,
		payment.EventTypePaymentSucceeded,
		payment.EventTypePaymentFailed,
	}, bm.EventTypes())
}

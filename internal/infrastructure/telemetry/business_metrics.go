package telemetry

import (
	"context"
	"errors"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when business metrics are built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// HitRatioFunc reports the current hit ratio per snapshot cache name
type HitRatioFunc func() map[string]float64

// BusinessMetrics counts marketplace activity. It subscribes to order and
// payment events and is called directly for checkout failures.
type BusinessMetrics struct {
	logger *zap.Logger

	ordersPlaced     *Counter
	gmvMinor         *Counter
	paymentsTotal    *Counter
	checkoutFailures *Counter
	cacheRatio       metric.Registration
}

// NewBusinessMetrics registers the business instruments on meter. hitRatio may
// be nil, in which case no cache gauge is exported.
func NewBusinessMetrics(meter metric.Meter, hitRatio HitRatioFunc, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger}

	var err error
	if bm.ordersPlaced, err = NewCounter(meter, "mercato_orders_placed_total",
		"Orders placed through checkout", "{order}"); err != nil {
		return nil, err
	}
	if bm.gmvMinor, err = NewCounter(meter, "mercato_gmv_minor_total",
		"Gross merchandise value of placed orders in minor currency units", "{cent}"); err != nil {
		return nil, err
	}
	if bm.paymentsTotal, err = NewCounter(meter, "mercato_payments_total",
		"Payment outcomes reported by providers", "{payment}"); err != nil {
		return nil, err
	}
	if bm.checkoutFailures, err = NewCounter(meter, "mercato_checkout_failures_total",
		"Checkout attempts rejected before an order was placed", "{attempt}"); err != nil {
		return nil, err
	}

	if hitRatio != nil {
		gauge, err := meter.Float64ObservableGauge("mercato_snapshot_cache_hit_ratio",
			metric.WithDescription("Hit ratio of tenant snapshot caches"),
			metric.WithUnit("1"))
		if err != nil {
			return nil, err
		}
		bm.cacheRatio, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			for name, ratio := range hitRatio() {
				o.ObserveFloat64(gauge, ratio, metric.WithAttributes(AttrCacheName.String(name)))
			}
			return nil
		}, gauge)
		if err != nil {
			return nil, err
		}
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		payment.EventTypePaymentSucceeded,
		payment.EventTypePaymentFailed,
	}
}

// Handle implements shared.EventHandler. Recording never fails the event.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := AttrTenantID.String(event.TenantID().String())
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		currency := AttrCurrency.String(e.Currency)
		bm.ordersPlaced.Inc(ctx, tenant, currency)
		total, err := decimal.NewFromString(e.Total)
		if err != nil {
			bm.logger.Warn("Unparseable order total", zap.String("total", e.Total), zap.Error(err))
			return nil
		}
		bm.gmvMinor.Add(ctx, total.Shift(2).Round(0).IntPart(), tenant, currency)
	case *payment.PaymentSucceededEvent:
		bm.paymentsTotal.Inc(ctx, tenant, AttrProvider.String(e.Provider),
			attribute.String("outcome", "succeeded"))
	case *payment.PaymentFailedEvent:
		bm.paymentsTotal.Inc(ctx, tenant, attribute.String("outcome", "failed"))
	}
	return nil
}

// RecordCheckoutFailure counts a checkout rejected with the given error code
func (bm *BusinessMetrics) RecordCheckoutFailure(ctx context.Context, tenantID, code string) {
	if bm == nil {
		return
	}
	bm.checkoutFailures.Inc(ctx, AttrTenantID.String(tenantID), AttrErrorCode.String(code))
}

// Close unregisters the cache gauge callback
func (bm *BusinessMetrics) Close() error {
	if bm.cacheRatio == nil {
		return nil
	}
	return bm.cacheRatio.Unregister()
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)

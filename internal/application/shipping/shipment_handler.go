package shipping

import (
	"context"
	"fmt"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shipping"
	"go.uber.org/zap"
)

// Carrier codes of the built-in simulated carriers
const (
	CarrierStandardPost   = "STANDARD_POST"
	CarrierExpressCourier = "EXPRESS_COURIER"
)

// DefaultCarriers maps a shipping method to the carrier booked when the
// seller names none
func DefaultCarriers() map[pricing.ShippingMethod]string {
	return map[pricing.ShippingMethod]string{
		pricing.ShippingStandard: CarrierStandardPost,
		pricing.ShippingExpress:  CarrierExpressCourier,
	}
}

// ShipmentHandler books a carrier shipment for sub-orders shipped without a
// tracking number
type ShipmentHandler struct {
	orderRepo order.Repository
	carriers  *shipping.Registry
	defaults  map[pricing.ShippingMethod]string
	logger    *zap.Logger
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(orderRepo order.Repository, carriers *shipping.Registry, defaults map[pricing.ShippingMethod]string, logger *zap.Logger) *ShipmentHandler {
	if defaults == nil {
		defaults = DefaultCarriers()
	}
	return &ShipmentHandler{
		orderRepo: orderRepo,
		carriers:  carriers,
		defaults:  defaults,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ShipmentHandler) EventTypes() []string {
	return []string{order.EventTypeSubOrderShipped}
}

// Handle processes a SubOrderShippedEvent
func (h *ShipmentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	shipped, ok := event.(*order.SubOrderShippedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeSubOrderShipped, event.EventType())
	}
	if shipped.TrackingNumber != "" {
		return nil
	}

	code := shipped.Carrier
	if code == "" {
		code = h.defaults[pricing.ShippingMethod(shipped.Method)]
	}
	if code == "" {
		h.logger.Debug("no carrier for shipping method",
			zap.String("sub_order", shipped.SubOrderNumber),
			zap.String("method", shipped.Method))
		return nil
	}
	carrier, err := h.carriers.Get(code)
	if err != nil {
		h.logger.Warn("carrier not available, shipment left unbooked",
			zap.String("sub_order", shipped.SubOrderNumber),
			zap.String("carrier", code))
		return nil
	}

	o, err := h.orderRepo.FindByIDForTenant(ctx, event.TenantID(), event.AggregateID())
	if err != nil {
		return fmt.Errorf("load order %s: %w", event.AggregateID(), err)
	}
	sub, err := o.SubOrder(shipped.SubOrderID)
	if err != nil {
		return err
	}
	if sub.TrackingNumber != "" {
		return nil
	}

	items := 0
	for _, it := range sub.Items {
		items += it.Quantity
	}
	shipment, err := carrier.CreateShipment(ctx, shipping.ShipmentRequest{
		TenantID:       o.TenantID,
		SubOrderID:     sub.ID,
		SubOrderNumber: sub.Number,
		SellerID:       sub.SellerID,
		Recipient:      o.ShippingAddress,
		Parcel:         shipping.Parcel{Items: items},
	})
	if err != nil {
		return fmt.Errorf("book shipment for %s with %s: %w", sub.Number, carrier.Code(), err)
	}

	if err := o.AttachShipment(sub.ID, shipment.Carrier, shipment.TrackingNumber, shipment.LabelURL); err != nil {
		return err
	}
	if err := h.orderRepo.SaveWithLock(ctx, o); err != nil {
		return fmt.Errorf("save shipment of %s: %w", sub.Number, err)
	}

	h.logger.Info("shipment booked",
		zap.String("sub_order", sub.Number),
		zap.String("carrier", shipment.Carrier),
		zap.String("tracking_number", shipment.TrackingNumber))
	return nil
}

var _ shared.EventHandler = (*ShipmentHandler)(nil)

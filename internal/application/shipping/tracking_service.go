package shipping

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shipping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNoTracking = shared.NewDomainError("NO_TRACKING", "Sub-order has no carrier tracking")

// TrackingResponse is the carrier status of one sub-order
type TrackingResponse struct {
	SubOrderID     uuid.UUID               `json:"sub_order_id"`
	Carrier        string                  `json:"carrier"`
	TrackingNumber string                  `json:"tracking_number"`
	LabelURL       string                  `json:"label_url,omitempty"`
	TrackingStatus shipping.TrackingStatus `json:"tracking_status"`
	SubOrderStatus string                  `json:"sub_order_status"`
}

// TrackingService asks carriers where parcels are and closes delivered sub-orders
type TrackingService struct {
	orderRepo      order.Repository
	carriers       *shipping.Registry
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewTrackingService creates a new TrackingService
func NewTrackingService(orderRepo order.Repository, carriers *shipping.Registry, logger *zap.Logger) *TrackingService {
	return &TrackingService{
		orderRepo: orderRepo,
		carriers:  carriers,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *TrackingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Track queries the carrier for a sub-order. A DELIVERED answer moves the
// sub-order to DELIVERED on behalf of the system.
func (s *TrackingService) Track(ctx context.Context, tenantID, subOrderID uuid.UUID, actor shared.Actor) (*TrackingResponse, error) {
	o, err := s.orderRepo.FindBySubOrderID(ctx, tenantID, subOrderID)
	if err != nil {
		return nil, err
	}
	if !o.IsVisibleTo(actor) {
		return nil, shared.ErrNotFound
	}
	sub, err := o.SubOrder(subOrderID)
	if err != nil {
		return nil, err
	}
	if sub.TrackingNumber == "" || sub.Carrier == "" {
		return nil, ErrNoTracking
	}
	carrier, err := s.carriers.Get(sub.Carrier)
	if err != nil {
		return nil, ErrNoTracking
	}
	status, err := carrier.Track(ctx, sub.TrackingNumber)
	if err != nil {
		return nil, err
	}

	if status == shipping.TrackingDelivered && sub.Status == order.StatusShipped {
		if err := o.MarkDelivered(shared.SystemActor(), sub.ID); err != nil {
			return nil, err
		}
		if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
			return nil, err
		}
		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, o.PullDomainEvents()...); err != nil {
				s.logger.Warn("Failed to publish delivery events", zap.Error(err))
			}
		}
		s.logger.Info("Sub-order delivered per carrier",
			zap.String("sub_order", sub.Number),
			zap.String("carrier", sub.Carrier))
	}

	return &TrackingResponse{
		SubOrderID:     sub.ID,
		Carrier:        sub.Carrier,
		TrackingNumber: sub.TrackingNumber,
		LabelURL:       sub.LabelURL,
		TrackingStatus: status,
		SubOrderStatus: string(sub.Status),
	}, nil
}

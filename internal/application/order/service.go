package order

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes order queries and the seller/buyer status transitions
type Service struct {
	orderRepo      order.Repository
	eventPublisher shared.EventPublisher
	documents      DocumentRenderer
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new order Service
func NewService(orderRepo order.Repository, logger *zap.Logger) *Service {
	return &Service{
		orderRepo: orderRepo,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Get returns an order the actor is allowed to see. Orders of other buyers
// are reported as not found.
func (s *Service) Get(ctx context.Context, tenantID, orderID uuid.UUID, actor shared.Actor) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsVisibleTo(actor) {
		return nil, shared.ErrNotFound
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListForBuyer lists the calling buyer's orders, newest first
func (s *Service) ListForBuyer(ctx context.Context, tenantID uuid.UUID, f OrderListFilter, actor shared.Actor) (shared.Paginated[OrderResponse], error) {
	filter := toFilter(f)
	orders, total, err := s.orderRepo.FindForBuyer(ctx, tenantID, actor.UserID, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	return pagedOrders(orders, total, filter), nil
}

// ListAll lists every order of the tenant for admins
func (s *Service) ListAll(ctx context.Context, tenantID uuid.UUID, f OrderListFilter, actor shared.Actor) (shared.Paginated[OrderResponse], error) {
	if !actor.IsPrivileged() {
		return shared.Paginated[OrderResponse]{}, shared.ErrForbidden
	}
	filter := toFilter(f)
	orders, total, err := s.orderRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	return pagedOrders(orders, total, filter), nil
}

// ListForSeller lists the calling seller's sub-orders, optionally by status
func (s *Service) ListForSeller(ctx context.Context, tenantID uuid.UUID, f OrderListFilter, actor shared.Actor) (shared.Paginated[SellerSubOrderResponse], error) {
	if actor.SellerID == nil {
		return shared.Paginated[SellerSubOrderResponse]{}, shared.NewDomainError("NOT_A_SELLER", "Only sellers have sub-orders")
	}
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, OrderBy: "placed_at", Search: f.Search}.Normalize()
	var status *order.Status
	if f.Status != "" {
		st := order.Status(f.Status)
		status = &st
	}
	views, total, err := s.orderRepo.FindSubOrdersForSeller(ctx, tenantID, *actor.SellerID, status, filter)
	if err != nil {
		return shared.Paginated[SellerSubOrderResponse]{}, err
	}
	items := make([]SellerSubOrderResponse, len(views))
	for i := range views {
		items[i] = ToSellerSubOrderResponse(&views[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// StartPreparing moves a paid sub-order into fulfilment
func (s *Service) StartPreparing(ctx context.Context, tenantID, subOrderID uuid.UUID, actor shared.Actor) (*OrderResponse, error) {
	return s.transition(ctx, tenantID, subOrderID, actor, func(o *order.Order) error {
		return o.StartPreparing(actor, subOrderID)
	})
}

// Ship hands a sub-order to the carrier
func (s *Service) Ship(ctx context.Context, tenantID, subOrderID uuid.UUID, req ShipRequest, actor shared.Actor) (*OrderResponse, error) {
	return s.transition(ctx, tenantID, subOrderID, actor, func(o *order.Order) error {
		return o.Ship(actor, subOrderID, req.Carrier, req.TrackingNumber)
	})
}

// MarkDelivered closes fulfilment of a shipped sub-order
func (s *Service) MarkDelivered(ctx context.Context, tenantID, subOrderID uuid.UUID, actor shared.Actor) (*OrderResponse, error) {
	return s.transition(ctx, tenantID, subOrderID, actor, func(o *order.Order) error {
		return o.MarkDelivered(actor, subOrderID)
	})
}

// Cancel cancels a sub-order before it ships
func (s *Service) Cancel(ctx context.Context, tenantID, subOrderID uuid.UUID, req CancelRequest, actor shared.Actor) (*OrderResponse, error) {
	return s.transition(ctx, tenantID, subOrderID, actor, func(o *order.Order) error {
		return o.CancelSubOrder(actor, subOrderID, req.Reason)
	})
}

// Settlement sums what a seller earned from sub-orders delivered in the
// period. To is inclusive.
func (s *Service) Settlement(ctx context.Context, tenantID, sellerID uuid.UUID, req SettlementRequest, actor shared.Actor) (*SettlementResponse, error) {
	if !actor.IsPrivileged() && !actor.OwnsStore(sellerID) {
		return nil, shared.ErrForbidden
	}
	from := req.From.UTC()
	to := req.To.UTC().Add(24 * time.Hour)
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Settlement period end must not precede its start")
	}
	st, err := s.orderRepo.Settlement(ctx, tenantID, sellerID, from, to)
	if err != nil {
		return nil, err
	}
	resp := ToSettlementResponse(st)
	return &resp, nil
}

// ExpireUnpaid cancels orders left unpaid longer than window and returns how
// many were cancelled. Cancellation releases the reserved stock through the
// SubOrderStatusChanged events.
func (s *Service) ExpireUnpaid(ctx context.Context, window time.Duration, batch int) (int, error) {
	orders, err := s.orderRepo.FindUnpaidPlacedBefore(ctx, s.now().Add(-window), batch)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range orders {
		o := &orders[i]
		if err := o.CancelUnpaid("payment window expired"); err != nil {
			s.logger.Warn("Skipping unpaid order",
				zap.String("order_number", o.Number),
				zap.Error(err))
			continue
		}
		if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
			s.logger.Warn("Failed to cancel unpaid order",
				zap.String("order_number", o.Number),
				zap.Error(err))
			continue
		}
		s.publish(ctx, o, shared.SystemActor())
		expired++
	}
	if expired > 0 {
		s.logger.Info("Unpaid orders expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *Service) transition(ctx context.Context, tenantID, subOrderID uuid.UUID, actor shared.Actor, apply func(o *order.Order) error) (*OrderResponse, error) {
	o, err := s.orderRepo.FindBySubOrderID(ctx, tenantID, subOrderID)
	if err != nil {
		return nil, err
	}
	if !o.IsVisibleTo(actor) {
		return nil, shared.ErrNotFound
	}
	if err := apply(o); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o, actor)

	sub, _ := o.SubOrder(subOrderID)
	s.logger.Info("Sub-order status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sub_order", sub.Number),
		zap.String("status", string(sub.Status)),
		zap.String("order_status", string(o.Status)))
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *Service) publish(ctx context.Context, o *order.Order, actor shared.Actor) {
	events := shared.StampActor(o.PullDomainEvents(), actor.UserID)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
}

func toFilter(f OrderListFilter) shared.Filter {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, OrderBy: "placed_at", Search: f.Search}.Normalize()
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	return filter
}

func pagedOrders(orders []order.Order, total int64, filter shared.Filter) shared.Paginated[OrderResponse] {
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize)
}

package returns

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Refunder sends money back to the buyer through the order's payment
// provider. A reference already booked on the payment is not refunded again.
type Refunder interface {
	Refund(ctx context.Context, tenantID, orderID uuid.UUID, amount valueobject.Money, reference, reason string) (*payment.Payment, error)
}

// refundReference identifies the refund of one return or dispute
func refundReference(kind string, id uuid.UUID) string {
	return kind + ":" + id.String()
}

// ReturnService handles buyer returns from request to refund
type ReturnService struct {
	txScope        txscope.TransactionScope
	returnRepo     returns.ReturnRepository
	orderRepo      order.Repository
	refunder       Refunder
	window         time.Duration
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewReturnService creates a new ReturnService. window <= 0 uses the
// default return window.
func NewReturnService(txScope txscope.TransactionScope, returnRepo returns.ReturnRepository, orderRepo order.Repository, refunder Refunder, window time.Duration, logger *zap.Logger) *ReturnService {
	if window <= 0 {
		window = returns.DefaultReturnWindow
	}
	return &ReturnService{
		txScope:    txScope,
		returnRepo: returnRepo,
		orderRepo:  orderRepo,
		refunder:   refunder,
		window:     window,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the event publisher
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Request opens a return for items of a delivered sub-order
func (s *ReturnService) Request(ctx context.Context, tenantID uuid.UUID, req CreateReturnRequest, actor shared.Actor) (*ReturnResponse, error) {
	o, err := s.orderRepo.FindBySubOrderID(ctx, tenantID, req.SubOrderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != actor.UserID {
		return nil, shared.ErrNotFound
	}

	existing, err := s.returnRepo.FindBySubOrder(ctx, tenantID, req.SubOrderID)
	if err != nil {
		return nil, err
	}
	held := make(map[uuid.UUID]int)
	for i := range existing {
		if !existing[i].Status.IsOpen() {
			continue
		}
		for id, qty := range existing[i].Quantities() {
			held[id] += qty
		}
	}

	items := make([]returns.ItemQuantity, len(req.Items))
	for i, it := range req.Items {
		items[i] = returns.ItemQuantity{OrderItemID: it.OrderItemID, Quantity: it.Quantity}
	}
	r, err := returns.NewReturnRequest(o, req.SubOrderID, actor, items, req.Reason, s.window, held, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.returnRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r.PullDomainEvents(), actor)

	s.logger.Info("Return requested",
		zap.String("return_id", r.ID.String()),
		zap.String("sub_order", r.SubOrderNumber),
		zap.String("refund_amount", r.RefundAmount.String()))
	resp := ToReturnResponse(r)
	return &resp, nil
}

// Get returns a return visible to the actor
func (s *ReturnService) Get(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*ReturnResponse, error) {
	r, err := s.load(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(r)
	return &resp, nil
}

// List scopes returns to the actor: buyers see their own, sellers their
// store's, admins everything
func (s *ReturnService) List(ctx context.Context, tenantID uuid.UUID, f ListFilter, actor shared.Actor) (shared.Paginated[ReturnResponse], error) {
	filter := returns.ReturnFilter{Filter: f.toFilter()}
	if f.Status != "" {
		st := returns.ReturnStatus(f.Status)
		filter.Status = &st
	}
	switch {
	case actor.IsPrivileged():
	case actor.Role == shared.RoleSeller && actor.SellerID != nil:
		filter.SellerID = actor.SellerID
	default:
		id := actor.UserID
		filter.BuyerID = &id
	}
	list, total, err := s.returnRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[ReturnResponse]{}, err
	}
	items := make([]ReturnResponse, len(list))
	for i := range list {
		items[i] = ToReturnResponse(&list[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Approve accepts a requested return
func (s *ReturnService) Approve(ctx context.Context, tenantID, id uuid.UUID, req DecisionRequest, actor shared.Actor) (*ReturnResponse, error) {
	return s.decide(ctx, tenantID, id, actor, func(r *returns.ReturnRequest) error {
		return r.Approve(actor, req.Note)
	})
}

// Reject declines a requested return
func (s *ReturnService) Reject(ctx context.Context, tenantID, id uuid.UUID, req DecisionRequest, actor shared.Actor) (*ReturnResponse, error) {
	return s.decide(ctx, tenantID, id, actor, func(r *returns.ReturnRequest) error {
		return r.Reject(actor, req.Note)
	})
}

// MarkReceived confirms the returned parcel arrived
func (s *ReturnService) MarkReceived(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*ReturnResponse, error) {
	return s.decide(ctx, tenantID, id, actor, func(r *returns.ReturnRequest) error {
		return r.MarkReceived(actor)
	})
}

// Refund pays out a received return. The items are booked as returned on the
// order, and the sub-order becomes REFUNDED once every unit has come back.
func (s *ReturnService) Refund(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*ReturnResponse, error) {
	r, err := s.load(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	if err := r.CheckRefundable(); err != nil {
		return nil, err
	}

	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, r.OrderID)
	if err != nil {
		return nil, err
	}
	sub, err := o.SubOrder(r.SubOrderID)
	if err != nil {
		return nil, err
	}
	if err := r.Reprice(sub); err != nil {
		return nil, err
	}
	if err := r.MarkRefunded(actor, s.now()); err != nil {
		return nil, err
	}
	if err := o.RecordReturn(r.SubOrderID, r.Quantities()); err != nil {
		return nil, err
	}
	reason := "return " + r.ID.String()
	if err := o.Refund(shared.SystemActor(), r.SubOrderID, r.RefundAmount, sub.FullyReturned(), reason); err != nil {
		return nil, err
	}

	// A retry after a failed save below reuses the reference, so the provider
	// is not asked twice
	if _, err := s.refunder.Refund(ctx, tenantID, r.OrderID, r.RefundAmount, refundReference("return", r.ID), reason); err != nil {
		s.logger.Error("Return refund failed at provider",
			zap.String("return_id", r.ID.String()),
			zap.Error(err))
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if err := repos.Returns().SaveWithLock(ctx, r); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}
		events := append(r.PullDomainEvents(), o.PullDomainEvents()...)
		return repos.Events().Record(ctx, shared.StampActor(events, actor.UserID)...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Return refunded",
		zap.String("return_id", r.ID.String()),
		zap.String("sub_order", r.SubOrderNumber),
		zap.String("amount", r.RefundAmount.String()),
		zap.String("sub_order_status", string(sub.Status)))
	resp := ToReturnResponse(r)
	return &resp, nil
}

func (s *ReturnService) decide(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor, apply func(*returns.ReturnRequest) error) (*ReturnResponse, error) {
	r, err := s.load(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	if err := s.returnRepo.SaveWithLock(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r.PullDomainEvents(), actor)

	s.logger.Info("Return status changed",
		zap.String("return_id", r.ID.String()),
		zap.String("status", string(r.Status)),
		zap.String("actor_id", actor.UserID.String()))
	resp := ToReturnResponse(r)
	return &resp, nil
}

func (s *ReturnService) load(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*returns.ReturnRequest, error) {
	r, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !r.IsVisibleTo(actor) {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

func (s *ReturnService) publish(ctx context.Context, events []shared.DomainEvent, actor shared.Actor) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, shared.StampActor(events, actor.UserID)...); err != nil {
		s.logger.Warn("Failed to publish return events", zap.Error(err))
	}
}

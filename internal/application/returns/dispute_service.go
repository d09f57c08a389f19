package returns

import (
	"context"
	"errors"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDisputeExists    = shared.NewDomainError("DISPUTE_EXISTS", "An open dispute already exists for this sub-order")
	ErrNotRefundableNow = shared.NewDomainError("NOT_REFUNDABLE", "Sub-order cannot be refunded in its current status")
)

// DisputeService mediates buyer disputes
type DisputeService struct {
	txScope        txscope.TransactionScope
	disputeRepo    returns.DisputeRepository
	returnRepo     returns.ReturnRepository
	orderRepo      order.Repository
	refunder       Refunder
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// NewDisputeService creates a new DisputeService
func NewDisputeService(txScope txscope.TransactionScope, disputeRepo returns.DisputeRepository, returnRepo returns.ReturnRepository, orderRepo order.Repository, refunder Refunder, logger *zap.Logger) *DisputeService {
	return &DisputeService{
		txScope:     txScope,
		disputeRepo: disputeRepo,
		returnRepo:  returnRepo,
		orderRepo:   orderRepo,
		refunder:    refunder,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the event publisher
func (s *DisputeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Open starts a dispute. A sub-order has at most one active dispute.
func (s *DisputeService) Open(ctx context.Context, tenantID uuid.UUID, req OpenDisputeRequest, actor shared.Actor) (*DisputeResponse, error) {
	o, err := s.orderRepo.FindBySubOrderID(ctx, tenantID, req.SubOrderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != actor.UserID {
		return nil, shared.ErrNotFound
	}
	exists, err := s.disputeRepo.ExistsActiveForSubOrder(ctx, tenantID, req.SubOrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDisputeExists
	}

	var rejected *returns.ReturnRequest
	if req.ReturnID != nil {
		rejected, err = s.returnRepo.FindByIDForTenant(ctx, tenantID, *req.ReturnID)
		if err != nil {
			return nil, err
		}
	}
	d, err := returns.OpenDispute(o, req.SubOrderID, actor, req.Reason, rejected)
	if err != nil {
		return nil, err
	}
	if err := s.disputeRepo.Create(ctx, d); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrDisputeExists
		}
		return nil, err
	}
	s.publish(ctx, d.PullDomainEvents(), actor)

	s.logger.Info("Dispute opened",
		zap.String("dispute_id", d.ID.String()),
		zap.String("sub_order_id", d.SubOrderID.String()))
	resp := ToDisputeResponse(d)
	return &resp, nil
}

// Get returns a dispute to one of its participants
func (s *DisputeService) Get(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*DisputeResponse, error) {
	d, err := s.load(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	resp := ToDisputeResponse(d)
	return &resp, nil
}

// List scopes disputes to the actor the same way returns are scoped
func (s *DisputeService) List(ctx context.Context, tenantID uuid.UUID, f ListFilter, actor shared.Actor) (shared.Paginated[DisputeResponse], error) {
	filter := returns.DisputeFilter{Filter: f.toFilter()}
	if f.Status != "" {
		st := returns.DisputeStatus(f.Status)
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
	list, total, err := s.disputeRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[DisputeResponse]{}, err
	}
	items := make([]DisputeResponse, len(list))
	for i := range list {
		items[i] = ToDisputeResponse(&list[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// PostMessage adds to the thread
func (s *DisputeService) PostMessage(ctx context.Context, tenantID, id uuid.UUID, req MessageRequest, actor shared.Actor) (*DisputeResponse, error) {
	return s.update(ctx, tenantID, id, actor, func(d *returns.Dispute) error {
		_, err := d.PostMessage(actor, req.Body)
		return err
	})
}

// StartReview hands the dispute to an admin
func (s *DisputeService) StartReview(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*DisputeResponse, error) {
	return s.update(ctx, tenantID, id, actor, func(d *returns.Dispute) error {
		return d.StartReview(actor)
	})
}

// Close withdraws or closes an unresolved dispute
func (s *DisputeService) Close(ctx context.Context, tenantID, id uuid.UUID, req CloseDisputeRequest, actor shared.Actor) (*DisputeResponse, error) {
	return s.update(ctx, tenantID, id, actor, func(d *returns.Dispute) error {
		return d.Close(actor, req.Reason)
	})
}

// Resolve settles a dispute. In the buyer's favour the sub-order's remaining
// refundable amount is paid back and the sub-order becomes REFUNDED.
func (s *DisputeService) Resolve(ctx context.Context, tenantID, id uuid.UUID, req ResolveDisputeRequest, actor shared.Actor) (*DisputeResponse, error) {
	d, err := s.load(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	if !req.InFavourOfBuyer {
		if err := d.Resolve(actor, false, req.Resolution, valueobject.Money{}); err != nil {
			return nil, err
		}
		return s.save(ctx, d, actor)
	}

	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, d.OrderID)
	if err != nil {
		return nil, err
	}
	sub, err := o.SubOrder(d.SubOrderID)
	if err != nil {
		return nil, err
	}
	refund := sub.Refundable()
	if err := d.Resolve(actor, true, req.Resolution, refund); err != nil {
		return nil, err
	}
	if !refund.IsPositive() {
		return s.save(ctx, d, actor)
	}
	if sub.Status != order.StatusCancelled && !sub.Status.CanTransitionTo(order.StatusRefunded) {
		return nil, ErrNotRefundableNow
	}
	reason := "dispute " + d.ID.String()
	if err := o.Refund(actor, sub.ID, refund, true, reason); err != nil {
		return nil, err
	}
	if _, err := s.refunder.Refund(ctx, tenantID, d.OrderID, refund, refundReference("dispute", d.ID), reason); err != nil {
		s.logger.Error("Dispute refund failed at provider",
			zap.String("dispute_id", d.ID.String()),
			zap.Error(err))
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if err := repos.Disputes().SaveWithLock(ctx, d); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
			return err
		}
		events := append(d.PullDomainEvents(), o.PullDomainEvents()...)
		return repos.Events().Record(ctx, shared.StampActor(events, actor.UserID)...)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Dispute resolved for buyer",
		zap.String("dispute_id", d.ID.String()),
		zap.String("refund", refund.String()))
	resp := ToDisputeResponse(d)
	return &resp, nil
}

// AutoCloseStale closes active disputes idle for longer than idle. It returns
// how many were closed.
func (s *DisputeService) AutoCloseStale(ctx context.Context, idle time.Duration, batch int) (int, error) {
	if idle <= 0 {
		idle = returns.DefaultDisputeAutoClose
	}
	now := s.now()
	stale, err := s.disputeRepo.FindStale(ctx, now.Add(-idle), batch)
	if err != nil {
		return 0, err
	}
	system := shared.SystemActor()
	closed := 0
	for i := range stale {
		d := &stale[i]
		if !d.IsStale(now, idle) {
			continue
		}
		if err := d.Close(system, "closed after inactivity"); err != nil {
			s.logger.Warn("Failed to close stale dispute",
				zap.String("dispute_id", d.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.disputeRepo.SaveWithLock(ctx, d); err != nil {
			s.logger.Warn("Failed to save stale dispute",
				zap.String("dispute_id", d.ID.String()),
				zap.Error(err))
			continue
		}
		s.publish(ctx, d.PullDomainEvents(), system)
		closed++
	}
	if closed > 0 {
		s.logger.Info("Stale disputes closed", zap.Int("count", closed))
	}
	return closed, nil
}

func (s *DisputeService) update(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor, apply func(*returns.Dispute) error) (*DisputeResponse, error) {
	d, err := s.load(ctx, tenantID, id, actor)
	if err != nil {
		return nil, err
	}
	if err := apply(d); err != nil {
		return nil, err
	}
	return s.save(ctx, d, actor)
}

func (s *DisputeService) save(ctx context.Context, d *returns.Dispute, actor shared.Actor) (*DisputeResponse, error) {
	if err := s.disputeRepo.SaveWithLock(ctx, d); err != nil {
		return nil, err
	}
	s.publish(ctx, d.PullDomainEvents(), actor)
	resp := ToDisputeResponse(d)
	return &resp, nil
}

func (s *DisputeService) load(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*returns.Dispute, error) {
	d, err := s.disputeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !d.IsParticipant(actor) {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (s *DisputeService) publish(ctx context.Context, events []shared.DomainEvent, actor shared.Actor) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, shared.StampActor(events, actor.UserID)...); err != nil {
		s.logger.Warn("Failed to publish dispute events", zap.Error(err))
	}
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidReturnToken = shared.NewDomainError("INVALID_PAYMENT_TOKEN", "Payment return token is invalid or expired")
	ErrTokenMismatch      = shared.NewDomainError("PAYMENT_TOKEN_MISMATCH", "Payment return token does not match the payment")
	ErrUnknownProvider    = shared.NewDomainError("UNKNOWN_PAYMENT_PROVIDER", "Payment provider is not supported")
)

// Service settles provider round-trips and books refunds
type Service struct {
	txScope     txscope.TransactionScope
	paymentRepo payment.Repository
	orderRepo   order.Repository
	providers   *payment.Registry
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new payment Service
func NewService(txScope txscope.TransactionScope, paymentRepo payment.Repository, orderRepo order.Repository, providers *payment.Registry, logger *zap.Logger) *Service {
	return &Service{
		txScope:     txScope,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		providers:   providers,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// HandleReturn verifies the token a buyer brings back from the provider. A
// success marks the payment SUCCEEDED and the order PAID in one transaction;
// a failure leaves the order awaiting payment. Replays of a settled payment
// change nothing.
func (s *Service) HandleReturn(ctx context.Context, req ReturnRequest) (*ReturnResponse, error) {
	provider, err := s.providers.Get(req.Provider)
	if err != nil {
		return nil, ErrUnknownProvider
	}
	result, err := provider.VerifyReturn(ctx, req.Token)
	if err != nil {
		s.logger.Warn("Payment return verification failed",
			zap.String("provider", provider.Name()),
			zap.Error(err))
		if errors.Is(err, payment.ErrTokenMismatch) {
			return nil, ErrTokenMismatch
		}
		return nil, ErrInvalidReturnToken
	}

	p, err := s.paymentRepo.FindByID(ctx, result.PaymentID)
	if err != nil {
		if shared.CodeOf(err) == shared.ErrNotFound.Code {
			return nil, ErrInvalidReturnToken
		}
		return nil, err
	}
	if !p.Matches(result) {
		s.logger.Warn("Payment return does not match payment",
			zap.String("payment_id", p.ID.String()),
			zap.String("token_amount", result.Amount.String()),
			zap.String("payment_amount", p.Amount.String()))
		return nil, ErrTokenMismatch
	}

	var (
		o       *order.Order
		changed bool
	)
	at := s.now()
	err = s.txScope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		o, err = repos.Orders().FindByIDForTenant(ctx, p.TenantID, p.OrderID)
		if err != nil {
			return err
		}
		switch result.Outcome {
		case payment.OutcomeSucceeded:
			changed, err = p.Succeed(result.ProviderRef, at)
		default:
			changed, err = p.Fail("declined at provider")
		}
		if err != nil || !changed {
			return err
		}
		if err := repos.Payments().SaveWithLock(ctx, p); err != nil {
			return err
		}
		events := p.PullDomainEvents()
		if p.Status == payment.StatusSucceeded {
			if err := o.MarkPaid(p.ID, at); err != nil {
				return err
			}
			if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
				return err
			}
			events = append(events, o.PullDomainEvents()...)
		}
		return repos.Events().Record(ctx, shared.StampActor(events, p.BuyerID)...)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("Payment settled",
			zap.String("payment_id", p.ID.String()),
			zap.String("order_number", o.Number),
			zap.String("status", string(p.Status)))
	} else {
		s.logger.Info("Payment return replayed",
			zap.String("payment_id", p.ID.String()),
			zap.String("status", string(p.Status)))
	}
	return &ReturnResponse{
		Payment:          ToPaymentResponse(p),
		OrderNumber:      o.Number,
		OrderStatus:      string(o.Status),
		AlreadyProcessed: !changed,
	}, nil
}

// GetForOrder returns the latest payment of an order visible to the actor
func (s *Service) GetForOrder(ctx context.Context, tenantID, orderID uuid.UUID, actor shared.Actor) (*PaymentResponse, error) {
	o, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPrivileged() && actor.UserID != o.BuyerID {
		return nil, shared.ErrNotFound
	}
	p, err := s.paymentRepo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}

// Refund returns money for an order through its payment provider and books
// it on the payment. It never refunds more than was captured. A reference
// that is already booked returns the payment unchanged.
func (s *Service) Refund(ctx context.Context, tenantID, orderID uuid.UUID, amount valueobject.Money, reference, reason string) (*payment.Payment, error) {
	p, err := s.paymentRepo.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if booked, ok := p.FindRefund(reference); ok {
		s.logger.Info("Refund replayed",
			zap.String("payment_id", p.ID.String()),
			zap.String("reference", reference),
			zap.String("refund_ref", booked.RefundRef))
		return p, nil
	}
	if err := p.CheckRefund(amount); err != nil {
		return nil, err
	}
	provider, err := s.providers.Get(p.Provider)
	if err != nil {
		return nil, ErrUnknownProvider
	}
	res, err := provider.Refund(ctx, payment.RefundRequest{
		TenantID:    tenantID,
		PaymentID:   p.ID,
		ProviderRef: p.ProviderRef,
		Amount:      amount,
		Reason:      reason,
		Reference:   reference,
	})
	if err != nil {
		return nil, fmt.Errorf("refund payment %s: %w", p.ID, err)
	}
	if err := p.RecordRefund(res.RefundRef, reference, amount, reason); err != nil {
		return nil, err
	}
	err = s.txScope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if err := repos.Payments().SaveWithLock(ctx, p); err != nil {
			return err
		}
		return repos.Events().Record(ctx, p.PullDomainEvents()...)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Payment refunded",
		zap.String("payment_id", p.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("refund_ref", res.RefundRef))
	return p, nil
}

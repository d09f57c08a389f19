package scheduler

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Job names
const (
	JobExpireUnpaidOrders = "expire-unpaid-orders"
	JobPurgeExpiredCarts  = "purge-expired-carts"
	JobProcessPrivacy     = "process-privacy-requests"
	JobAutoCloseDisputes  = "auto-close-disputes"
)

const unpaidExpiryBatch = 100

// UnpaidOrderExpirer cancels orders left unpaid past the window
type UnpaidOrderExpirer interface {
	ExpireUnpaid(ctx context.Context, window time.Duration, batch int) (int, error)
}

// CartPurger deletes expired carts
type CartPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PrivacyProcessor works through pending export and erasure requests
type PrivacyProcessor interface {
	ProcessPending(ctx context.Context, batch int) (int, error)
}

// DisputeCloser closes disputes idle past the window
type DisputeCloser interface {
	AutoCloseStale(ctx context.Context, idle time.Duration, batch int) (int, error)
}

// Services are the application services driven by background jobs
type Services struct {
	Orders   UnpaidOrderExpirer
	Carts    CartPurger
	Privacy  PrivacyProcessor
	Disputes DisputeCloser
}

// RegisterMarketplaceJobs registers the marketplace housekeeping jobs
func RegisterMarketplaceJobs(s *Scheduler, svc Services, cfg *config.Config, logger *zap.Logger) error {
	if svc.Orders != nil {
		if err := s.AddInterval(cfg.Scheduler.UnpaidOrderInterval,
			ExpireUnpaidOrdersJob(svc.Orders, cfg.Market.UnpaidOrderExpiry, unpaidExpiryBatch, logger)); err != nil {
			return err
		}
	}
	if svc.Carts != nil {
		if err := s.AddInterval(cfg.Scheduler.CartPurgeInterval, PurgeExpiredCartsJob(svc.Carts, logger)); err != nil {
			return err
		}
	}
	if svc.Privacy != nil {
		if err := s.AddCron(cfg.Scheduler.PrivacyCron,
			ProcessPrivacyRequestsJob(svc.Privacy, cfg.Scheduler.PrivacyBatchSize, logger)); err != nil {
			return err
		}
	}
	if svc.Disputes != nil {
		if err := s.AddCron(cfg.Scheduler.DisputeAutoCloseCron,
			AutoCloseDisputesJob(svc.Disputes, cfg.Market.DisputeAutoClose(), cfg.Scheduler.DisputeCloseBatchSize, logger)); err != nil {
			return err
		}
	}
	return nil
}

// ExpireUnpaidOrdersJob cancels orders still awaiting payment after window
func ExpireUnpaidOrdersJob(svc UnpaidOrderExpirer, window time.Duration, batch int, logger *zap.Logger) Job {
	return JobFunc{JobName: JobExpireUnpaidOrders, Fn: func(ctx context.Context) error {
		n, err := svc.ExpireUnpaid(ctx, window, batch)
		if n > 0 {
			logger.Info("Expired unpaid orders", zap.Int("count", n))
		}
		return err
	}}
}

// PurgeExpiredCartsJob deletes carts past their TTL
func PurgeExpiredCartsJob(svc CartPurger, logger *zap.Logger) Job {
	return JobFunc{JobName: JobPurgeExpiredCarts, Fn: func(ctx context.Context) error {
		n, err := svc.PurgeExpired(ctx)
		if n > 0 {
			logger.Info("Purged expired carts", zap.Int64("count", n))
		}
		return err
	}}
}

// ProcessPrivacyRequestsJob runs pending GDPR requests in batches
func ProcessPrivacyRequestsJob(svc PrivacyProcessor, batch int, logger *zap.Logger) Job {
	return JobFunc{JobName: JobProcessPrivacy, Fn: func(ctx context.Context) error {
		n, err := svc.ProcessPending(ctx, batch)
		if n > 0 {
			logger.Info("Processed privacy requests", zap.Int("count", n))
		}
		return err
	}}
}

// AutoCloseDisputesJob closes disputes without activity for idle
func AutoCloseDisputesJob(svc DisputeCloser, idle time.Duration, batch int, logger *zap.Logger) Job {
	return JobFunc{JobName: JobAutoCloseDisputes, Fn: func(ctx context.Context) error {
		n, err := svc.AutoCloseStale(ctx, idle, batch)
		if n > 0 {
			logger.Info("Auto-closed stale disputes", zap.Int("count", n))
		}
		return err
	}}
}

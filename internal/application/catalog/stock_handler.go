package catalog

import (
	"context"
	"fmt"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"go.uber.org/zap"
)

// StockHandler settles stock reservations when sub-orders ship or are
// cancelled. Shipping converts reserved units into shipped units,
// cancellation returns them to the available pool. All products of the
// sub-order are settled in one transaction.
type StockHandler struct {
	txScope   txscope.TransactionScope
	orderRepo order.Repository
	logger    *zap.Logger
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(txScope txscope.TransactionScope, orderRepo order.Repository, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		txScope:   txScope,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StockHandler) EventTypes() []string {
	return []string{order.EventTypeSubOrderStatusChanged}
}

// Handle processes a SubOrderStatusChangedEvent
func (h *StockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*order.SubOrderStatusChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", order.EventTypeSubOrderStatusChanged),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeSubOrderStatusChanged, event.EventType())
	}
	if changed.ToStatus != order.StatusShipped && changed.ToStatus != order.StatusCancelled {
		return nil
	}

	o, err := h.orderRepo.FindByIDForTenant(ctx, event.TenantID(), event.AggregateID())
	if err != nil {
		return fmt.Errorf("load order %s: %w", event.AggregateID(), err)
	}
	sub, err := o.SubOrder(changed.SubOrderID)
	if err != nil {
		return err
	}

	err = h.txScope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		products := repos.Products()
		for _, item := range sub.Items {
			product, err := products.FindByIDForTenant(ctx, event.TenantID(), item.ProductID)
			if err != nil {
				if shared.CodeOf(err) == shared.ErrNotFound.Code {
					h.logger.Warn("product of order item no longer exists",
						zap.String("product_id", item.ProductID.String()),
						zap.String("sub_order", sub.Number))
					continue
				}
				return err
			}

			if changed.ToStatus == order.StatusShipped {
				if err := product.Fulfil(item.Quantity); err != nil {
					h.logger.Warn("stock fulfilment skipped",
						zap.String("sku", product.SKU),
						zap.Int("quantity", item.Quantity),
						zap.Int("reserved", product.Reserved),
						zap.Error(err))
					continue
				}
			} else {
				product.Release(item.Quantity)
			}
			if err := products.SaveWithLock(ctx, product); err != nil {
				return fmt.Errorf("save stock of %s: %w", product.SKU, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.logger.Info("stock settled for sub-order",
		zap.String("sub_order", sub.Number),
		zap.String("status", string(changed.ToStatus)),
		zap.Int("items", len(sub.Items)))
	return nil
}

var _ shared.EventHandler = (*StockHandler)(nil)

package audit

import (
	"context"
	"fmt"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditedEventTypes are the domain events written to the audit log
func AuditedEventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderPaid,
		order.EventTypeSubOrderStatusChanged,
		returns.EventTypeReturnRequested,
		returns.EventTypeReturnStatusChanged,
		returns.EventTypeDisputeOpened,
		returns.EventTypeDisputeStatusChanged,
		payment.EventTypePaymentSucceeded,
		payment.EventTypePaymentFailed,
		payment.EventTypePaymentRefunded,
		featureflag.EventTypeFeatureFlagChanged,
		privacy.EventTypeDataRequestCreated,
		privacy.EventTypeDataRequestCompleted,
		privacy.EventTypeDataRequestRejected,
		privacy.EventTypeDataRequestFailed,
	}
}

// EventSubscriber writes domain events to the audit log
type EventSubscriber struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewEventSubscriber creates a new EventSubscriber
func NewEventSubscriber(repo audit.Repository, logger *zap.Logger) *EventSubscriber {
	return &EventSubscriber{repo: repo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *EventSubscriber) EventTypes() []string {
	return AuditedEventTypes()
}

// Handle appends one entry per event. The event itself is the detail payload.
func (h *EventSubscriber) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		actor *uuid.UUID
		role  = shared.RoleSystem
	)
	if aware, ok := event.(shared.ActorAware); ok && aware.Actor() != uuid.Nil {
		id := aware.Actor()
		actor = &id
		role = ""
	}
	entry, err := audit.NewEntry(event.TenantID(), actor, role, event.EventType(),
		event.AggregateType(), event.AggregateID().String(), event)
	if err != nil {
		return fmt.Errorf("build audit entry for %s: %w", event.EventType(), err)
	}
	entry.CreatedAt = event.OccurredAt()
	if err := h.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry for %s: %w", event.EventType(), err)
	}
	h.logger.Debug("audit entry appended",
		zap.String("action", entry.Action),
		zap.String("entity_id", entry.EntityID))
	return nil
}

var _ shared.EventHandler = (*EventSubscriber)(nil)

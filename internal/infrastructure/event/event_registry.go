package event

import (
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
)

// RegisterAllEvents registers every domain event type with the serializer.
// The outbox processor can only relay registered types.
func RegisterAllEvents(s *EventSerializer) {
	// Identity
	s.Register(identity.EventTypeUserRegistered, func() shared.DomainEvent { return &identity.UserRegisteredEvent{} })
	s.Register(identity.EventTypeUserPasswordChanged, func() shared.DomainEvent { return &identity.UserPasswordChangedEvent{} })
	s.Register(identity.EventTypeUserStatusChanged, func() shared.DomainEvent { return &identity.UserStatusChangedEvent{} })

	// Catalog
	s.Register(catalog.EventTypeCategoryChanged, func() shared.DomainEvent { return &catalog.CategoryChangedEvent{} })
	s.Register(catalog.EventTypeSellerStatusChanged, func() shared.DomainEvent { return &catalog.SellerStatusChangedEvent{} })
	s.Register(catalog.EventTypeProductChanged, func() shared.DomainEvent { return &catalog.ProductChangedEvent{} })

	// Pricing
	s.Register(pricing.EventTypeRuleChanged, func() shared.DomainEvent { return &pricing.RuleChangedEvent{} })
	s.Register(pricing.EventTypePromotionChanged, func() shared.DomainEvent { return &pricing.PromotionChangedEvent{} })
	s.Register(pricing.EventTypePromotionRedeemed, func() shared.DomainEvent { return &pricing.PromotionRedeemedEvent{} })

	// Orders
	s.Register(order.EventTypeOrderPlaced, func() shared.DomainEvent { return &order.OrderPlacedEvent{} })
	s.Register(order.EventTypeOrderPaid, func() shared.DomainEvent { return &order.OrderPaidEvent{} })
	s.Register(order.EventTypeOrderStatusChanged, func() shared.DomainEvent { return &order.OrderStatusChangedEvent{} })
	s.Register(order.EventTypeSubOrderStatusChanged, func() shared.DomainEvent { return &order.SubOrderStatusChangedEvent{} })
	s.Register(order.EventTypeSubOrderShipped, func() shared.DomainEvent { return &order.SubOrderShippedEvent{} })

	// Payments
	s.Register(payment.EventTypePaymentSucceeded, func() shared.DomainEvent { return &payment.PaymentSucceededEvent{} })
	s.Register(payment.EventTypePaymentFailed, func() shared.DomainEvent { return &payment.PaymentFailedEvent{} })
	s.Register(payment.EventTypePaymentRefunded, func() shared.DomainEvent { return &payment.PaymentRefundedEvent{} })

	// Returns and disputes
	s.Register(returns.EventTypeReturnRequested, func() shared.DomainEvent { return &returns.ReturnRequestedEvent{} })
	s.Register(returns.EventTypeReturnStatusChanged, func() shared.DomainEvent { return &returns.ReturnStatusChangedEvent{} })
	s.Register(returns.EventTypeDisputeOpened, func() shared.DomainEvent { return &returns.DisputeOpenedEvent{} })
	s.Register(returns.EventTypeDisputeMessagePosted, func() shared.DomainEvent { return &returns.DisputeMessagePostedEvent{} })
	s.Register(returns.EventTypeDisputeStatusChanged, func() shared.DomainEvent { return &returns.DisputeStatusChangedEvent{} })

	// Feature flags
	s.Register(featureflag.EventTypeFeatureFlagChanged, func() shared.DomainEvent { return &featureflag.FeatureFlagChangedEvent{} })

	// Privacy; one struct carries every lifecycle type
	for _, t := range []string{
		privacy.EventTypeDataRequestCreated,
		privacy.EventTypeDataRequestCompleted,
		privacy.EventTypeDataRequestRejected,
		privacy.EventTypeDataRequestFailed,
	} {
		s.Register(t, func() shared.DomainEvent { return &privacy.DataRequestEvent{} })
	}
}

package catalog

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SellerService handles storefront onboarding and administration
type SellerService struct {
	sellerRepo     catalog.SellerRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSellerService creates a new SellerService
func NewSellerService(sellerRepo catalog.SellerRepository, logger *zap.Logger) *SellerService {
	return &SellerService{
		sellerRepo: sellerRepo,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SellerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Get returns a storefront by ID
func (s *SellerService) Get(ctx context.Context, tenantID, sellerID uuid.UUID) (*SellerResponse, error) {
	seller, err := s.sellerRepo.FindByIDForTenant(ctx, tenantID, sellerID)
	if err != nil {
		return nil, err
	}
	resp := ToSellerResponse(seller)
	return &resp, nil
}

// GetMine returns the storefront operated by the calling seller user
func (s *SellerService) GetMine(ctx context.Context, tenantID uuid.UUID, actor shared.Actor) (*SellerResponse, error) {
	if actor.Role != shared.RoleSeller {
		return nil, shared.ErrForbidden
	}
	seller, err := s.sellerRepo.FindByUserID(ctx, tenantID, actor.UserID)
	if err != nil {
		return nil, err
	}
	resp := ToSellerResponse(seller)
	return &resp, nil
}

// List returns storefronts for admins
func (s *SellerService) List(ctx context.Context, tenantID uuid.UUID, f SellerListFilter) (shared.Paginated[SellerResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "created_at",
		Search:   f.Search,
	}.Normalize()
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}

	sellers, total, err := s.sellerRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[SellerResponse]{}, err
	}
	items := make([]SellerResponse, len(sellers))
	for i := range sellers {
		items[i] = ToSellerResponse(&sellers[i])
	}
	return paged(items, total, filter), nil
}

// Approve activates a pending storefront
func (s *SellerService) Approve(ctx context.Context, tenantID, sellerID uuid.UUID, actor shared.Actor) (*SellerResponse, error) {
	return s.update(ctx, tenantID, sellerID, actor, func(seller *catalog.Seller) error {
		return seller.Approve()
	})
}

// Suspend blocks a storefront from selling
func (s *SellerService) Suspend(ctx context.Context, tenantID, sellerID uuid.UUID, req SuspendSellerRequest, actor shared.Actor) (*SellerResponse, error) {
	return s.update(ctx, tenantID, sellerID, actor, func(seller *catalog.Seller) error {
		return seller.Suspend(req.Reason)
	})
}

// Reactivate lifts a suspension
func (s *SellerService) Reactivate(ctx context.Context, tenantID, sellerID uuid.UUID, actor shared.Actor) (*SellerResponse, error) {
	return s.update(ctx, tenantID, sellerID, actor, func(seller *catalog.Seller) error {
		return seller.Reactivate()
	})
}

// ChangeType moves a storefront to another commission tier
func (s *SellerService) ChangeType(ctx context.Context, tenantID, sellerID uuid.UUID, req ChangeSellerTypeRequest, actor shared.Actor) (*SellerResponse, error) {
	return s.update(ctx, tenantID, sellerID, actor, func(seller *catalog.Seller) error {
		return seller.ChangeType(catalog.SellerType(req.Type))
	})
}

// UpdateVAT sets the VAT registration. Sellers may only change their own store.
func (s *SellerService) UpdateVAT(ctx context.Context, tenantID, sellerID uuid.UUID, req UpdateVATRequest, actor shared.Actor) (*SellerResponse, error) {
	if !actor.IsPrivileged() && !actor.OwnsStore(sellerID) {
		return nil, shared.ErrForbidden
	}
	return s.update(ctx, tenantID, sellerID, actor, func(seller *catalog.Seller) error {
		seller.SetVATRegistration(req.VATNumber)
		return nil
	})
}

func (s *SellerService) update(ctx context.Context, tenantID, sellerID uuid.UUID, actor shared.Actor, apply func(*catalog.Seller) error) (*SellerResponse, error) {
	seller, err := s.sellerRepo.FindByIDForTenant(ctx, tenantID, sellerID)
	if err != nil {
		return nil, err
	}
	if err := apply(seller); err != nil {
		return nil, err
	}
	if err := s.sellerRepo.Save(ctx, seller); err != nil {
		return nil, err
	}

	events := shared.StampActor(seller.PullDomainEvents(), actor.UserID)
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish seller events", zap.Error(err))
		}
	}

	s.logger.Info("Seller updated",
		zap.String("seller_id", seller.ID.String()),
		zap.String("status", string(seller.Status)),
		zap.String("type", string(seller.Type)))
	resp := ToSellerResponse(seller)
	return &resp, nil
}

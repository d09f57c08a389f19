package pricing

import (
	"context"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromotionService administers marketplace promo codes
type PromotionService struct {
	promotionRepo  pricing.PromotionRepository
	currency       valueobject.Currency
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewPromotionService creates a new PromotionService
func NewPromotionService(promotionRepo pricing.PromotionRepository, currency valueobject.Currency, logger *zap.Logger) *PromotionService {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &PromotionService{
		promotionRepo: promotionRepo,
		currency:      currency,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PromotionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create adds a promo code; codes are unique per tenant
func (s *PromotionService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePromotionRequest, actor shared.Actor) (*PromotionResponse, error) {
	code := pricing.NormalizePromoCode(req.Code)
	existing, err := s.promotionRepo.FindByCode(ctx, tenantID, code)
	if err != nil && shared.CodeOf(err) != shared.ErrNotFound.Code {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("PROMOTION_CODE_TAKEN", "A promotion with this code already exists")
	}

	window := pricing.Window{From: req.ValidFrom.UTC(), To: utcPtr(req.ValidTo)}
	promo, err := pricing.NewPromotion(tenantID, code, req.Description, pricing.PromotionType(req.Type),
		req.Value, s.currency, req.MinSubtotal, window, req.MaxRedemptions)
	if err != nil {
		return nil, err
	}
	if err := s.promotionRepo.Save(ctx, promo); err != nil {
		return nil, err
	}
	s.publish(ctx, promo, actor)

	s.logger.Info("Promotion created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", promo.Code))
	resp := ToPromotionResponse(promo)
	return &resp, nil
}

// Get returns one promotion
func (s *PromotionService) Get(ctx context.Context, tenantID, promotionID uuid.UUID) (*PromotionResponse, error) {
	promo, err := s.promotionRepo.FindByIDForTenant(ctx, tenantID, promotionID)
	if err != nil {
		return nil, err
	}
	resp := ToPromotionResponse(promo)
	return &resp, nil
}

// List returns promotions for admins
func (s *PromotionService) List(ctx context.Context, tenantID uuid.UUID, f PromotionListFilter) (shared.Paginated[PromotionResponse], error) {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, OrderBy: "created_at", Search: f.Search}.Normalize()
	if f.Active != nil {
		filter.Filters["active"] = *f.Active
	}
	promos, total, err := s.promotionRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[PromotionResponse]{}, err
	}
	items := make([]PromotionResponse, len(promos))
	for i := range promos {
		items[i] = ToPromotionResponse(&promos[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Deactivate stops a promotion from being applied
func (s *PromotionService) Deactivate(ctx context.Context, tenantID, promotionID uuid.UUID, actor shared.Actor) (*PromotionResponse, error) {
	promo, err := s.promotionRepo.FindByIDForTenant(ctx, tenantID, promotionID)
	if err != nil {
		return nil, err
	}
	if !promo.Active {
		return nil, shared.NewDomainError("ALREADY_INACTIVE", "Promotion is already inactive")
	}
	promo.Deactivate()
	if err := s.promotionRepo.Save(ctx, promo); err != nil {
		return nil, err
	}
	s.publish(ctx, promo, actor)
	resp := ToPromotionResponse(promo)
	return &resp, nil
}

// Resolve loads a promotion by the code a buyer typed and checks it applies
// to subtotal. Unknown codes are reported as PROMOTION_NOT_FOUND.
func (s *PromotionService) Resolve(ctx context.Context, tenantID uuid.UUID, code string, subtotal valueobject.Money) (*pricing.Promotion, error) {
	promo, err := s.promotionRepo.FindByCode(ctx, tenantID, pricing.NormalizePromoCode(code))
	if err != nil {
		if shared.CodeOf(err) == shared.ErrNotFound.Code {
			return nil, shared.NewDomainError("PROMOTION_NOT_FOUND", "Promotion code does not exist")
		}
		return nil, err
	}
	if err := promo.CheckApplicable(s.now(), subtotal); err != nil {
		return nil, err
	}
	return promo, nil
}

func (s *PromotionService) publish(ctx context.Context, promo *pricing.Promotion, actor shared.Actor) {
	events := shared.StampActor(promo.PullDomainEvents(), actor.UserID)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish promotion events", zap.Error(err))
	}
}

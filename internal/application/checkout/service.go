package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cartapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/cart"
	orderapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlagKey gates the whole checkout
const FlagKey = "checkout.enabled"

var (
	ErrCheckoutDisabled   = shared.NewDomainError("CHECKOUT_DISABLED", "Checkout is temporarily unavailable")
	ErrCheckoutInProgress = shared.NewDomainError("CHECKOUT_IN_PROGRESS", "A checkout with this idempotency key is still being processed")
	ErrUnknownProvider    = shared.NewDomainError("UNKNOWN_PAYMENT_PROVIDER", "Payment provider is not supported")
	ErrPaymentUnavailable = shared.NewDomainError("PAYMENT_UNAVAILABLE", "Payment could not be started; the order will expire unpaid")
)

// FlagChecker evaluates feature flags
type FlagChecker interface {
	IsEnabled(ctx context.Context, key string, ec featureflag.EvalContext) bool
}

// Config holds checkout settings
type Config struct {
	IdempotencyTTL   time.Duration
	PaymentReturnURL string
}

// ServiceConfig bundles the collaborators of the checkout service
type ServiceConfig struct {
	TxScope     txscope.TransactionScope
	CartRepo    cart.Repository
	PaymentRepo payment.Repository
	Quoter      *cartapp.Quoter
	Providers   *payment.Registry
	Idempotency shared.IdempotencyStore
	Flags       FlagChecker
	Config      Config
	Logger      *zap.Logger
}

// Service places orders from carts
type Service struct {
	txScope     txscope.TransactionScope
	cartRepo    cart.Repository
	paymentRepo payment.Repository
	quoter      *cartapp.Quoter
	providers   *payment.Registry
	idempotency shared.IdempotencyStore
	flags       FlagChecker
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new checkout Service
func NewService(sc ServiceConfig) *Service {
	if sc.Config.IdempotencyTTL <= 0 {
		sc.Config.IdempotencyTTL = 24 * time.Hour
	}
	logger := sc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		txScope:     sc.TxScope,
		cartRepo:    sc.CartRepo,
		paymentRepo: sc.PaymentRepo,
		quoter:      sc.Quoter,
		providers:   sc.Providers,
		idempotency: sc.Idempotency,
		flags:       sc.Flags,
		cfg:         sc.Config,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Checkout places an order for the buyer's cart and starts the payment. A
// repeated call with the same idempotency key returns the first result.
func (s *Service) Checkout(ctx context.Context, tenantID uuid.UUID, req CheckoutRequest, idempotencyKey string, actor shared.Actor) (*CheckoutResponse, error) {
	if s.flags != nil && !s.flags.IsEnabled(ctx, FlagKey, featureflag.EvalContext{TenantID: tenantID, UserID: actor.UserID, Role: actor.Role}) {
		return nil, ErrCheckoutDisabled
	}
	if actor.UserID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if idempotencyKey == "" || s.idempotency == nil {
		return s.checkout(ctx, tenantID, req, actor)
	}

	key := fmt.Sprintf("checkout:%s:%s:%s", tenantID, actor.UserID, idempotencyKey)
	if resp, err := s.replay(ctx, key); err != nil || resp != nil {
		return resp, err
	}
	claimed, err := s.idempotency.Claim(ctx, key, s.cfg.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !claimed {
		// The first request may have completed between Result and Claim
		if resp, err := s.replay(ctx, key); err != nil || resp != nil {
			return resp, err
		}
		return nil, ErrCheckoutInProgress
	}

	resp, err := s.checkout(ctx, tenantID, req, actor)
	if err != nil {
		if relErr := s.idempotency.Release(ctx, key); relErr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.Error(relErr))
		}
		return nil, err
	}
	if data, mErr := json.Marshal(resp); mErr == nil {
		if err := s.idempotency.Complete(ctx, key, data, s.cfg.IdempotencyTTL); err != nil {
			s.logger.Warn("Failed to store checkout result", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *Service) replay(ctx context.Context, key string) (*CheckoutResponse, error) {
	data, err := s.idempotency.Result(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read idempotency result: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var resp CheckoutResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotency result: %w", err)
	}
	resp.Replayed = true
	return &resp, nil
}

func (s *Service) checkout(ctx context.Context, tenantID uuid.UUID, req CheckoutRequest, actor shared.Actor) (*CheckoutResponse, error) {
	address, err := req.Address.toAddress()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	provider, err := s.providers.Get(req.Provider)
	if err != nil {
		if errors.Is(err, payment.ErrProviderNotFound) {
			return nil, ErrUnknownProvider
		}
		return nil, err
	}

	c, err := s.cartRepo.FindByIDForTenant(ctx, tenantID, req.CartID)
	if err != nil {
		return nil, err
	}
	if c.BuyerID != actor.UserID {
		return nil, shared.ErrNotFound
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart is empty")
	}
	at := s.now()
	if c.IsExpired(at) {
		return nil, shared.NewDomainError("CART_EXPIRED", "Cart has expired")
	}

	var (
		placed *order.Order
		pay    *payment.Payment
	)
	err = s.txScope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		products, err := s.loadProducts(ctx, repos, c)
		if err != nil {
			return err
		}
		if err := s.checkSellers(ctx, repos, c); err != nil {
			return err
		}
		for _, p := range products {
			c.Refresh(p.ID, p.Name, p.Price)
		}

		promo, err := s.promotion(ctx, repos, c, at)
		if err != nil {
			return err
		}
		quote, err := s.quoter.Quote(ctx, c, address.Country, promo, at)
		if err != nil {
			return err
		}

		for _, it := range c.Items {
			p := products[it.ProductID]
			if err := p.Reserve(it.Quantity); err != nil {
				return err
			}
			if err := repos.Products().SaveWithLock(ctx, p); err != nil {
				return err
			}
		}

		number, err := repos.Orders().GenerateOrderNumber(ctx, tenantID, at)
		if err != nil {
			return err
		}
		placed, err = order.NewOrder(tenantID, actor.UserID, number, address, quote)
		if err != nil {
			return err
		}
		pay, err = payment.NewPayment(tenantID, placed.ID, actor.UserID, placed.Total, provider.Name())
		if err != nil {
			return err
		}
		placed.AttachPayment(pay.ID)

		events := placed.PullDomainEvents()
		if promo != nil {
			if err := promo.Redeem(at); err != nil {
				return err
			}
			if err := repos.Promotions().SaveWithLock(ctx, promo); err != nil {
				return err
			}
			events = append(events, promo.PullDomainEvents()...)
		}
		if err := repos.Orders().Save(ctx, placed); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, pay); err != nil {
			return err
		}
		if err := repos.Carts().Delete(ctx, tenantID, c.ID); err != nil {
			return err
		}
		return repos.Events().Record(ctx, shared.StampActor(events, actor.UserID)...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_number", placed.Number),
		zap.Int("sub_orders", len(placed.SubOrders)),
		zap.String("total", placed.Total.String()))

	session, err := provider.CreateCheckout(ctx, payment.CheckoutRequest{
		TenantID:    tenantID,
		PaymentID:   pay.ID,
		OrderID:     placed.ID,
		OrderNumber: placed.Number,
		Amount:      pay.Amount,
		BuyerEmail:  req.BuyerEmail,
		ReturnURL:   s.cfg.PaymentReturnURL,
	})
	if err != nil {
		s.logger.Error("Payment provider rejected checkout",
			zap.String("order_number", placed.Number),
			zap.String("provider", provider.Name()),
			zap.Error(err))
		if _, fErr := pay.Fail(err.Error()); fErr == nil {
			if sErr := s.paymentRepo.SaveWithLock(ctx, pay); sErr != nil {
				s.logger.Warn("Failed to record payment failure", zap.Error(sErr))
			}
		}
		return nil, ErrPaymentUnavailable
	}
	pay.StartCheckout(session)
	if err := s.paymentRepo.SaveWithLock(ctx, pay); err != nil {
		return nil, err
	}

	return &CheckoutResponse{
		Order: orderapp.ToOrderResponse(placed),
		Payment: PaymentResponse{
			ID:          pay.ID,
			Provider:    pay.Provider,
			Status:      string(pay.Status),
			RedirectURL: pay.RedirectURL,
		},
	}, nil
}

// loadProducts returns the cart's products keyed by ID after checking each
// is listed with enough stock
func (s *Service) loadProducts(ctx context.Context, repos txscope.TransactionalRepositories, c *cart.Cart) (map[uuid.UUID]*catalog.Product, error) {
	list, err := repos.Products().FindByIDs(ctx, c.TenantID, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(list))
	for i := range list {
		products[list[i].ID] = &list[i]
	}
	for _, it := range c.Items {
		p, ok := products[it.ProductID]
		if !ok || p.Status != catalog.ProductStatusActive {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product "+it.SKU+" is no longer available")
		}
		if p.Available() < it.Quantity {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock for "+it.SKU)
		}
	}
	return products, nil
}

func (s *Service) checkSellers(ctx context.Context, repos txscope.TransactionalRepositories, c *cart.Cart) error {
	groups := c.GroupBySeller()
	ids := make([]uuid.UUID, len(groups))
	for i, g := range groups {
		ids[i] = g.SellerID
	}
	sellers, err := repos.Sellers().FindByIDs(ctx, c.TenantID, ids)
	if err != nil {
		return err
	}
	active := make(map[uuid.UUID]bool, len(sellers))
	for i := range sellers {
		active[sellers[i].ID] = sellers[i].CanSell()
	}
	for _, id := range ids {
		if !active[id] {
			return shared.NewDomainError("SELLER_UNAVAILABLE", "A seller in the cart is not accepting orders")
		}
	}
	return nil
}

func (s *Service) promotion(ctx context.Context, repos txscope.TransactionalRepositories, c *cart.Cart, at time.Time) (*pricing.Promotion, error) {
	if c.PromotionCode == "" {
		return nil, nil
	}
	promo, err := repos.Promotions().FindByCode(ctx, c.TenantID, c.PromotionCode)
	if err != nil {
		if shared.CodeOf(err) == shared.ErrNotFound.Code {
			return nil, shared.NewDomainError("PROMOTION_NOT_FOUND", "Promotion code does not exist")
		}
		return nil, err
	}
	if err := promo.CheckApplicable(at, cartapp.ToCartResponse(c).Subtotal); err != nil {
		return nil, err
	}
	return promo, nil
}

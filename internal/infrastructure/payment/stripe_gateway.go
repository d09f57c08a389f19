package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/refund"
	"go.uber.org/zap"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
)

// StripeProviderName is the registry key of the Stripe Checkout provider
const StripeProviderName = "stripe"

const (
	metaTenantID  = "tenant_id"
	metaPaymentID = "payment_id"
	metaOrderID   = "order_id"

	// Stripe only accepts session lifetimes between 30 minutes and 24 hours
	minStripeSessionTTL = 30 * time.Minute
	maxStripeSessionTTL = 24 * time.Hour
)

// StripeGatewayConfig contains configuration for the Stripe provider
type StripeGatewayConfig struct {
	SecretKey  string
	TestMode   bool
	SessionTTL time.Duration
	// ReturnURL is used when a checkout request carries none
	ReturnURL string
}

// Errors returned by the Stripe provider
var (
	ErrStripeMissingKey = errors.New("stripe gateway: secret key is required")
	ErrStripeKeyMode    = errors.New("stripe gateway: secret key does not match test mode")
	ErrStripeMissingURL = errors.New("stripe gateway: missing return URL")
	ErrStripeAmount     = errors.New("stripe gateway: amount must be positive whole cents")
)

// Validate validates the configuration and clamps the session lifetime
func (c *StripeGatewayConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrStripeMissingKey
	}
	wantPrefix := "sk_live_"
	if c.TestMode {
		wantPrefix = "sk_test_"
	}
	if !strings.HasPrefix(c.SecretKey, wantPrefix) && !strings.HasPrefix(c.SecretKey, "rk_") {
		return ErrStripeKeyMode
	}
	if c.ReturnURL == "" {
		return ErrStripeMissingURL
	}
	switch {
	case c.SessionTTL < minStripeSessionTTL:
		c.SessionTTL = minStripeSessionTTL
	case c.SessionTTL > maxStripeSessionTTL:
		c.SessionTTL = maxStripeSessionTTL
	}
	return nil
}

// StripeGatewayConfigFrom builds the provider configuration from application config
func StripeGatewayConfigFrom(cfg *config.Config) *StripeGatewayConfig {
	return &StripeGatewayConfig{
		SecretKey:  cfg.Payment.Stripe.SecretKey,
		TestMode:   cfg.Payment.Stripe.TestMode,
		SessionTTL: cfg.Payment.Stripe.SessionTTL,
		ReturnURL:  cfg.App.BaseURL + "/api/v1/payments/return",
	}
}

// StripeGateway collects payments through hosted Stripe Checkout sessions.
// The checkout session ID is the return token: Stripe substitutes it into
// the success and cancel URLs, and VerifyReturn reads the session back from
// the API instead of trusting anything in the redirect.
type StripeGateway struct {
	config   *StripeGatewayConfig
	sessions session.Client
	refunds  refund.Client
	logger   *zap.Logger
	now      func() time.Time
}

// StripeOption customises a StripeGateway
type StripeOption func(*StripeGateway)

// WithStripeBackend routes API calls through b
func WithStripeBackend(b stripe.Backend) StripeOption {
	return func(g *StripeGateway) {
		g.sessions.B = b
		g.refunds.B = b
	}
}

// NewStripeGateway creates a Stripe Checkout provider
func NewStripeGateway(cfg *StripeGatewayConfig, logger *zap.Logger, opts ...StripeOption) (*StripeGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend := stripe.GetBackend(stripe.APIBackend)
	g := &StripeGateway{
		config:   cfg,
		sessions: session.Client{B: backend, Key: cfg.SecretKey},
		refunds:  refund.Client{B: backend, Key: cfg.SecretKey},
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name returns the registry key
func (g *StripeGateway) Name() string {
	return StripeProviderName
}

// CreateCheckout opens a one-line Checkout session for the whole order total
func (g *StripeGateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	amount, err := toMinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = g.config.ReturnURL
	}
	expiresAt := g.now().Add(g.config.SessionTTL)

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(stripeReturnURL(returnURL)),
		CancelURL:         stripe.String(stripeReturnURL(returnURL)),
		ClientReferenceID: stripe.String(req.PaymentID.String()),
		ExpiresAt:         stripe.Int64(expiresAt.Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(string(req.Amount.Currency()))),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order " + req.OrderNumber),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.BuyerEmail != "" {
		params.CustomerEmail = stripe.String(req.BuyerEmail)
	}
	params.Context = ctx
	params.AddMetadata(metaTenantID, req.TenantID.String())
	params.AddMetadata(metaPaymentID, req.PaymentID.String())
	params.AddMetadata(metaOrderID, req.OrderID.String())
	params.SetIdempotencyKey("checkout-" + req.PaymentID.String())

	s, err := g.sessions.New(params)
	if err != nil {
		g.logger.Warn("Stripe checkout session creation failed",
			zap.String("payment_id", req.PaymentID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderRequest, err)
	}

	g.logger.Debug("Stripe checkout session created",
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("session_id", s.ID))

	return &payment.CheckoutSession{
		ProviderRef: s.ID,
		RedirectURL: s.URL,
		ExpiresAt:   time.Unix(s.ExpiresAt, 0).UTC(),
	}, nil
}

// VerifyReturn loads the Checkout session named by token. A paid session
// succeeds; an expired one fails. A buyer who comes back from an open,
// unpaid session abandoned it, so the session is expired at Stripe before
// the payment is reported failed.
func (g *StripeGateway) VerifyReturn(ctx context.Context, token string) (*payment.ReturnResult, error) {
	if !strings.HasPrefix(token, "cs_") {
		return nil, payment.ErrInvalidToken
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	s, err := g.sessions.Get(token, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, payment.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderRequest, err)
	}

	result, err := returnResultFrom(s)
	if err != nil {
		return nil, err
	}

	switch {
	case s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		result.Outcome = payment.OutcomeSucceeded
		if s.PaymentIntent != nil && s.PaymentIntent.ID != "" {
			result.ProviderRef = s.PaymentIntent.ID
		}
	case s.Status == stripe.CheckoutSessionStatusOpen:
		expire := &stripe.CheckoutSessionExpireParams{}
		expire.Context = ctx
		if _, err := g.sessions.Expire(s.ID, expire); err != nil {
			// the buyer may have paid in the meantime
			return nil, fmt.Errorf("%w: expire abandoned session: %v", payment.ErrProviderRequest, err)
		}
		result.Outcome = payment.OutcomeFailed
	default:
		result.Outcome = payment.OutcomeFailed
	}
	return result, nil
}

// Refund refunds part or all of the PaymentIntent behind a settled session
func (g *StripeGateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if !strings.HasPrefix(req.ProviderRef, "pi_") {
		return nil, fmt.Errorf("%w: payment %s has no payment intent", payment.ErrRefundNotSupported, req.PaymentID)
	}
	amount, err := toMinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.ProviderRef),
		Amount:        stripe.Int64(amount),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.AddMetadata(metaTenantID, req.TenantID.String())
	params.AddMetadata(metaPaymentID, req.PaymentID.String())
	if req.Reason != "" {
		params.AddMetadata("reason", req.Reason)
	}
	if req.Reference != "" {
		params.SetIdempotencyKey("refund-" + req.PaymentID.String() + "-" + req.Reference)
	}

	r, err := g.refunds.New(params)
	if err != nil {
		g.logger.Warn("Stripe refund failed",
			zap.String("payment_id", req.PaymentID.String()),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderRequest, err)
	}
	if r.Status == stripe.RefundStatusFailed || r.Status == stripe.RefundStatusCanceled {
		return nil, fmt.Errorf("%w: refund %s is %s", payment.ErrProviderRequest, r.ID, r.Status)
	}

	return &payment.RefundResult{
		RefundRef: r.ID,
		Amount:    fromMinorUnits(r.Amount, req.Amount.Currency()),
	}, nil
}

func returnResultFrom(s *stripe.CheckoutSession) (*payment.ReturnResult, error) {
	paymentID, err := uuid.Parse(s.Metadata[metaPaymentID])
	if err != nil {
		return nil, payment.ErrInvalidToken
	}
	orderID, err := uuid.Parse(s.Metadata[metaOrderID])
	if err != nil {
		return nil, payment.ErrInvalidToken
	}
	currency, err := valueobject.ParseCurrency(string(s.Currency))
	if err != nil {
		return nil, payment.ErrInvalidToken
	}
	return &payment.ReturnResult{
		PaymentID:   paymentID,
		OrderID:     orderID,
		ProviderRef: s.ID,
		Amount:      fromMinorUnits(s.AmountTotal, currency),
	}, nil
}

// stripeReturnURL appends the provider and the session placeholder Stripe
// fills in. The braces must reach Stripe unescaped.
func stripeReturnURL(base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "provider=" + StripeProviderName + "&token={CHECKOUT_SESSION_ID}"
}

func toMinorUnits(m valueobject.Money) (int64, error) {
	minor := m.Amount().Shift(valueobject.MinorUnits)
	if !minor.IsInteger() || !minor.IsPositive() {
		return 0, fmt.Errorf("%w: %s", ErrStripeAmount, m.String())
	}
	return minor.IntPart(), nil
}

func fromMinorUnits(amount int64, currency valueobject.Currency) valueobject.Money {
	m, _ := valueobject.NewMoney(decimal.New(amount, -valueobject.MinorUnits), currency)
	return m
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SimulatedProviderName is the registry key of the simulated gateway
const SimulatedProviderName = "simulated"

var (
	ErrSessionNotFound = errors.New("simulated gateway: checkout session not found")
	ErrSessionExpired  = errors.New("simulated gateway: checkout session expired")
	ErrInvalidOutcome  = errors.New("simulated gateway: outcome must be succeeded or failed")
)

// returnClaims is the signed payload the buyer carries back to the marketplace
type returnClaims struct {
	jwt.RegisteredClaims
	PaymentID   string          `json:"payment_id"`
	OrderID     string          `json:"order_id"`
	Amount      string          `json:"amount"`
	Currency    string          `json:"currency"`
	Outcome     payment.Outcome `json:"outcome"`
	ProviderRef string          `json:"provider_ref"`
}

// checkoutSession is a hosted checkout waiting for the buyer's decision
type checkoutSession struct {
	request   payment.CheckoutRequest
	returnURL string
	expiresAt time.Time
}

// SimulatedGateway is a hosted-checkout gateway that settles payments with an
// HMAC-signed round-trip token instead of a real acquirer
type SimulatedGateway struct {
	config *SimulatedGatewayConfig
	secret []byte

	mu       sync.Mutex
	sessions map[string]checkoutSession

	now func() time.Time
}

// NewSimulatedGateway creates a new simulated gateway
func NewSimulatedGateway(config *SimulatedGatewayConfig) (*SimulatedGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SimulatedGateway{
		config:   config,
		secret:   []byte(config.Secret),
		sessions: make(map[string]checkoutSession),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Name returns the registry key
func (g *SimulatedGateway) Name() string {
	return SimulatedProviderName
}

// CreateCheckout opens a session and returns the hosted page URL
func (g *SimulatedGateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	if req.PaymentID == uuid.Nil || req.OrderID == uuid.Nil {
		return nil, fmt.Errorf("%w: payment and order are required", payment.ErrProviderRequest)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", payment.ErrProviderRequest)
	}

	ref := "sim_" + uuid.NewString()
	expiresAt := g.now().Add(g.config.TokenTTL)
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = g.config.ReturnURL
	}

	g.mu.Lock()
	g.purgeExpiredLocked()
	g.sessions[ref] = checkoutSession{request: req, returnURL: returnURL, expiresAt: expiresAt}
	g.mu.Unlock()

	redirect, err := url.Parse(g.config.CheckoutURL)
	if err != nil {
		return nil, fmt.Errorf("simulated gateway: invalid checkout URL: %w", err)
	}
	q := redirect.Query()
	q.Set("ref", ref)
	redirect.RawQuery = q.Encode()

	return &payment.CheckoutSession{
		ProviderRef: ref,
		RedirectURL: redirect.String(),
		ExpiresAt:   expiresAt,
	}, nil
}

// Authorize records the buyer's decision on the hosted page and returns the
// URL that carries the signed token back to the marketplace. The session is
// consumed.
func (g *SimulatedGateway) Authorize(ctx context.Context, ref string, outcome payment.Outcome) (string, error) {
	if outcome != payment.OutcomeSucceeded && outcome != payment.OutcomeFailed {
		return "", ErrInvalidOutcome
	}

	g.mu.Lock()
	session, ok := g.sessions[ref]
	delete(g.sessions, ref)
	g.mu.Unlock()
	if !ok {
		return "", ErrSessionNotFound
	}
	if g.now().After(session.expiresAt) {
		return "", ErrSessionExpired
	}

	token, err := g.SignReturnToken(session.request, ref, outcome)
	if err != nil {
		return "", err
	}
	back, err := url.Parse(session.returnURL)
	if err != nil {
		return "", fmt.Errorf("simulated gateway: invalid return URL: %w", err)
	}
	q := back.Query()
	q.Set("provider", SimulatedProviderName)
	q.Set("token", token)
	back.RawQuery = q.Encode()
	return back.String(), nil
}

// SignReturnToken issues the round-trip token for a checkout
func (g *SimulatedGateway) SignReturnToken(req payment.CheckoutRequest, ref string, outcome payment.Outcome) (string, error) {
	now := g.now()
	claims := &returnClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    g.config.Issuer,
			Subject:   req.PaymentID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.config.TokenTTL)),
		},
		PaymentID:   req.PaymentID.String(),
		OrderID:     req.OrderID.String(),
		Amount:      req.Amount.Amount().StringFixed(2),
		Currency:    string(req.Amount.Currency()),
		Outcome:     outcome,
		ProviderRef: ref,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("simulated gateway: sign token: %w", err)
	}
	return signed, nil
}

// VerifyReturn checks the signature, algorithm, issuer and expiry of a return
// token. Amount and currency are returned for the caller to match against the
// payment.
func (g *SimulatedGateway) VerifyReturn(ctx context.Context, token string) (*payment.ReturnResult, error) {
	parsed, err := jwt.ParseWithClaims(token, &returnClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, payment.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*returnClaims)
	if !ok || !parsed.Valid {
		return nil, payment.ErrInvalidToken
	}

	paymentID, err := uuid.Parse(claims.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: payment_id", payment.ErrInvalidToken)
	}
	orderID, err := uuid.Parse(claims.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order_id", payment.ErrInvalidToken)
	}
	if claims.Subject != claims.PaymentID {
		return nil, payment.ErrTokenMismatch
	}
	currency, err := valueobject.ParseCurrency(claims.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: currency", payment.ErrInvalidToken)
	}
	amount, err := decimal.NewFromString(claims.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount", payment.ErrInvalidToken)
	}
	money, err := valueobject.NewMoney(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: amount", payment.ErrInvalidToken)
	}
	if claims.Outcome != payment.OutcomeSucceeded && claims.Outcome != payment.OutcomeFailed {
		return nil, fmt.Errorf("%w: outcome", payment.ErrInvalidToken)
	}

	return &payment.ReturnResult{
		PaymentID:   paymentID,
		OrderID:     orderID,
		ProviderRef: claims.ProviderRef,
		Amount:      money,
		Outcome:     claims.Outcome,
	}, nil
}

// Refund always succeeds for captured simulated payments
func (g *SimulatedGateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if req.ProviderRef == "" {
		return nil, fmt.Errorf("%w: payment was never captured", payment.ErrProviderRequest)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be positive", payment.ErrProviderRequest)
	}
	return &payment.RefundResult{
		RefundRef: "simrf_" + uuid.NewString(),
		Amount:    req.Amount,
	}, nil
}

// Session reports the amount awaiting the buyer's decision on the hosted page
func (g *SimulatedGateway) Session(ref string) (payment.CheckoutRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[ref]
	if !ok || g.now().After(s.expiresAt) {
		return payment.CheckoutRequest{}, false
	}
	return s.request, true
}

func (g *SimulatedGateway) purgeExpiredLocked() {
	now := g.now()
	for ref, s := range g.sessions {
		if now.After(s.expiresAt) {
			delete(g.sessions, ref)
		}
	}
}

// Ensure SimulatedGateway implements payment.Provider
var _ payment.Provider = (*SimulatedGateway)(nil)

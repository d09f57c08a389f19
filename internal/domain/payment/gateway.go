package payment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Provider errors
// ---------------------------------------------------------------------------

var (
	ErrProviderNotFound   = errors.New("payment: provider not registered")
	ErrInvalidToken       = errors.New("payment: invalid return token")
	ErrTokenExpired       = errors.New("payment: return token expired")
	ErrTokenMismatch      = errors.New("payment: return token does not match payment")
	ErrProviderRequest    = errors.New("payment: provider request failed")
	ErrRefundNotSupported = errors.New("payment: provider does not support refunds")
)

// Outcome is what the buyer did at the provider
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// CheckoutRequest asks a provider to start collecting money for a payment
type CheckoutRequest struct {
	TenantID    uuid.UUID
	PaymentID   uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	Amount      valueobject.Money
	BuyerEmail  string
	ReturnURL   string
}

// CheckoutSession is where the buyer is sent to pay
type CheckoutSession struct {
	ProviderRef string
	RedirectURL string
	ExpiresAt   time.Time
}

// ReturnResult is a verified provider callback
type ReturnResult struct {
	PaymentID   uuid.UUID
	OrderID     uuid.UUID
	ProviderRef string
	Amount      valueobject.Money
	Outcome     Outcome
}

// RefundRequest asks the provider to return money
type RefundRequest struct {
	TenantID    uuid.UUID
	PaymentID   uuid.UUID
	ProviderRef string
	Amount      valueobject.Money
	Reason      string
	// Reference is stable across retries of the same refund; providers that
	// support it use it as the idempotency key
	Reference   string
}

// RefundResult is the provider's refund reference
type RefundResult struct {
	RefundRef string
	Amount    valueobject.Money
}

// Provider is a payment provider integration
type Provider interface {
	// Name is the registry key, e.g. "simulated"
	Name() string

	// CreateCheckout starts a hosted payment and returns the redirect
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// VerifyReturn verifies a token the provider sent back with the buyer
	VerifyReturn(ctx context.Context, token string) (*ReturnResult, error)

	// Refund returns money for a captured payment
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

// Registry resolves providers by name
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	fallback  string
}

// NewRegistry creates a registry; the first registered provider is the default
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallback == "" {
		r.fallback = p.Name()
	}
	r.providers[p.Name()] = p
}

// SetDefault selects the provider used when checkout names none
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	r.fallback = name
	return nil
}

// Get returns the named provider; an empty name selects the default
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.fallback
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return p, nil
}

// Names lists registered providers in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

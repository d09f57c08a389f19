// Package txscope defines the unit of work used by use cases that change
// more than one aggregate at once.
package txscope

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/cart"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
)

// TransactionScope runs a function inside one database transaction. If the
// function returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// EventRecorder stores domain events in the transactional outbox; they are
// relayed to the event bus after commit
type EventRecorder interface {
	Record(ctx context.Context, events ...shared.DomainEvent) error
}

// TransactionalRepositories are repositories sharing the current transaction
type TransactionalRepositories interface {
	Users() identity.UserRepository
	Sellers() catalog.SellerRepository
	Products() catalog.ProductRepository
	Promotions() pricing.PromotionRepository
	Carts() cart.Repository
	Orders() order.Repository
	Payments() payment.Repository
	Returns() returns.ReturnRepository
	Disputes() returns.DisputeRepository
	Audit() audit.Repository
	DataRequests() privacy.Repository
	Events() EventRecorder
}

// StaticRepositories is a TransactionalRepositories backed by plain fields
type StaticRepositories struct {
	UserRepo        identity.UserRepository
	SellerRepo      catalog.SellerRepository
	ProductRepo     catalog.ProductRepository
	PromotionRepo   pricing.PromotionRepository
	CartRepo        cart.Repository
	OrderRepo       order.Repository
	PaymentRepo     payment.Repository
	ReturnRepo      returns.ReturnRepository
	DisputeRepo     returns.DisputeRepository
	AuditRepo       audit.Repository
	DataRequestRepo privacy.Repository
	Recorder        EventRecorder
}

func (r StaticRepositories) Users() identity.UserRepository { return r.UserRepo }
func (r StaticRepositories) Sellers() catalog.SellerRepository { return r.SellerRepo }
func (r StaticRepositories) Products() catalog.ProductRepository { return r.ProductRepo }
func (r StaticRepositories) Promotions() pricing.PromotionRepository { return r.PromotionRepo }
func (r StaticRepositories) Carts() cart.Repository { return r.CartRepo }
func (r StaticRepositories) Orders() order.Repository { return r.OrderRepo }
func (r StaticRepositories) Payments() payment.Repository { return r.PaymentRepo }
func (r StaticRepositories) Returns() returns.ReturnRepository { return r.ReturnRepo }
func (r StaticRepositories) Disputes() returns.DisputeRepository { return r.DisputeRepo }
func (r StaticRepositories) Audit() audit.Repository { return r.AuditRepo }
func (r StaticRepositories) DataRequests() privacy.Repository { return r.DataRequestRepo }
func (r StaticRepositories) Events() EventRecorder { return r.Recorder }

// NoOpTransactionScope runs the function against fixed repositories without
// a transaction. Used in tests and by the in-process wiring of tools.
type NoOpTransactionScope struct {
	Repos StaticRepositories
}

func NewNoOpTransactionScope(repos StaticRepositories) *NoOpTransactionScope {
	if repos.Recorder == nil {
		repos.Recorder = &MemoryRecorder{}
	}
	return &NoOpTransactionScope{Repos: repos}
}

func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}

// MemoryRecorder keeps recorded events in memory
type MemoryRecorder struct {
	Events []shared.DomainEvent
}

func (m *MemoryRecorder) Record(_ context.Context, events ...shared.DomainEvent) error {
	m.Events = append(m.Events, events...)
	return nil
}

// Types lists the recorded event types in order
func (m *MemoryRecorder) Types() []string {
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.EventType()
	}
	return out
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = StaticRepositories{}
	_ EventRecorder             = (*MemoryRecorder)(nil)
)

package privacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	auditapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/audit"
	orderapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	returnsapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/txscope"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/identity"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/order"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/privacy"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/returns"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const exportContentType = "application/json"

// Errors returned by the privacy service
var (
	ErrRequestOpen   = shared.NewDomainError("REQUEST_OPEN", "A request of this type is already in progress")
	ErrExportMissing = shared.NewDomainError("EXPORT_NOT_READY", "The export is not available")
)

// ObjectStore keeps export documents and hands out download links
type ObjectStore interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// Service handles data export and erasure requests
type Service struct {
	txScope        txscope.TransactionScope
	requestRepo    privacy.Repository
	userRepo       identity.UserRepository
	sellerRepo     catalog.SellerRepository
	orderRepo      order.Repository
	returnRepo     returns.ReturnRepository
	disputeRepo    returns.DisputeRepository
	auditRepo      audit.Repository
	store          ObjectStore
	downloadTTL    time.Duration
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	now            func() time.Time
}

// Deps groups the repositories the privacy service reads and writes
type Deps struct {
	TxScope     txscope.TransactionScope
	Requests    privacy.Repository
	Users       identity.UserRepository
	Sellers     catalog.SellerRepository
	Orders      order.Repository
	Returns     returns.ReturnRepository
	Disputes    returns.DisputeRepository
	Audit       audit.Repository
	Store       ObjectStore
	DownloadTTL time.Duration
}

// NewService creates a new privacy Service
func NewService(deps Deps, logger *zap.Logger) *Service {
	ttl := deps.DownloadTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		txScope:     deps.TxScope,
		requestRepo: deps.Requests,
		userRepo:    deps.Users,
		sellerRepo:  deps.Sellers,
		orderRepo:   deps.Orders,
		returnRepo:  deps.Returns,
		disputeRepo: deps.Disputes,
		auditRepo:   deps.Audit,
		store:       deps.Store,
		downloadTTL: ttl,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Request queues an export or erasure of the caller's own data
func (s *Service) Request(ctx context.Context, tenantID uuid.UUID, req CreateRequest, actor shared.Actor) (*RequestResponse, error) {
	typ := privacy.RequestType(req.Type)
	open, err := s.requestRepo.ExistsOpen(ctx, tenantID, actor.UserID, typ)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrRequestOpen
	}
	r, err := privacy.NewDataRequest(tenantID, actor.UserID, typ)
	if err != nil {
		return nil, err
	}
	if err := s.requestRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	s.logger.Info("Data request created",
		zap.String("request_id", r.ID.String()),
		zap.String("type", string(r.Type)),
		zap.String("user_id", r.UserID.String()))
	resp := ToRequestResponse(r)
	return &resp, nil
}

// ListForUser lists the caller's requests
func (s *Service) ListForUser(ctx context.Context, tenantID uuid.UUID, actor shared.Actor) ([]RequestResponse, error) {
	requests, err := s.requestRepo.FindForUser(ctx, tenantID, actor.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]RequestResponse, len(requests))
	for i := range requests {
		out[i] = ToRequestResponse(&requests[i])
	}
	return out, nil
}

// List lists every request of the tenant for admins
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, f ListFilter, actor shared.Actor) (shared.Paginated[RequestResponse], error) {
	if !actor.IsPrivileged() {
		return shared.Paginated[RequestResponse]{}, shared.ErrForbidden
	}
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, OrderBy: "requested_at"}.Normalize()
	var status *privacy.RequestStatus
	if f.Status != "" {
		st := privacy.RequestStatus(f.Status)
		status = &st
	}
	requests, total, err := s.requestRepo.FindAll(ctx, tenantID, status, filter)
	if err != nil {
		return shared.Paginated[RequestResponse]{}, err
	}
	items := make([]RequestResponse, len(requests))
	for i := range requests {
		items[i] = ToRequestResponse(&requests[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns one request. Completed exports carry a presigned download URL.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*RequestResponse, error) {
	r, err := s.requestRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != actor.UserID && !actor.IsPrivileged() {
		return nil, shared.ErrNotFound
	}
	resp := ToRequestResponse(r)
	if r.Type == privacy.RequestExport && r.Status == privacy.StatusCompleted && r.UserID == actor.UserID {
		url, expires, err := s.store.GenerateDownloadURL(ctx, r.ResultKey, s.downloadTTL)
		if err != nil {
			s.logger.Error("Failed to presign export download",
				zap.String("request_id", r.ID.String()),
				zap.Error(err))
			return nil, ErrExportMissing
		}
		resp.DownloadURL = url
		resp.DownloadExpires = &expires
	}
	return &resp, nil
}

// Process runs one request immediately. Failed requests are queued again
// first.
func (s *Service) Process(ctx context.Context, tenantID, id uuid.UUID, actor shared.Actor) (*RequestResponse, error) {
	if !actor.IsPrivileged() {
		return nil, shared.ErrForbidden
	}
	r, err := s.requestRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if r.Status == privacy.StatusFailed {
		if err := r.Retry(); err != nil {
			return nil, err
		}
	}
	if err := s.process(ctx, r); err != nil {
		return nil, err
	}
	resp := ToRequestResponse(r)
	return &resp, nil
}

// ProcessPending works through up to batch pending requests of all tenants.
// It returns how many requests reached a terminal state.
func (s *Service) ProcessPending(ctx context.Context, batch int) (int, error) {
	pending, err := s.requestRepo.FindPending(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("find pending data requests: %w", err)
	}
	done := 0
	for i := range pending {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		r := &pending[i]
		if err := s.process(ctx, r); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			s.logger.Warn("Data request not processed",
				zap.String("request_id", r.ID.String()),
				zap.Error(err))
			continue
		}
		done++
	}
	return done, nil
}

// process claims the request and runs it to a terminal state. Processing
// errors end in FAILED; only claim and save errors are returned.
func (s *Service) process(ctx context.Context, r *privacy.DataRequest) error {
	if err := r.Start(s.now()); err != nil {
		return err
	}
	if err := s.requestRepo.SaveWithLock(ctx, r); err != nil {
		return err
	}

	var runErr error
	switch r.Type {
	case privacy.RequestExport:
		runErr = s.export(ctx, r)
	case privacy.RequestErasure:
		runErr = s.erase(ctx, r)
	}

	if runErr != nil && !r.Status.IsTerminal() {
		s.logger.Error("Data request failed",
			zap.String("request_id", r.ID.String()),
			zap.String("type", string(r.Type)),
			zap.Error(runErr))
		if err := r.Fail(runErr.Error(), s.now()); err != nil {
			return err
		}
	}
	if err := s.requestRepo.SaveWithLock(ctx, r); err != nil {
		return err
	}
	s.publish(ctx, r)

	s.logger.Info("Data request processed",
		zap.String("request_id", r.ID.String()),
		zap.String("type", string(r.Type)),
		zap.String("status", string(r.Status)))
	return nil
}

func (s *Service) export(ctx context.Context, r *privacy.DataRequest) error {
	doc, err := s.collect(ctx, r.TenantID, r.UserID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	key := privacy.ExportKey(r.TenantID, r.UserID, r.ID)
	if err := s.store.Upload(ctx, key, data, exportContentType); err != nil {
		return fmt.Errorf("upload export: %w", err)
	}
	return r.Complete(key, s.now())
}

func (s *Service) collect(ctx context.Context, tenantID, userID uuid.UUID) (*ExportDocument, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	doc := &ExportDocument{
		GeneratedAt: s.now(),
		Profile: ExportProfile{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        string(user.Role),
			Status:      string(user.Status),
			LastLoginAt: user.LastLoginAt,
			CreatedAt:   user.CreatedAt,
		},
		Addresses:  []valueobject.Address{},
		Orders:     []orderapp.OrderResponse{},
		Returns:    []returnsapp.ReturnResponse{},
		Disputes:   []returnsapp.DisputeResponse{},
		AuditTrail: []auditapp.EntryResponse{},
	}

	seen := make(map[valueobject.Address]bool)
	filter := shared.Filter{Page: 1, PageSize: 100, OrderBy: "placed_at"}.Normalize()
	for {
		orders, total, err := s.orderRepo.FindForBuyer(ctx, tenantID, userID, filter)
		if err != nil {
			return nil, fmt.Errorf("load orders: %w", err)
		}
		for i := range orders {
			doc.Orders = append(doc.Orders, orderapp.ToOrderResponse(&orders[i]))
			if addr := orders[i].ShippingAddress; !seen[addr] {
				seen[addr] = true
				doc.Addresses = append(doc.Addresses, addr)
			}
		}
		if len(orders) == 0 || int64(len(doc.Orders)) >= total {
			break
		}
		filter.Page++
	}

	rets, err := s.returnRepo.FindForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("load returns: %w", err)
	}
	for i := range rets {
		doc.Returns = append(doc.Returns, returnsapp.ToReturnResponse(&rets[i]))
	}
	disputes, err := s.disputeRepo.FindForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("load disputes: %w", err)
	}
	for i := range disputes {
		doc.Disputes = append(doc.Disputes, returnsapp.ToDisputeResponse(&disputes[i]))
	}
	entries, err := s.auditRepo.FindAboutUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	for i := range entries {
		doc.AuditTrail = append(doc.AuditTrail, auditapp.ToEntryResponse(&entries[i]))
	}
	return doc, nil
}

// erase anonymizes the user unless something still depends on their data.
// A blocked erasure ends REJECTED rather than FAILED.
func (s *Service) erase(ctx context.Context, r *privacy.DataRequest) error {
	var sellerID *uuid.UUID
	seller, err := s.sellerRepo.FindByUserID(ctx, r.TenantID, r.UserID)
	switch {
	case err == nil:
		sellerID = &seller.ID
	case !errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("load seller: %w", err)
	}

	openOrders, err := s.orderRepo.CountOpenForUser(ctx, r.TenantID, r.UserID, sellerID)
	if err != nil {
		return fmt.Errorf("count open orders: %w", err)
	}
	if openOrders > 0 {
		return r.Reject(fmt.Sprintf("%d sub-orders are still in progress", openOrders), s.now())
	}
	openDisputes, err := s.disputeRepo.CountActiveForUser(ctx, r.TenantID, r.UserID, sellerID)
	if err != nil {
		return fmt.Errorf("count open disputes: %w", err)
	}
	if openDisputes > 0 {
		return r.Reject(fmt.Sprintf("%d disputes are still open", openDisputes), s.now())
	}

	var addresses, scrubbed int64
	err = s.txScope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		user, err := repos.Users().FindByIDForTenant(ctx, r.TenantID, r.UserID)
		if err != nil {
			return err
		}
		// a retried erasure may find the user already anonymized
		if !user.IsAnonymized() {
			if err := user.Anonymize(s.now()); err != nil {
				return err
			}
			if err := repos.Users().Save(ctx, user); err != nil {
				return err
			}
		}
		if addresses, err = repos.Orders().AnonymizeBuyerAddresses(ctx, r.TenantID, r.UserID); err != nil {
			return err
		}
		if scrubbed, err = repos.Audit().ScrubUser(ctx, r.TenantID, r.UserID); err != nil {
			return err
		}
		return repos.Events().Record(ctx, user.PullDomainEvents()...)
	})
	if err != nil {
		return fmt.Errorf("anonymize user: %w", err)
	}

	s.logger.Info("User erased",
		zap.String("user_id", r.UserID.String()),
		zap.Int64("orders_anonymized", addresses),
		zap.Int64("audit_entries_scrubbed", scrubbed),
		zap.Int("exports_deleted", s.deleteExports(ctx, r)))
	return r.Complete("", s.now())
}

// deleteExports removes export archives generated for an erased user. Storage
// failures are logged; the archive links expire on their own.
func (s *Service) deleteExports(ctx context.Context, r *privacy.DataRequest) int {
	requests, err := s.requestRepo.FindForUser(ctx, r.TenantID, r.UserID)
	if err != nil {
		s.logger.Warn("Failed to list exports of erased user", zap.Error(err))
		return 0
	}
	deleted := 0
	for i := range requests {
		key := requests[i].ResultKey
		if requests[i].Type != privacy.RequestExport || key == "" {
			continue
		}
		if err := s.store.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("Failed to delete export archive",
				zap.String("key", key),
				zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted
}

func (s *Service) publish(ctx context.Context, r *privacy.DataRequest) {
	events := r.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish data request events", zap.Error(err))
	}
}

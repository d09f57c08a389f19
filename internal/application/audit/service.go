package audit

import (
	"context"
	"strings"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/audit"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service appends and queries the audit log
type Service struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewService creates a new audit Service
func NewService(repo audit.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RecordRequest stores an admin HTTP request. Failures are logged, never
// returned, so auditing cannot break the request that was audited.
func (s *Service) RecordRequest(ctx context.Context, rec RequestRecord) {
	var actor *uuid.UUID
	if rec.ActorID != uuid.Nil {
		id := rec.ActorID
		actor = &id
	}
	route := rec.Route
	if route == "" {
		route = rec.Path
	}
	entityType, entityID := entityFromPath(rec.Path)
	entry, err := audit.NewEntry(rec.TenantID, actor, shared.Role(rec.ActorRole),
		rec.Method+" "+route, entityType, entityID,
		map[string]any{"path": rec.Path, "status": rec.Status})
	if err != nil {
		s.logger.Warn("Invalid audit entry", zap.Error(err))
		return
	}
	entry.WithRequest(rec.IP, rec.RequestID)
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append audit entry",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

// Query lists audit entries newest first
func (s *Service) Query(ctx context.Context, tenantID uuid.UUID, req QueryRequest) (shared.Paginated[EntryResponse], error) {
	filter := audit.Filter{
		Filter:     shared.Filter{Page: req.Page, PageSize: req.PageSize, OrderBy: "created_at"}.Normalize(),
		ActorID:    req.ActorID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Action:     req.Action,
		From:       req.From,
		To:         req.To,
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return shared.Paginated[EntryResponse]{}, shared.NewDomainError("INVALID_PERIOD", "From must not be after to")
	}
	entries, total, err := s.repo.Find(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[EntryResponse]{}, err
	}
	items := make([]EntryResponse, len(entries))
	for i := range entries {
		items[i] = ToEntryResponse(&entries[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// entityFromPath derives the entity from /api/v1/admin/<type>/<id>/...
func entityFromPath(path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p != "admin" {
			continue
		}
		var typ, id string
		if i+1 < len(parts) {
			typ = parts[i+1]
		}
		if i+2 < len(parts) {
			id = parts[i+2]
		}
		return typ, id
	}
	return "", ""
}

package catalog

import (
	"context"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryTreeCacheName is the snapshot cache holding category trees
const CategoryTreeCacheName = "category_tree"

// SnapshotInvalidator drops a tenant snapshot on this and every other instance
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// CategoryService handles category tree administration and lookups
type CategoryService struct {
	categoryRepo   catalog.CategoryRepository
	trees          *cache.SnapshotCache[*catalog.CategoryTree]
	invalidator    SnapshotInvalidator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCategoryService creates a new CategoryService. invalidator may be nil,
// in which case only the local snapshot is dropped on writes.
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	trees *cache.SnapshotCache[*catalog.CategoryTree],
	invalidator SnapshotInvalidator,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		trees:        trees,
		invalidator:  invalidator,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CategoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a category under an optional parent
func (s *CategoryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest, actor shared.Actor) (*CategoryResponse, error) {
	var parent *catalog.Category
	if req.ParentID != nil {
		p, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	category, err := catalog.NewCategory(tenantID, req.Name, parent)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSlug(ctx, tenantID, category.ParentID, category.Slug); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, tenantID, actor, category)

	s.logger.Info("Category created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug))
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Rename changes a category's name and slug
func (s *CategoryService) Rename(ctx context.Context, tenantID, categoryID uuid.UUID, req RenameCategoryRequest, actor shared.Actor) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	oldSlug := category.Slug
	if err := category.Rename(req.Name); err != nil {
		return nil, err
	}
	if category.Slug != oldSlug {
		if err := s.ensureUniqueSlug(ctx, tenantID, category.ParentID, category.Slug); err != nil {
			return nil, err
		}
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, tenantID, actor, category)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Move re-parents a category and rewrites the path of its whole subtree
func (s *CategoryService) Move(ctx context.Context, tenantID, categoryID uuid.UUID, req MoveCategoryRequest, actor shared.Actor) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}

	var parent *catalog.Category
	if req.ParentID != nil {
		if *req.ParentID == categoryID {
			return nil, shared.NewDomainError("CATEGORY_CYCLE", "A category cannot be its own parent")
		}
		parent, err = s.categoryRepo.FindByIDForTenant(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, err
		}
	}
	if !sameParent(category.ParentID, req.ParentID) {
		if err := s.ensureUniqueSlug(ctx, tenantID, req.ParentID, category.Slug); err != nil {
			return nil, err
		}
	}

	descendants, err := s.categoryRepo.FindDescendants(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := category.MoveUnder(parent); err != nil {
		return nil, err
	}

	changed := make([]*catalog.Category, 0, len(descendants)+1)
	changed = append(changed, category)
	for i := range descendants {
		d := &descendants[i]
		if err := d.RebaseOnto(category); err != nil {
			return nil, err
		}
		changed = append(changed, d)
	}
	if err := s.categoryRepo.SaveAll(ctx, changed); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, tenantID, actor, category)

	s.logger.Info("Category moved",
		zap.String("category_id", category.ID.String()),
		zap.Int("descendants", len(descendants)))
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Deactivate hides a category from browsing
func (s *CategoryService) Deactivate(ctx context.Context, tenantID, categoryID uuid.UUID, actor shared.Actor) (*CategoryResponse, error) {
	return s.toggle(ctx, tenantID, categoryID, actor, (*catalog.Category).Deactivate)
}

// Activate makes a category visible again
func (s *CategoryService) Activate(ctx context.Context, tenantID, categoryID uuid.UUID, actor shared.Actor) (*CategoryResponse, error) {
	return s.toggle(ctx, tenantID, categoryID, actor, (*catalog.Category).Activate)
}

func (s *CategoryService) toggle(ctx context.Context, tenantID, categoryID uuid.UUID, actor shared.Actor, apply func(*catalog.Category) error) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := apply(category); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, tenantID, actor, category)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, tenantID, categoryID uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Tree returns the tenant's category tree snapshot
func (s *CategoryService) Tree(ctx context.Context, tenantID uuid.UUID) (*catalog.CategoryTree, error) {
	return s.trees.Get(ctx, tenantID, func(ctx context.Context) (*catalog.CategoryTree, error) {
		categories, err := s.categoryRepo.FindAllForTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return catalog.NewCategoryTree(categories), nil
	})
}

// TreeNodes renders the tree for API responses
func (s *CategoryService) TreeNodes(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]CategoryNode, error) {
	tree, err := s.Tree(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToCategoryNodes(tree, includeInactive), nil
}

// CategoryPath returns the root-first path of a category, used for rule matching
func (s *CategoryService) CategoryPath(ctx context.Context, tenantID, categoryID uuid.UUID) ([]uuid.UUID, error) {
	tree, err := s.Tree(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	path := tree.PathOf(categoryID)
	if path == nil {
		return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
	}
	return path, nil
}

func (s *CategoryService) ensureUniqueSlug(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID, slug string) error {
	exists, err := s.categoryRepo.ExistsBySlug(ctx, tenantID, parentID, slug)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("CATEGORY_EXISTS", "A category with this name already exists at this level")
	}
	return nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *CategoryService) afterWrite(ctx context.Context, tenantID uuid.UUID, actor shared.Actor, category *catalog.Category) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, tenantID)
	} else {
		s.trees.Invalidate(tenantID)
	}

	events := shared.StampActor(category.PullDomainEvents(), actor.UserID)
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish category events", zap.Error(err))
	}
}

package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxCategoryDepth is the maximum depth of the category tree
const MaxCategoryDepth = 5

// Category is a node of the marketplace category tree. Path holds the IDs
// from the root down to and including the category itself.
type Category struct {
	shared.TenantAggregateRoot
	Name      string
	Slug      string
	ParentID  *uuid.UUID
	Path      []uuid.UUID
	Active    bool
	SortOrder int
}

// NewCategory creates a category, as a root when parent is nil
func NewCategory(tenantID uuid.UUID, name string, parent *Category) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	c := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Slug:                shared.Slugify(name),
		Active:              true,
	}
	if err := c.placeUnder(parent); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewCategoryChangedEvent(c, CategoryEventCreated))
	return c, nil
}

func (c *Category) placeUnder(parent *Category) error {
	if parent == nil {
		c.ParentID = nil
		c.Path = []uuid.UUID{c.ID}
		return nil
	}
	if parent.TenantID != c.TenantID {
		return shared.NewDomainError("INVALID_PARENT", "Parent category belongs to another tenant")
	}
	if parent.HasAncestor(c.ID) {
		return shared.NewDomainError("CATEGORY_CYCLE", "A category cannot be moved under itself or its descendants")
	}
	if len(parent.Path) >= MaxCategoryDepth {
		return shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}
	parentID := parent.ID
	c.ParentID = &parentID
	c.Path = append(append(make([]uuid.UUID, 0, len(parent.Path)+1), parent.Path...), c.ID)
	return nil
}

// Rename changes the display name and regenerates the slug
func (c *Category) Rename(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Slug = shared.Slugify(name)
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryChangedEvent(c, CategoryEventUpdated))
	return nil
}

// MoveUnder re-parents the category. Callers must rebase descendants with
// RebaseOnto afterwards.
func (c *Category) MoveUnder(parent *Category) error {
	if parent != nil && parent.ID == c.ID {
		return shared.NewDomainError("CATEGORY_CYCLE", "A category cannot be its own parent")
	}
	if err := c.placeUnder(parent); err != nil {
		return err
	}
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryChangedEvent(c, CategoryEventMoved))
	return nil
}

// RebaseOnto rewrites the path of a descendant after its ancestor moved
func (c *Category) RebaseOnto(moved *Category) error {
	idx := -1
	for i, id := range c.Path {
		if id == moved.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.NewDomainError("INVALID_PARENT", "Category is not a descendant of the moved category")
	}
	rest := c.Path[idx+1:]
	if len(moved.Path)+len(rest) > MaxCategoryDepth {
		return shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}
	path := make([]uuid.UUID, 0, len(moved.Path)+len(rest))
	path = append(path, moved.Path...)
	c.Path = append(path, rest...)
	c.Touch()
	c.IncrementVersion()
	return nil
}

// Deactivate hides the category from browsing
func (c *Category) Deactivate() error {
	if !c.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Category is already inactive")
	}
	c.Active = false
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryChangedEvent(c, CategoryEventDeactivated))
	return nil
}

// Activate makes the category visible again
func (c *Category) Activate() error {
	if c.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Category is already active")
	}
	c.Active = true
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryChangedEvent(c, CategoryEventUpdated))
	return nil
}

// HasAncestor reports whether id is on the category's path, itself included
func (c *Category) HasAncestor(id uuid.UUID) bool {
	for _, p := range c.Path {
		if p == id {
			return true
		}
	}
	return false
}

func (c *Category) Depth() int { return len(c.Path) }

func (c *Category) IsRoot() bool { return c.ParentID == nil }

// PathString renders the materialized path used for prefix queries
func (c *Category) PathString() string {
	return JoinPath(c.Path)
}

// JoinPath renders a path as slash separated IDs
func JoinPath(path []uuid.UUID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.String()
	}
	return strings.Join(parts, "/")
}

// SplitPath parses a path produced by JoinPath
func SplitPath(s string) ([]uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	path := make([]uuid.UUID, len(parts))
	for i, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid category path segment %q: %w", p, err)
		}
		path[i] = id
	}
	return path, nil
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	if shared.Slugify(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name must contain letters or digits")
	}
	return nil
}

// CategoryTree is an immutable snapshot of a tenant's categories
type CategoryTree struct {
	byID     map[uuid.UUID]*Category
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// NewCategoryTree indexes a flat category list
func NewCategoryTree(categories []Category) *CategoryTree {
	t := &CategoryTree{
		byID:     make(map[uuid.UUID]*Category, len(categories)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for i := range categories {
		c := categories[i]
		t.byID[c.ID] = &c
	}
	for i := range categories {
		c := &categories[i]
		if c.ParentID == nil {
			t.roots = append(t.roots, c.ID)
			continue
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c.ID)
	}
	return t
}

// Get returns a category by ID
func (t *CategoryTree) Get(id uuid.UUID) (*Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// PathOf returns the root-first ancestor path of a category
func (t *CategoryTree) PathOf(id uuid.UUID) []uuid.UUID {
	if c, ok := t.byID[id]; ok {
		return c.Path
	}
	return nil
}

// Roots returns root category IDs
func (t *CategoryTree) Roots() []uuid.UUID {
	return t.roots
}

// Children returns direct children IDs
func (t *CategoryTree) Children(id uuid.UUID) []uuid.UUID {
	return t.children[id]
}

// Descendants returns id and every category below it
func (t *CategoryTree) Descendants(id uuid.UUID) []uuid.UUID {
	if _, ok := t.byID[id]; !ok {
		return nil
	}
	out := []uuid.UUID{id}
	for i := 0; i < len(out); i++ {
		out = append(out, t.children[out[i]]...)
	}
	return out
}

// Len returns the number of categories
func (t *CategoryTree) Len() int { return len(t.byID) }

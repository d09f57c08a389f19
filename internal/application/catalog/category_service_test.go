package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/cache"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingInvalidator struct {
	tenants []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, tenantID uuid.UUID) {
	r.tenants = append(r.tenants, tenantID)
}

func newCategoryService(repo *testutil.MockCategoryRepository, inv SnapshotInvalidator) *CategoryService {
	trees := cache.NewSnapshotCache[*catalog.CategoryTree](CategoryTreeCacheName, time.Minute)
	return NewCategoryService(repo, trees, inv, zap.NewNop())
}

func mustCategory(t *testing.T, tenantID uuid.UUID, name string, parent *catalog.Category) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(tenantID, name, parent)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func TestCategoryService_Create(t *testing.T) {
	tenantID := uuid.New()
	admin := testutil.AdminActor()

	t.Run("creates root category and invalidates the tree", func(t *testing.T) {
		repo := new(testutil.MockCategoryRepository)
		inv := &recordingInvalidator{}
		publisher := new(testutil.MockEventPublisher)
		svc := newCategoryService(repo, inv)
		svc.SetEventPublisher(publisher)

		repo.On("ExistsBySlug", mock.Anything, tenantID, mock.Anything, "home-garden").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Category")).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Create(context.Background(), tenantID, CreateCategoryRequest{Name: "Home & Garden"}, admin)
		require.NoError(t, err)
		assert.Equal(t, "home-garden", resp.Slug)
		assert.Nil(t, resp.ParentID)
		assert.Equal(t, []uuid.UUID{resp.ID}, resp.Path)
		assert.Equal(t, []uuid.UUID{tenantID}, inv.tenants)
		publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("rejects duplicate slug under the same parent", func(t *testing.T) {
		repo := new(testutil.MockCategoryRepository)
		svc := newCategoryService(repo, nil)
		parent := mustCategory(t, tenantID, "Electronics", nil)

		repo.On("FindByIDForTenant", mock.Anything, tenantID, parent.ID).Return(parent, nil)
		repo.On("ExistsBySlug", mock.Anything, tenantID, mock.Anything, "phones").Return(true, nil)

		_, err := svc.Create(context.Background(), tenantID, CreateCategoryRequest{Name: "Phones", ParentID: &parent.ID}, admin)
		assert.Equal(t, "CATEGORY_EXISTS", shared.CodeOf(err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_Move_RebasesSubtree(t *testing.T) {
	tenantID := uuid.New()
	repo := new(testutil.MockCategoryRepository)
	svc := newCategoryService(repo, nil)

	a := mustCategory(t, tenantID, "A", nil)
	b := mustCategory(t, tenantID, "B", nil)
	c := mustCategory(t, tenantID, "C", a)
	d := mustCategory(t, tenantID, "D", c)

	repo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, b.ID).Return(b, nil)
	repo.On("ExistsBySlug", mock.Anything, tenantID, mock.Anything, "c").Return(false, nil)
	repo.On("FindDescendants", mock.Anything, tenantID, c.ID).Return([]catalog.Category{*d}, nil)

	var saved []*catalog.Category
	repo.On("SaveAll", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).([]*catalog.Category)
	}).Return(nil)

	resp, err := svc.Move(context.Background(), tenantID, c.ID, MoveCategoryRequest{ParentID: &b.ID}, testutil.AdminActor())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID, c.ID}, resp.Path)
	require.Len(t, saved, 2)
	assert.Equal(t, []uuid.UUID{b.ID, c.ID, d.ID}, saved[1].Path)
}

func TestCategoryService_Move_RejectsCycle(t *testing.T) {
	tenantID := uuid.New()
	repo := new(testutil.MockCategoryRepository)
	svc := newCategoryService(repo, nil)

	a := mustCategory(t, tenantID, "A", nil)
	child := mustCategory(t, tenantID, "Child", a)

	repo.On("FindByIDForTenant", mock.Anything, tenantID, a.ID).Return(a, nil)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, child.ID).Return(child, nil)
	repo.On("ExistsBySlug", mock.Anything, tenantID, mock.Anything, "a").Return(false, nil)
	repo.On("FindDescendants", mock.Anything, tenantID, a.ID).Return([]catalog.Category{*child}, nil)

	_, err := svc.Move(context.Background(), tenantID, a.ID, MoveCategoryRequest{ParentID: &child.ID}, testutil.AdminActor())
	assert.Equal(t, "CATEGORY_CYCLE", shared.CodeOf(err))
	repo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)

	_, err = svc.Move(context.Background(), tenantID, a.ID, MoveCategoryRequest{ParentID: &a.ID}, testutil.AdminActor())
	assert.Equal(t, "CATEGORY_CYCLE", shared.CodeOf(err))
}

func TestCategoryService_Tree_CachesUntilWrite(t *testing.T) {
	tenantID := uuid.New()
	repo := new(testutil.MockCategoryRepository)
	svc := newCategoryService(repo, nil)

	root := mustCategory(t, tenantID, "Root", nil)
	hidden := mustCategory(t, tenantID, "Hidden", root)
	require.NoError(t, hidden.Deactivate())

	repo.On("FindAllForTenant", mock.Anything, tenantID).Return([]catalog.Category{*root, *hidden}, nil).Twice()
	repo.On("FindByIDForTenant", mock.Anything, tenantID, root.ID).Return(root, nil)
	repo.On("ExistsBySlug", mock.Anything, tenantID, mock.Anything, "renamed").Return(false, nil)
	repo.On("Save", mock.Anything, root).Return(nil)

	ctx := context.Background()
	nodes, err := svc.TreeNodes(ctx, tenantID, false)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Empty(t, nodes[0].Children)

	all, err := svc.TreeNodes(ctx, tenantID, true)
	require.NoError(t, err)
	require.Len(t, all[0].Children, 1)
	repo.AssertNumberOfCalls(t, "FindAllForTenant", 1)

	_, err = svc.Rename(ctx, tenantID, root.ID, RenameCategoryRequest{Name: "Renamed"}, testutil.AdminActor())
	require.NoError(t, err)

	path, err := svc.CategoryPath(ctx, tenantID, hidden.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{root.ID, hidden.ID}, path)
	repo.AssertNumberOfCalls(t, "FindAllForTenant", 2)
}

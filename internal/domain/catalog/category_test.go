package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates root category", func(t *testing.T) {
		c, err := NewCategory(tenantID, " Home & Garden ", nil)
		require.NoError(t, err)
		assert.Equal(t, "Home & Garden", c.Name)
		assert.Equal(t, "home-garden", c.Slug)
		assert.True(t, c.IsRoot())
		assert.Equal(t, []uuid.UUID{c.ID}, c.Path)
		assert.True(t, c.Active)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeCategoryChanged, c.GetDomainEvents()[0].EventType())
	})

	t.Run("creates child with ancestor path", func(t *testing.T) {
		root, _ := NewCategory(tenantID, "Electronics", nil)
		child, err := NewCategory(tenantID, "Phones", root)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{root.ID, child.ID}, child.Path)
		assert.Equal(t, root.ID, *child.ParentID)
		assert.True(t, child.HasAncestor(root.ID))
	})

	t.Run("rejects parent from another tenant", func(t *testing.T) {
		other, _ := NewCategory(uuid.New(), "Other", nil)
		_, err := NewCategory(tenantID, "Phones", other)
		assert.Error(t, err)
	})

	t.Run("enforces max depth", func(t *testing.T) {
		parent, _ := NewCategory(tenantID, "L1", nil)
		for i := 2; i <= MaxCategoryDepth; i++ {
			var err error
			parent, err = NewCategory(tenantID, "Level", parent)
			require.NoError(t, err)
		}
		_, err := NewCategory(tenantID, "Too deep", parent)
		assert.ErrorContains(t, err, "depth")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCategory(tenantID, "   ", nil)
		assert.Error(t, err)
		_, err = NewCategory(tenantID, "!!!", nil)
		assert.Error(t, err)
	})
}

func TestCategory_MoveUnder(t *testing.T) {
	tenantID := uuid.New()
	a, _ := NewCategory(tenantID, "A", nil)
	b, _ := NewCategory(tenantID, "B", a)
	c, _ := NewCategory(tenantID, "C", b)
	x, _ := NewCategory(tenantID, "X", nil)

	t.Run("cannot move under own descendant", func(t *testing.T) {
		err := a.MoveUnder(c)
		assert.ErrorContains(t, err, "descendants")
	})

	t.Run("cannot move under itself", func(t *testing.T) {
		assert.Error(t, b.MoveUnder(b))
	})

	t.Run("moves and rebases descendants", func(t *testing.T) {
		require.NoError(t, b.MoveUnder(x))
		assert.Equal(t, []uuid.UUID{x.ID, b.ID}, b.Path)

		require.NoError(t, c.RebaseOnto(b))
		assert.Equal(t, []uuid.UUID{x.ID, b.ID, c.ID}, c.Path)
		assert.False(t, c.HasAncestor(a.ID))
	})

	t.Run("move to root", func(t *testing.T) {
		require.NoError(t, b.MoveUnder(nil))
		assert.True(t, b.IsRoot())
		assert.Equal(t, []uuid.UUID{b.ID}, b.Path)
	})
}

func TestCategory_Deactivate(t *testing.T) {
	c, _ := NewCategory(uuid.New(), "Toys", nil)
	require.NoError(t, c.Deactivate())
	assert.False(t, c.Active)
	assert.Error(t, c.Deactivate())
	require.NoError(t, c.Activate())
	assert.True(t, c.Active)
}

func TestPathRoundTrip(t *testing.T) {
	path := []uuid.UUID{uuid.New(), uuid.New()}
	parsed, err := SplitPath(JoinPath(path))
	require.NoError(t, err)
	assert.Equal(t, path, parsed)

	empty, err := SplitPath("")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = SplitPath("not-a-uuid")
	assert.Error(t, err)
}

func TestCategoryTree(t *testing.T) {
	tenantID := uuid.New()
	root, _ := NewCategory(tenantID, "Root", nil)
	child, _ := NewCategory(tenantID, "Child", root)
	grand, _ := NewCategory(tenantID, "Grandchild", child)
	other, _ := NewCategory(tenantID, "Other", nil)

	tree := NewCategoryTree([]Category{*root, *child, *grand, *other})

	assert.Equal(t, 4, tree.Len())
	assert.ElementsMatch(t, []uuid.UUID{root.ID, other.ID}, tree.Roots())
	assert.Equal(t, []uuid.UUID{child.ID}, tree.Children(root.ID))
	assert.ElementsMatch(t, []uuid.UUID{root.ID, child.ID, grand.ID}, tree.Descendants(root.ID))
	assert.Equal(t, []uuid.UUID{root.ID, child.ID, grand.ID}, tree.PathOf(grand.ID))
	assert.Nil(t, tree.Descendants(uuid.New()))

	got, ok := tree.Get(child.ID)
	require.True(t, ok)
	assert.Equal(t, "Child", got.Name)
}

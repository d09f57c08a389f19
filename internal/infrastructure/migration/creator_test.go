package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebastianDabkowski/mercatoApp11-sub000/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add sellers table", "add_sellers_table"},
		{"Add-Sellers-Table", "add_sellers_table"},
		{"ADD_SELLERS_TABLE", "add_sellers_table"},
		{"add__payout__ledger", "add_payout_ledger"},
		{"Add Rules 2026", "add_rules_2026"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add payout ledger", "Ledger of seller payouts")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_add_payout_ledger", first.File())
	assert.Equal(t, filepath.Join(dir, "000001_add_payout_ledger.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_payout_ledger.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_payout_ledger")
	assert.Contains(t, string(up), "-- Ledger of seller payouts")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "-- Rollback: add_payout_ledger")

	second, err := CreateMigration(dir, "index orders", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, "000002_index_orders", second.File())
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	files := fstest.MapFS{
		"000003_add_promotions.up.sql":   {Data: []byte("--")},
		"000001_init_schema.up.sql":      {Data: []byte("--")},
		"000001_init_schema.down.sql":    {Data: []byte("--")},
		"000002_add_disputes.up.sql":     {Data: []byte("--")},
		"000002_add_disputes.down.sql":   {Data: []byte("--")},
		"README.md":                      {Data: []byte("docs")},
		"000004_broken.sql":              {Data: []byte("--")},
		"notanumber_thing.up.sql":        {Data: []byte("--")},
		"subdir.up.sql/000005_x.up.sql":  {Data: []byte("--")},
		"000003_add_promotions.down.sql": {Data: []byte("--")},
	}

	list, err := ListMigrations(files)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, Migration{Version: 1, Name: "init_schema", HasDown: true}, list[0])
	assert.Equal(t, Migration{Version: 2, Name: "add_disputes", HasDown: true}, list[1])
	assert.Equal(t, Migration{Version: 3, Name: "add_promotions", HasDown: true}, list[2])
}

func TestListMigrations_ConflictingVersion(t *testing.T) {
	files := fstest.MapFS{
		"000001_init.up.sql":  {Data: []byte("--")},
		"000001_other.up.sql": {Data: []byte("--")},
	}

	_, err := ListMigrations(files)
	assert.Error(t, err)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	list, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	assert.Equal(t, uint(1), list[0].Version)
	for i, m := range list {
		assert.True(t, m.HasDown, "migration %s has no down script", m.File())
		assert.Equal(t, uint(i+1), m.Version, "versions must be contiguous")
	}
}

func TestNewStatus(t *testing.T) {
	all := []Migration{{Version: 1, Name: "a"}, {Version: 2, Name: "b"}, {Version: 3, Name: "c"}}

	s := newStatus(2, false, all)
	assert.Len(t, s.Applied, 2)
	require.Len(t, s.Pending, 1)
	assert.Equal(t, "c", s.Pending[0].Name)

	fresh := newStatus(0, false, all)
	assert.Empty(t, fresh.Applied)
	assert.Len(t, fresh.Pending, 3)
}

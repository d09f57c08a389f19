package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// VersionWidth is the zero-padded width of a migration version.
const VersionWidth = 6

const migrationUpTemplate = `-- Migration: {{.Name}}
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const migrationDownTemplate = `-- Rollback: {{.Name}}
-- Created: {{.Created}}

`

// Migration is one versioned up/down pair.
type Migration struct {
	Version uint
	Name    string
	HasDown bool
}

// File returns the base name shared by the pair, e.g. 000001_init_schema.
func (m Migration) File() string {
	return fmt.Sprintf("%0*d_%s", VersionWidth, m.Version, m.Name)
}

// CreatedMigration describes a freshly scaffolded migration pair.
type CreatedMigration struct {
	Migration
	Description string
	Created     string
	UpPath      string
	DownPath    string
}

// CreateMigration scaffolds the next NNNNNN_name.{up,down}.sql pair in dir.
func CreateMigration(dir, name, description string) (*CreatedMigration, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	next := uint(1)
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	cm := &CreatedMigration{
		Migration:   Migration{Version: next, Name: slug, HasDown: true},
		Description: description,
		Created:     time.Now().UTC().Format(time.RFC3339),
	}
	cm.UpPath = filepath.Join(dir, cm.File()+".up.sql")
	cm.DownPath = filepath.Join(dir, cm.File()+".down.sql")

	if err := writeTemplate(cm.UpPath, migrationUpTemplate, cm); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeTemplate(cm.DownPath, migrationDownTemplate, cm); err != nil {
		_ = os.Remove(cm.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return cm, nil
}

func writeTemplate(path, body string, data any) error {
	tmpl, err := template.New("migration").Parse(body)
	if err != nil {
		return err
	}
	// O_EXCL keeps a concurrent create from clobbering an existing file
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// sanitizeName converts a migration name to a lower_snake file name.
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c == ' ' || c == '-' || c == '_':
			pendingSep = b.Len() > 0
			continue
		default:
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(c)
	}
	return b.String()
}

// ListMigrations returns the migrations in files ordered by version.
// A missing directory yields an empty list.
func ListMigrations(files fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, direction, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}
		m, found := byVersion[version]
		if !found {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		} else if m.Name != name {
			return nil, fmt.Errorf("version %d is used by both %q and %q", version, m.Name, name)
		}
		if direction == "down" {
			m.HasDown = true
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// parseFileName splits 000001_init_schema.up.sql into its parts.
func parseFileName(file string) (version uint, name, direction string, ok bool) {
	base, found := strings.CutSuffix(file, ".sql")
	if !found {
		return 0, "", "", false
	}
	switch {
	case strings.HasSuffix(base, ".up"):
		direction = "up"
	case strings.HasSuffix(base, ".down"):
		direction = "down"
	default:
		return 0, "", "", false
	}
	base = strings.TrimSuffix(base, "."+direction)

	num, name, found := strings.Cut(base, "_")
	if !found || name == "" {
		return 0, "", "", false
	}
	v, err := strconv.ParseUint(num, 10, 32)
	if err != nil {
		return 0, "", "", false
	}
	return uint(v), name, direction, true
}

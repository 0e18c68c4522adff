package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/campusfound/internal/pkg/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrator applies the embedded SQL migrations in order, once each
type Migrator struct {
	db    *pgxpool.Pool
	files fs.FS
}

// NewMigrator creates a migrator over the embedded migrations
func NewMigrator(db *pgxpool.Pool) *Migrator {
	sub, _ := fs.Sub(embedded, "sql")
	return &Migrator{db: db, files: sub}
}

// Versions lists the migration versions found in files, in the order they are applied.
// The version is the file name prefix before the first underscore ("001_init.sql" => "001").
func Versions(files fs.FS) ([]string, map[string]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	names := make(map[string]string)
	var versions []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		version := strings.SplitN(e.Name(), "_", 2)[0]
		if prev, dup := names[version]; dup {
			return nil, nil, fmt.Errorf("migrations %s and %s share version %s", prev, e.Name(), version)
		}
		names[version] = e.Name()
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions, names, nil
}

// Up applies every migration that is not yet recorded in schema_migrations
func (m *Migrator) Up(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}

	versions, names, err := Versions(m.files)
	if err != nil {
		return err
	}

	for _, version := range versions {
		if err := m.apply(ctx, version, names[version]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, version, name string) error {
	var applied bool
	if err := m.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&applied); err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if applied {
		logger.Debug().Str("migration", name).Msg("Migration already applied, skipping")
		return nil
	}

	content, err := fs.ReadFile(m.files, path.Clean(name))
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", name, err)
	}

	err = pgx.BeginFunc(ctx, m.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("error executing migration %s: %w", name, err)
		}
		_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`, version, time.Now().UTC())
		return err
	})
	if err != nil {
		return err
	}

	logger.Info().Str("migration", name).Msg("Migration applied")
	return nil
}

package sqlstore

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"warehouse-backend/internal/core"
)

//go:embed migrations
var migrationFiles embed.FS

const migrationLockKey = 7462839

// Migration is one schema change file.
type Migration struct {
	Version  string
	Filename string
	Checksum string
	sql      string
}

// Migrate applies every pending migration for the store's dialect. Applied
// migrations are recorded with their checksum; a changed file is an error.
// On PostgreSQL an advisory lock keeps concurrent migrators out.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	var applied []string
	run := func() error {
		var err error
		applied, err = s.applyMigrations(ctx)
		return err
	}
	var err error
	if pg, ok := s.drv.(*pgDriver); ok {
		err = pg.advisoryLock(ctx, migrationLockKey, run)
	} else {
		err = run()
	}
	return applied, err
}

func (s *Store) applyMigrations(ctx context.Context) ([]string, error) {
	if err := s.exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	migrations, err := Migrations(s.d.name)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range migrations {
		ok, err := s.applyMigration(ctx, m)
		if err != nil {
			return applied, err
		}
		if ok {
			s.log.Info().Str("migration", m.Filename).Msg("applied")
			applied = append(applied, m.Filename)
		} else {
			s.log.Debug().Str("migration", m.Filename).Msg("skipped")
		}
	}
	return applied, nil
}

// applyMigration runs m and records it in one transaction. It reports false
// when m was already applied.
func (s *Store) applyMigration(ctx context.Context, m Migration) (bool, error) {
	tx, err := s.drv.begin(ctx, core.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction for %s: %w", m.Filename, err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	var existing string
	err = tx.QueryRow(ctx, fmt.Sprintf("SELECT checksum FROM schema_migrations WHERE version = %s", s.d.placeholder(1)), m.Version).Scan(&existing)
	switch {
	case err == nil:
		if existing != m.Checksum {
			return false, fmt.Errorf("checksum mismatch for %s: expected %s, got %s", m.Filename, existing, m.Checksum)
		}
		return false, nil
	case errors.Is(err, core.ErrNoRow):
	default:
		return false, fmt.Errorf("failed to query schema_migrations for %s: %w", m.Filename, err)
	}

	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return false, fmt.Errorf("failed to execute migration %s: %w", m.Filename, err)
	}
	b := &binder{d: s.d}
	q := fmt.Sprintf("INSERT INTO schema_migrations (version, filename, checksum) VALUES (%s, %s, %s)",
		b.bind(m.Version), b.bind(m.Filename), b.bind(m.Checksum))
	if _, err := tx.Exec(ctx, q, b.args...); err != nil {
		return false, fmt.Errorf("failed to insert migration record for %s: %w", m.Filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction for %s: %w", m.Filename, err)
	}
	return true, nil
}

func (s *Store) exec(ctx context.Context, q string) error {
	tx, err := s.drv.begin(ctx, core.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(context.WithoutCancel(ctx))
	if _, err := tx.Exec(ctx, q); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Migrations lists the embedded migrations for a dialect in version order.
// Filenames must look like NNN_description.sql and versions must be unique.
func Migrations(dialect string) ([]Migration, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for dialect %q: %w", dialect, err)
	}

	seen := make(map[string]bool)
	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		filename := entry.Name()
		version, _, ok := strings.Cut(filename, "_")
		if !ok {
			return nil, fmt.Errorf("invalid migration filename format: %s. Expected format NNN_description.sql", filename)
		}
		if seen[version] {
			return nil, fmt.Errorf("duplicate migration version found: %s", version)
		}
		seen[version] = true

		body, err := fs.ReadFile(migrationFiles, path.Join(dir, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}
		sum := sha256.Sum256(body)
		out = append(out, Migration{
			Version:  version,
			Filename: filename,
			Checksum: hex.EncodeToString(sum[:]),
			sql:      string(body),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

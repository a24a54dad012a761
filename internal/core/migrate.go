// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tasktrack/tasktrack-api/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// Migrate applies every embedded migration for dialect that is not yet
// recorded in schema_migrations. Each file runs in its own transaction.
// It returns the number of files applied.
func Migrate(ctx context.Context, db *sqlx.DB, dialect string) (int, error) {
	dir, err := migrationDir(dialect)
	if err != nil {
		return 0, err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return 0, fmt.Errorf("ensure migrations table: %w", err)
	}

	var applied []string
	if err := db.SelectContext(
		ctx,
		&applied,
		"SELECT filename FROM schema_migrations",
	); err != nil {
		return 0, fmt.Errorf("list applied migrations: %w", err)
	}

	done := make(map[string]struct{}, len(applied))
	for _, name := range applied {
		done[name] = struct{}{}
	}

	files, err := fs.Glob(migrationFS, path.Join(dir, "*.sql"))
	if err != nil {
		return 0, fmt.Errorf("list migration files: %w", err)
	}
	sort.Strings(files)

	count := 0
	for _, file := range files {
		name := path.Base(file)
		if _, ok := done[name]; ok {
			slog.DebugContext(ctx, "migration already applied", "file", name)
			continue
		}

		content, err := migrationFS.ReadFile(file)
		if err != nil {
			return count, fmt.Errorf("read migration %s: %w", name, err)
		}

		err = InTx(ctx, db, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.ExecContext(
				ctx,
				tx.Rebind("INSERT INTO schema_migrations (filename) VALUES (?)"),
				name,
			)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("apply migration %s: %w", name, err)
		}

		slog.InfoContext(ctx, "migration applied",
			"file", name,
			"dialect", dialect,
		)
		count++
	}

	return count, nil
}

func migrationDir(dialect string) (string, error) {
	switch strings.ToLower(dialect) {
	case config.DriverPostgres:
		return "migrations/postgres", nil
	case config.DriverSQLite:
		return "migrations/sqlite", nil
	default:
		return "", fmt.Errorf("no migrations for dialect %q", dialect)
	}
}

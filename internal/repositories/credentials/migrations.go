package credentials

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded migrations for dialect. Already
// applied versions are skipped, so it is safe on every start.
func RunMigrations(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	var dir string
	switch dialect {
	case goose.DialectSQLite3:
		dir = "migrations/sqlite"
	case goose.DialectPostgres:
		dir = "migrations/postgres"
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

package credentials

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/facegate/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// NewPostgresRepository wraps an already migrated connection.
func NewPostgresRepository(db *sql.DB, logger logging.Logger) *SQLRepository {
	return newSQLRepository(db, nil, postgresQueries, logger.With("module", "postgres_store"))
}

// OpenPostgres connects through pgx and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string, logger logging.Logger) (*SQLRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := RunMigrations(ctx, db, goose.DialectPostgres); err != nil {
		db.Close()
		return nil, err
	}

	r := NewPostgresRepository(db, logger)
	r.closer = db.Close
	return r, nil
}

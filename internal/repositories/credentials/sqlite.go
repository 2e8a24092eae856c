package credentials

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating if needed) the sqlite database at path with
// WAL journaling and a busy timeout, and migrates it. A single connection
// keeps appends strictly ordered.
func OpenSQLite(ctx context.Context, path string, logger logging.Logger) (*SQLRepository, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := RunMigrations(ctx, db, goose.DialectSQLite3); err != nil {
		db.Close()
		return nil, err
	}

	return newSQLRepository(db, db.Close, sqliteQueries, logger.With("module", "sqlite_store")), nil
}

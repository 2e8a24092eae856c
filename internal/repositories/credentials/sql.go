package credentials

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/dmitrijs2005/facegate/internal/cryptox"
	"github.com/dmitrijs2005/facegate/internal/dbx"
	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/dmitrijs2005/facegate/internal/models"
)

// queries holds the dialect-specific statements of a SQL backend.
type queries struct {
	insertCredential string
	selectCredential string
	insertBinding    string
	selectBinding    string
}

var sqliteQueries = queries{
	insertCredential: `INSERT INTO credential_log (hash) VALUES (?)`,
	selectCredential: `SELECT hash FROM credential_log ORDER BY seq`,
	insertBinding:    `INSERT INTO binding_log (hash, identity) VALUES (?, ?)`,
	selectBinding:    `SELECT hash, identity FROM binding_log ORDER BY seq`,
}

var postgresQueries = queries{
	insertCredential: `INSERT INTO credential_log (hash) VALUES ($1)`,
	selectCredential: `SELECT hash FROM credential_log ORDER BY seq`,
	insertBinding:    `INSERT INTO binding_log (hash, identity) VALUES ($1, $2)`,
	selectBinding:    `SELECT hash, identity FROM binding_log ORDER BY seq`,
}

// SQLRepository stores both logs as append-only tables ordered by an
// increasing seq column. It never updates or deletes rows.
type SQLRepository struct {
	db     *sql.DB
	closer func() error
	q      queries
	logger logging.Logger
}

var _ Repository = (*SQLRepository)(nil)

func newSQLRepository(db *sql.DB, closer func() error, q queries, logger logging.Logger) *SQLRepository {
	if closer == nil {
		closer = func() error { return nil }
	}
	return &SQLRepository{db: db, closer: closer, q: q, logger: logger}
}

func (r *SQLRepository) AppendCredential(ctx context.Context, hash string) error {
	if err := cryptox.ValidateDigest(hash); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.q.insertCredential, hash); err != nil {
		r.logger.Error(ctx, "credential append failed", "digest", hash, "error", err)
		return fmt.Errorf("%w: db error: %w", common.ErrStoreWriteFailed, err)
	}
	r.logger.Debug(ctx, "credential appended", "digest", hash)
	return nil
}

func (r *SQLRepository) LoadCredentials(ctx context.Context) (models.CredentialSet, error) {
	return r.loadCredentials(ctx, r.db)
}

func (r *SQLRepository) loadCredentials(ctx context.Context, db dbx.DBTX) (models.CredentialSet, error) {
	rows, err := db.QueryContext(ctx, r.q.selectCredential)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrStoreReadFailed, err)
	}
	defer rows.Close()

	set := models.CredentialSet{}
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("%w: scan credential: %w", common.ErrStoreReadFailed, err)
		}
		set.Add(hash)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate credentials: %w", common.ErrStoreReadFailed, err)
	}
	return set, nil
}

func (r *SQLRepository) AppendBinding(ctx context.Context, hash string, id models.IdentityNumber) error {
	if err := cryptox.ValidateDigest(hash); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.q.insertBinding, hash, int64(id)); err != nil {
		r.logger.Error(ctx, "binding append failed", "digest", hash, "identity", id, "error", err)
		return fmt.Errorf("%w: db error: %w", common.ErrStoreWriteFailed, err)
	}
	r.logger.Debug(ctx, "binding appended", "digest", hash, "identity", id)
	return nil
}

func (r *SQLRepository) LoadBindings(ctx context.Context) (models.BindingTable, error) {
	return r.loadBindings(ctx, r.db)
}

func (r *SQLRepository) loadBindings(ctx context.Context, db dbx.DBTX) (models.BindingTable, error) {
	rows, err := db.QueryContext(ctx, r.q.selectBinding)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrStoreReadFailed, err)
	}
	defer rows.Close()

	table := models.BindingTable{}
	for rows.Next() {
		var (
			hash string
			id   sql.NullInt64
		)
		if err := rows.Scan(&hash, &id); err != nil {
			return nil, fmt.Errorf("%w: scan binding: %w", common.ErrStoreReadFailed, err)
		}
		if !id.Valid {
			r.logger.Warn(ctx, "skipping binding record", "digest", hash, "error", common.ErrMalformedRecord)
			continue
		}
		table.Set(hash, models.IdentityNumber(id.Int64))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate bindings: %w", common.ErrStoreReadFailed, err)
	}
	return table, nil
}

// Snapshot reads both tables inside one transaction.
func (r *SQLRepository) Snapshot(ctx context.Context) (set models.CredentialSet, table models.BindingTable, err error) {
	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if set, err = r.loadCredentials(ctx, tx); err != nil {
			return err
		}
		table, err = r.loadBindings(ctx, tx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return set, table, nil
}

func (r *SQLRepository) Close() error {
	return r.closer()
}

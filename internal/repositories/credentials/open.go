package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/facegate/internal/config"
	"github.com/dmitrijs2005/facegate/internal/filex"
	"github.com/dmitrijs2005/facegate/internal/logging"
)

// Open returns the backend selected by cfg.StoreBackend, creating the data
// directory first.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (Repository, error) {
	if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	switch cfg.StoreBackend {
	case config.BackendFile:
		return NewFileRepository(cfg.CredentialLogPath(), cfg.BindingLogPath(), logger), nil
	case config.BackendSQLite:
		r, err := OpenSQLite(ctx, cfg.SQLiteFile(), logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.BackendPostgres:
		r, err := OpenPostgres(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

package stopstore

import (
	"context"
	"fmt"
	"io"

	"github.com/ovtracker-map/internal/common/config"
	"github.com/ovtracker-map/internal/common/db"
	"github.com/ovtracker-map/internal/common/logger"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backend selected in cfg. The returned closer releases any
// database connection.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, io.Closer, error) {
	var (
		database *db.DB
		err      error
	)
	switch cfg.Store.Backend {
	case config.BackendJSON:
		return NewFileStore(cfg.Store.JSONPath, log), nopCloser{}, nil
	case config.BackendSQLite:
		database, err = db.NewSQLite(cfg.Store.SQLitePath, log)
	case config.BackendPostgres:
		database, err = db.NewPostgres(cfg.Database.ConnectionString(), log)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s store: %w", cfg.Store.Backend, err)
	}

	store := NewSQLStore(database)
	if err := store.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}
	return store, database, nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/notas/internal/adapter/memory"
	"github.com/heartmarshall/notas/internal/adapter/postgres"
	"github.com/heartmarshall/notas/internal/adapter/postgres/kv"
	"github.com/heartmarshall/notas/internal/adapter/sqlite"
	"github.com/heartmarshall/notas/internal/config"
)

// Storage is the key-value backend shared by progress persistence and backups.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context, prefix string) (map[string]string, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OpenStorage connects the configured driver. The returned func releases it.
// The postgres schema is migrated up before use.
func OpenStorage(ctx context.Context, log *slog.Logger, cfg config.StorageConfig) (Storage, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.WarnContext(ctx, "memory storage: progress is lost on exit")
		return memory.New(), func() {}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.InfoContext(ctx, "storage opened", slog.String("driver", cfg.Driver), slog.String("path", cfg.SQLitePath))
		return sqlite.New(db), func() { _ = db.Close() }, nil

	case config.DriverPostgres:
		if err := postgres.Migrate(ctx, cfg.Postgres.DSN, postgres.MigrateUp, log); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		log.InfoContext(ctx, "storage opened",
			slog.String("driver", cfg.Driver),
			slog.Int("max_conns", int(cfg.Postgres.MaxConns)),
		)
		return kv.New(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("open storage: unknown driver %q", cfg.Driver)
	}
}

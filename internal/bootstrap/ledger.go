package bootstrap

import (
	"context"
	"fmt"

	ledgerv1 "github.com/Satyam-Vyas/order-book/internal/domain/ledger/v1"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/memory"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/postgresql/ledger"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/postgresql/migrations"
	"github.com/Satyam-Vyas/order-book/internal/infrastructure/sqlite"
	"github.com/Satyam-Vyas/order-book/pkg/config"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	migrationpg "github.com/Satyam-Vyas/order-book/pkg/migration-pg"
	"github.com/Satyam-Vyas/order-book/pkg/postgresql"
)

func newLedger(ctx context.Context, cfg *config.Config, log logger.Interface) (ledgerv1.Ledger, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("using the in-memory ledger, state is lost on exit")
		return memory.NewLedger(), nil

	case config.DriverSQLite:
		return sqlite.NewLedger(ctx, sqlite.Options{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		}, log)

	case config.DriverPostgres:
		db, err := postgresql.NewClient(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

		if cfg.App.AutoMigrate {
			runner := migrationpg.NewRunner(db, log, migrationpg.Config{Source: migrations.FS})
			if err := runner.MigrateUp(ctx, 0); err != nil {
				db.Close()
				return nil, err
			}
		}

		log.Info("postgres ledger connected",
			logger.NewField("host", db.Host()),
			logger.NewField("database", db.DatabaseName()),
		)
		return ledger.NewLedger(db, log), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

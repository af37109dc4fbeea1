package migration

import (
	"context"
	"time"

	"github.com/railzwaylabs/parkwise/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const timeout = 2 * time.Minute

// Module migrates the schema while the app is being built, before any
// lifecycle hook runs.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return Run(ctx, conn, cfg.Database.Driver, log.Named("migration"))
	}),
)

// AutoModule migrates at serve time for drivers without SQL migrations.
// Postgres is left to `parkwise migrate` and the schema gate.
var AutoModule = fx.Module("migrations.auto",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.Database.Driver == "postgres" {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return AutoMigrate(ctx, conn, cfg.Database.Driver)
	}),
)

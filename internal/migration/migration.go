// Package migration brings the database schema up to date: embedded SQL
// migrations on postgres, gorm AutoMigrate on the other drivers.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	sessiondomain "github.com/railzwaylabs/parkwise/internal/session/domain"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run migrates conn for the given driver.
func Run(ctx context.Context, conn *gorm.DB, driver string, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if driver != "postgres" {
		if err := AutoMigrate(ctx, conn, driver); err != nil {
			return err
		}
		log.Info("schema auto-migrated", zap.String("driver", driver))
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	version, err := RunMigrations(ctx, sqlDB)
	if err != nil {
		return err
	}
	log.Info("schema migrated", zap.Uint("version", version))
	return nil
}

const activeSessionIndexName = "ux_sessions_active_user"

// AutoMigrate creates the tables from the gorm models plus the unique index
// that allows one active session per user.
func AutoMigrate(ctx context.Context, conn *gorm.DB, driver string) error {
	db := conn.WithContext(ctx)
	if err := db.AutoMigrate(&zonedomain.Zone{}, &vehicledomain.Vehicle{}, &sessiondomain.Session{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	stmts := activeSessionIndex(driver)
	if driver == "mysql" {
		m := db.Migrator()
		switch {
		case m.HasIndex("sessions", activeSessionIndexName):
			stmts = nil
		case m.HasColumn("sessions", "active_user_id"):
			stmts = stmts[1:]
		}
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create active session index: %w", err)
		}
	}
	return nil
}

// activeSessionIndex returns the DDL for the active session index. mysql has
// no partial indexes, so it indexes a generated column that turns NULL once
// the session ends.
func activeSessionIndex(driver string) []string {
	switch driver {
	case "sqlite":
		return []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS ` + activeSessionIndexName + ` ON sessions (user_id) WHERE ended_at IS NULL`,
		}
	case "mysql":
		return []string{
			`ALTER TABLE sessions ADD COLUMN active_user_id VARCHAR(128) AS (IF(ended_at IS NULL, user_id, NULL)) STORED`,
			`CREATE UNIQUE INDEX ` + activeSessionIndexName + ` ON sessions (active_user_id)`,
		}
	default:
		return nil
	}
}

// RunMigrations applies every embedded migration under a postgres advisory
// lock and records the resulting schema state. It returns the schema version.
func RunMigrations(ctx context.Context, db *sql.DB) (uint, error) {
	if db == nil {
		return 0, errors.New("migration database handle is required")
	}

	unlock, err := acquireAdvisoryLock(ctx, db)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = unlock(context.Background())
	}()

	embedded, err := EmbeddedState()
	if err != nil {
		return 0, err
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return 0, fmt.Errorf("create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return 0, err
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	current, err := ensureNotDirty(migrator)
	if err != nil {
		return 0, err
	}
	if current != embedded.Latest {
		return 0, fmt.Errorf("schema version mismatch after migrate: got %d want %d", current, embedded.Latest)
	}

	if err := recordSchemaState(ctx, db, strconv.FormatUint(uint64(current), 10), embedded.Checksum); err != nil {
		return 0, err
	}
	return current, nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}

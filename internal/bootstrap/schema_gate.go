// Package bootstrap refuses to serve traffic against a schema the binary
// does not expect.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/railzwaylabs/parkwise/internal/config"
	"github.com/railzwaylabs/parkwise/internal/migration"
	"gorm.io/gorm"
)

var (
	ErrSchemaMissing          = errors.New("schema missing")
	ErrSchemaVersionMismatch  = errors.New("schema version mismatch")
	ErrSchemaChecksumMismatch = errors.New("schema checksum mismatch")
)

var requiredTables = []string{"zones", "vehicles", "sessions"}

type SchemaGate interface {
	MustBeActive(ctx context.Context) error
}

type schemaGate struct {
	db       *gorm.DB
	driver   string
	expected migration.Embedded
}

func NewSchemaGate(db *gorm.DB, cfg config.Config) (SchemaGate, error) {
	if db == nil {
		return nil, errors.New("schema gate requires database handle")
	}

	expected, err := migration.EmbeddedState()
	if err != nil {
		return nil, err
	}

	return &schemaGate{db: db, driver: cfg.Database.Driver, expected: expected}, nil
}

// MustBeActive checks the recorded migration state on postgres. Other
// drivers are auto-migrated, so only the presence of the tables is checked.
func (g *schemaGate) MustBeActive(ctx context.Context) error {
	if g.driver != "postgres" {
		migrator := g.db.WithContext(ctx).Migrator()
		for _, table := range requiredTables {
			if !migrator.HasTable(table) {
				return fmt.Errorf("%w: table %s", ErrSchemaMissing, table)
			}
		}
		return nil
	}

	state, err := loadSchemaState(ctx, g.db)
	if err != nil {
		return err
	}
	return g.compare(state)
}

func (g *schemaGate) compare(state *SchemaState) error {
	want := strconv.FormatUint(uint64(g.expected.Latest), 10)
	if state.SchemaVersion != want {
		return fmt.Errorf("%w: state=%s expected=%s", ErrSchemaVersionMismatch, state.SchemaVersion, want)
	}
	if state.Checksum != nil && *state.Checksum != "" && *state.Checksum != g.expected.Checksum {
		return fmt.Errorf("%w: state=%s expected=%s", ErrSchemaChecksumMismatch, *state.Checksum, g.expected.Checksum)
	}
	return nil
}

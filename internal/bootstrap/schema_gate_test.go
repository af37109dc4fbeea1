package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/parkwise/internal/config"
	"github.com/railzwaylabs/parkwise/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func gateFor(t *testing.T, db *gorm.DB, driver string) SchemaGate {
	t.Helper()
	cfg := config.Config{}
	cfg.Database.Driver = driver
	gate, err := NewSchemaGate(db, cfg)
	require.NoError(t, err)
	return gate
}

func TestSchemaGateRequiresTables(t *testing.T) {
	db := openDB(t)
	gate := gateFor(t, db, "sqlite")
	ctx := context.Background()

	assert.ErrorIs(t, gate.MustBeActive(ctx), ErrSchemaMissing)

	require.NoError(t, migration.Run(ctx, db, "sqlite", zap.NewNop()))
	assert.NoError(t, gate.MustBeActive(ctx))
}

func TestSchemaGateComparesRecordedState(t *testing.T) {
	db := openDB(t)
	gate := gateFor(t, db, "postgres")
	ctx := context.Background()

	require.NoError(t, db.Exec(`CREATE TABLE schema_state (
		id BOOLEAN PRIMARY KEY,
		schema_version VARCHAR(32) NOT NULL,
		checksum VARCHAR(64),
		applied_at TIMESTAMP NOT NULL
	)`).Error)

	assert.ErrorIs(t, gate.MustBeActive(ctx), ErrSchemaStateNotFound)

	embedded, err := migration.EmbeddedState()
	require.NoError(t, err)

	require.NoError(t, db.Exec(`INSERT INTO schema_state (id, schema_version, checksum, applied_at) VALUES (?, ?, ?, ?)`,
		true, "0", embedded.Checksum, time.Now().UTC()).Error)
	assert.ErrorIs(t, gate.MustBeActive(ctx), ErrSchemaVersionMismatch)

	require.NoError(t, db.Exec(`UPDATE schema_state SET schema_version = ?, checksum = ?`, "1", "deadbeef").Error)
	assert.ErrorIs(t, gate.MustBeActive(ctx), ErrSchemaChecksumMismatch)

	require.NoError(t, db.Exec(`UPDATE schema_state SET checksum = ?`, embedded.Checksum).Error)
	assert.NoError(t, gate.MustBeActive(ctx))
}

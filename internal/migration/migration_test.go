package migration

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	sessiondomain "github.com/railzwaylabs/parkwise/internal/session/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestParseMigrationVersion(t *testing.T) {
	tests := []struct {
		name    string
		version uint
		ok      bool
	}{
		{"000001_init.up.sql", 1, true},
		{"000012_add_index.down.sql", 12, true},
		{"init.up.sql", 0, false},
		{"abc_init.up.sql", 0, false},
		{"000000_zero.up.sql", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, ok := parseMigrationVersion(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.version, version)
		})
	}
}

func TestEmbeddedState(t *testing.T) {
	first, err := EmbeddedState()
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Latest)
	assert.Len(t, first.Checksum, 64)

	second, err := EmbeddedState()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestActiveSessionIndex(t *testing.T) {
	sqliteDDL := activeSessionIndex("sqlite")
	require.Len(t, sqliteDDL, 1)
	assert.Contains(t, sqliteDDL[0], "WHERE ended_at IS NULL")

	mysqlDDL := activeSessionIndex("mysql")
	require.Len(t, mysqlDDL, 2)
	assert.Contains(t, mysqlDDL[0], "IF(ended_at IS NULL, user_id, NULL)")
	assert.Contains(t, mysqlDDL[1], "UNIQUE INDEX ux_sessions_active_user ON sessions (active_user_id)")

	// postgres gets the index from the embedded migrations.
	assert.Empty(t, activeSessionIndex("postgres"))
}

func TestRunAutoMigratesSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Run(ctx, conn, "sqlite", zap.NewNop()))
	// Idempotent.
	require.NoError(t, Run(ctx, conn, "sqlite", zap.NewNop()))

	for _, table := range []string{"zones", "vehicles", "sessions"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}

	now := time.Now().UTC()
	active := func(id snowflake.ID) *sessiondomain.Session {
		return &sessiondomain.Session{
			ID:        id,
			UserID:    "user-1",
			VehicleID: 1,
			ZoneID:    1,
			ZoneCode:  "lot",
			StartedAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	first := active(1)
	require.NoError(t, conn.Create(first).Error)

	second := active(2)
	assert.Error(t, conn.Create(second).Error, "second active session for the same user")

	ended := now.Add(time.Hour)
	require.NoError(t, conn.Model(first).Update("ended_at", ended).Error)
	assert.NoError(t, conn.Create(second).Error)
}

// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack-api/internal/config"
)

func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "core.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)

	applied, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = db.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	var count int
	require.NoError(t, db.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"))
	assert.Zero(t, count)
}

func TestMigrateUnknownDialect(t *testing.T) {
	db := newSQLiteDatabase(t)

	_, err := Migrate(context.Background(), db.DB, "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestNewDatabaseUnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(context.Background(), config.DatabaseConfig{
		Driver: "mysql",
		URL:    "root@/tasks",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDatabasePingAndStats(t *testing.T) {
	db := newSQLiteDatabase(t)

	require.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	assert.Equal(t, config.DriverSQLite, db.Dialect)
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	_, err := db.Migrate(ctx)
	require.NoError(t, err)

	now := time.Now().UTC()
	err = InTx(ctx, db.DB, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (user_name, email, full_name, role, active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"ghost", "ghost@example.com", "Ghost", "TESTER", true, now, now,
		)
		require.NoError(t, err)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, db.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"))
	assert.Zero(t, count)
}

func TestJitteredDuration(t *testing.T) {
	base := time.Hour
	for range 20 {
		got := jitteredDuration(base)
		assert.GreaterOrEqual(t, got, base)
		assert.Less(t, got, base+base/7)
	}
	assert.Zero(t, jitteredDuration(0))
}

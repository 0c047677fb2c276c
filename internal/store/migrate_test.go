package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSchema(t *testing.T) {
	m := testManager(t)
	ctx := t.Context()
	require.NoError(t, m.Migrate(ctx))

	err := m.With(ctx, func(db *sql.DB) error {
		for _, table := range []string{"attendance", "users", "attendance_status"} {
			var name string
			err := db.QueryRowContext(ctx,
				"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			require.NoError(t, err, "table %s must exist", table)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	m := testManager(t)
	ctx := t.Context()
	require.NoError(t, m.Migrate(ctx))
	require.NoError(t, m.Migrate(ctx))

	var statuses int
	err := m.With(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance_status").Scan(&statuses)
	})
	require.NoError(t, err)
	assert.Equal(t, 6, statuses, "seed rows must not duplicate")
}

func TestMigrateSeedsDefaultStatus(t *testing.T) {
	m := testManager(t)
	ctx := t.Context()
	require.NoError(t, m.Migrate(ctx))

	var name string
	err := m.With(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			"SELECT name FROM attendance_status WHERE is_default = 1").Scan(&name)
	})
	require.NoError(t, err)
	assert.Equal(t, "Present", name)
}

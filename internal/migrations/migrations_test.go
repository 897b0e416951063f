package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSchemaVersion_MatchesNewestMigration(t *testing.T) {
	p, err := NewProvider(openMemory(t))
	require.NoError(t, err)

	sources := p.ListSources()
	require.NotEmpty(t, sources)
	require.Equal(t, int64(SchemaVersion), sources[len(sources)-1].Version)
}

func TestUp_AppliesAllAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	require.NoError(t, Up(ctx, db))
	require.NoError(t, Up(ctx, db))

	v, err := Version(ctx, db)
	require.NoError(t, err)
	require.Equal(t, int64(SchemaVersion), v)

	for _, table := range []string{"cars", "expenses", "planned_maintenance", "delayed_notifications", "user_settings"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n))
		require.Equal(t, 1, n, "table %s", table)
	}
}

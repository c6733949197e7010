package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tradebook/internal/database"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()

	db, err := database.New(database.DriverSQLite, filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.Migrate(ctx, db))

	v, err := database.Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, database.SchemaVersion, v)

	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows))
	assert.Equal(t, 1, rows)
}

package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/slipcheck/slipcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRuns(t *testing.T) {
	t.Run("none backend rejected", func(t *testing.T) {
		err := MigrateRuns(schema.NoneBackend, "", -1)
		assert.Error(t, err, "Migrations should not be supported for none backend")
	})

	t.Run("unsupported backend rejected", func(t *testing.T) {
		err := MigrateRuns(schema.DatabaseBackend("oracle"), "", -1)
		assert.Error(t, err)
	})

	t.Run("sqlite up and down", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "runs.db")

		// Migrate up to latest
		require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

		// Tables should exist
		db, err := sql.Open("sqlite", dbPath)
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		var name string
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, runsTable).Scan(&name)
		assert.NoError(t, err, "Runs table should exist after migration")
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, runResultsTable).Scan(&name)
		assert.NoError(t, err, "Run results table should exist after migration")
		require.NoError(t, db.Close())

		// Re-running up is a no-op
		require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

		// Migrate all the way down
		require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))

		db, err = sql.Open("sqlite", dbPath)
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, runsTable).Scan(&name)
		assert.Error(t, err, "Runs table should be gone after rollback")
	})

	t.Run("sqlite specific version", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "runs.db")

		// Migrate to version 1 only (tables without indexes)
		require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))

		db, err := sql.Open("sqlite", dbPath)
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		var name string
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, runsTable).Scan(&name)
		assert.NoError(t, err, "Runs table should exist at version 1")
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_run_results_run_id'`).Scan(&name)
		assert.Error(t, err, "Index should not exist at version 1")
	})
}

package cmd

import (
	"fmt"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/internal/iocache"
	"github.com/slipcheck/slipcheck/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get run-store config values; clearing may touch both stores
	runBackendStr := viper.GetString("run-backend")
	runBackend := schema.DatabaseBackend(runBackendStr)
	if runBackendStr == "" {
		runBackend = schema.NoneBackend
	}
	runConnStr := viper.GetString("run-db-connect")
	if err := contract.ValidateDatabaseConnectionString(runBackend, runConnStr); err != nil {
		return err
	}

	// Initialize caching with the loaded config; the run store joins in only
	// when a run backend is configured, so status and clear can report on it.
	runInitBackend := runBackend
	if runBackend == schema.NoneBackend {
		runInitBackend = ""
	}
	if err := iocache.InitStores(backend, connStr, runInitBackend, runConnStr); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	cfg.RunBackend = runBackend
	cfg.RunDBConnect = runConnStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func cacheMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Migrations apply to the run tracking schema
	backendStr := viper.GetString("run-backend")
	connStr := viper.GetString("run-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunDBFilePath()
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr

	return nil
}

// cacheMigrateSetupWrapper wraps cacheMigrateSetup to provide PreRunE for migrate command.
func cacheMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheMigrateSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by verification commands. This avoids dataset
// validation and complex config processing for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the engine run cache and run tracking schema",
	Long: `Manage the cache of engine outputs that speeds up repeated runs.

Slipcheck caches every engine result by a content hash of its input, so
rerunning a dataset only computes analyses whose inputs changed.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove cached engine outputs
  migrate - Run schema migrations for the run tracking store

Examples:
  # Check cache status
  slipcheck cache status

  # Clear cache after an engine rebuild
  slipcheck cache clear`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the engine run cache.

Displays:
- Backend type and connection status
- Total number of cached engine outputs
- Last and oldest cache entry timestamps
- Cache database size

When a run backend is configured (SLIPCHECK_RUN_BACKEND or --run-backend),
the run tracking store statistics are printed as well.

Use this to:
- Verify caching is working and connected
- Monitor cache growth over time
- Check when the cache was last updated

Examples:
  # Check cache status
  slipcheck cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunCacheStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)

		if cfg.RunBackend != schema.NoneBackend {
			runStatus, err := iocache.Manager.GetRunStore().GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get run store status", err)
			}
			fmt.Println()
			iocache.PrintRunStatus(runStatus)
		}
	},
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached engine outputs",
	Long: `Delete all cached engine outputs from the configured backend.

Use this when:
- The engine binary changed without bumping its version string
- Cache may be stale or corrupted
- Testing run performance without cache

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Pass --runs to also delete the run tracking data.

Examples:
  # Clear SQLite cache (default)
  slipcheck cache clear

  # Clear MySQL cache (set connection string via env variable)
  SLIPCHECK_CACHE_BACKEND=mysql SLIPCHECK_CACHE_DB_CONNECT="..." slipcheck cache clear

  # Clear cache and run tracking together
  slipcheck cache clear --runs`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")

		if viper.GetBool("runs") {
			if err := iocache.ClearRuns(cfg.RunBackend, contract.GetRunDBFilePath(), cfg.RunDBConnect); err != nil {
				contract.LogFatal("Failed to clear run tracking data", err)
			}
			fmt.Println("Run tracking data cleared successfully.")
		}
	},
}

// cacheMigrateCmd runs database migrations for the run tracking store.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

Migrations allow:
- Upgrading to new schema versions when slipcheck is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed
- Testing new features on specific schema versions

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  slipcheck cache migrate

  # Migrate to specific version
  slipcheck cache migrate --target-version 1

  # Rollback to initial state
  slipcheck cache migrate --target-version 0`,
	PreRunE: cacheMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

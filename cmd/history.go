package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/internal/history"
	"github.com/huangsam/benchtable/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyConfig loads the backend settings shared by all history commands.
func historyConfig(cmd *cobra.Command) (schema.DatabaseBackend, string, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return "", "", fmt.Errorf("error binding flags: %w", err)
	}
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr := viper.GetString("history-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}

	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup(cmd *cobra.Command, _ []string) error {
	backend, connStr, err := historyConfig(cmd)
	if err != nil {
		return err
	}

	if err := history.InitHistory(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup(cmd *cobra.Command, _ []string) error {
	backend, connStr, err := historyConfig(cmd)
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = history.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on generation history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by generate. This avoids result file validation
// for simple history operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the history of table generations",
	Long: `Manage the stored history of table generations.

When a history backend is configured, every generation stores:
- Generation metadata (timestamp, configuration, duration, output name)
- Number of run-sets, rows, differing rows and regressions
- Correct, wrong and other counts plus the score of every run-set

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Check history status
  benchtable history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  benchtable history export --output-file bench-history`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show detailed information about the generation history.

Displays:
- Backend type and connection status
- Total number of generations stored
- Last and oldest generation timestamps
- Total rows tabulated across all generations
- Database table sizes

Examples:
  # Check history status
  benchtable history status`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := history.Manager.GetHistoryStore()
		if store == nil {
			history.PrintHistoryStatus(os.Stdout, schema.HistoryStatus{Backend: string(cfg.HistoryBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all generation history data",
	Long: `Delete all stored generations and run-set counts.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  benchtable history export --output-file backup
  benchtable history clear`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		// The SQLite file cannot be removed while it is open
		history.CloseHistory()
		if err := history.ClearHistory(cfg.HistoryBackend, history.GetHistoryDBFilePath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history data", err)
		}
		fmt.Println("History data cleared successfully.")
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export generation history to Parquet for BI tools and analytics",
	Long: `Export all stored history data to Parquet format for use with analytics tools.

Exports two datasets:
- <output-file>.generations.parquet - metadata about each generation
- <output-file>.runsets.parquet - counts and score of every run-set

Requires: --output-file parameter

Examples:
  # Export all data
  benchtable history export --output-file bench-history

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('bench-history.runsets.parquet') LIMIT 10"`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExecuteHistoryExport(viper.GetString("output-file"), os.Stdout); err != nil {
			contract.LogFatal("Failed to export history data", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the generation history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  benchtable history migrate --history-backend sqlite

  # Migrate to specific version
  benchtable history migrate --target-version 1

  # Rollback to initial state
  benchtable history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

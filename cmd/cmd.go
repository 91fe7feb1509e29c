// Package cmd defines the command-line interface for benchtable.
package cmd

import (
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored statuses in text output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", contract.DefaultWidth, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("log-format", string(schema.ConsoleLog), "Log encoding: console or json")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// generate and watch accept the same table options
	addTableFlags(generateCmd)
	addTableFlags(watchCmd)

	historyExportCmd.Flags().String("output-file", "", "Path prefix of the exported Parquet files")
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}

// addTableFlags registers the options that shape generated tables.
func addTableFlags(c *cobra.Command) {
	flags := c.Flags()
	flags.StringP("xml", "x", "", "Table definition XML file; cannot be combined with result files")
	flags.StringP("outputpath", "o", "", "Output directory for the tables ('-' prints them to stdout)")
	flags.StringP("name", "n", "", "Base name of the created output files")
	flags.Bool("ignore-erroneous-benchmarks", false, "Skip result files that report an error")
	flags.BoolP("dump", "d", false, "Print regression count and per-run-set statistics to stdout")
	flags.Bool("ignore-flapping-timeout-regressions", false, "Do not count timeouts that flap between run-sets as regressions")
	flags.StringSliceP("format", "f", nil, "Output formats: html, csv, text, json, yaml, parquet (repeatable, default html,csv)")
	flags.BoolP("common", "c", false, "Only keep tasks contained in every run-set")
	flags.Bool("no-diff", false, "Do not write the table of differences")
	flags.Bool("correct-only", false, "Clear values of results that are not correct")
	flags.Bool("all-columns", false, "Show all columns of the result files, including hidden ones")
	flags.Bool("offline", false, "Reference the HTML scripts from lib/javascript instead of a CDN")
	flags.BoolP("quiet", "q", false, "Only log warnings and errors")
}

package cmd

import (
	"github.com/huangsam/benchtable/core"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/spf13/cobra"
)

// generateCmd merges result files into tables.
var generateCmd = &cobra.Command{
	Use:   "generate [RESULT...]",
	Short: "Merge benchmark result files into comparison tables.",
	Long: `Align the tasks of several benchmark run-sets and write tables comparing them.

Each RESULT is a result XML file or glob pattern, optionally compressed with
bzip2, gzip or zstd. Without RESULT and without --xml, all files matching
*.results*.xml in the output path (default results/) are used.

Writes:
- The full table of all tasks
- A table of differences listing tasks whose status changes between run-sets

Both tables carry per-run-set statistics such as total tasks, correct and
incorrect results, and the score.

Examples:
  # Compare two runs and write HTML and CSV next to them
  benchtable generate results/old.results.xml results/new.results.xml

  # Print a terminal table of the common tasks
  benchtable generate -c -f text -o - results/*.results.xml

  # Use a table definition and report regressions for a build bot
  benchtable generate -x table.xml --dump`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGenerate(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot generate tables", err)
		}
	},
}

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/benchtable/core"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/internal/watch"
	"github.com/spf13/cobra"
)

// watchCmd regenerates tables while benchmarks are still producing results.
var watchCmd = &cobra.Command{
	Use:   "watch [RESULT...]",
	Short: "Regenerate tables whenever result files change.",
	Long: `Generate tables once, then watch the directories of the inputs and
regenerate them whenever a result file (*.results*.xml*) is created or written.

Accepts the same arguments and flags as generate. Stop with Ctrl-C.

Examples:
  # Keep the tables of a running benchmark up to date
  benchtable watch -o results/

  # Watch the run-sets of a table definition
  benchtable watch -x table.xml -f html`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := watch.NewWatcher(cfg, historyManager, core.ExecuteGenerate, watch.DefaultDebounce)
		if err := w.Run(ctx); err != nil {
			contract.LogFatal("Cannot watch result files", err)
		}
	},
}

package history

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/internal/parquet"
)

// ExecuteHistoryExport exports the history of the global manager to Parquet files.
func ExecuteHistoryExport(outputFile string, w io.Writer) error {
	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("history is disabled. Set --history-backend to export it")
	}
	return ExportHistory(store, outputFile, w)
}

// ExportHistory writes every generation to <outputFile>.generations.parquet
// and every run-set count to <outputFile>.runsets.parquet.
func ExportHistory(store contract.HistoryStore, outputFile string, w io.Writer) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalGenerations == 0 {
		return errors.New("no generation history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total generations: %d\n", status.TotalGenerations)
	_, _ = fmt.Fprintf(w, "Total run-set records: %d\n", status.TableSizes[runSetCountsTable])

	generations, err := store.GetAllGenerations()
	if err != nil {
		return fmt.Errorf("failed to retrieve generations: %w", err)
	}
	runSetCounts, err := store.GetAllRunSetCounts()
	if err != nil {
		return fmt.Errorf("failed to retrieve run-set counts: %w", err)
	}

	generationsFile := outputFile + ".generations.parquet"
	parquetGenerations := parquet.ConvertGenerationRecords(generations)
	if err := parquet.WriteGenerationsParquet(parquetGenerations, generationsFile); err != nil {
		return fmt.Errorf("failed to write generations: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d generations to: %s\n", len(parquetGenerations), generationsFile)

	runSetsFile := outputFile + ".runsets.parquet"
	parquetRunSets := parquet.ConvertRunSetCountsRecords(runSetCounts)
	if err := parquet.WriteRunSetCountsParquet(parquetRunSets, runSetsFile); err != nil {
		return fmt.Errorf("failed to write run-set counts: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d run-set records to: %s\n", len(parquetRunSets), runSetsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Any other Parquet-compatible tool")

	return nil
}

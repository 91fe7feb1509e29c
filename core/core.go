// Package core has core logic for aligning, tabulating and summarizing benchmark results.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/internal/outwriter"
	"github.com/huangsam/benchtable/schema"
)

// now is swapped in tests to get stable generated names.
var now = time.Now

// ExecutorFunc defines the function signature for executing a generation.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// BuildReport runs the whole pipeline from result files to table documents.
// It returns a nil report when there is nothing to tabulate.
func BuildReport(ctx context.Context, cfg *contract.Config) (*Report, error) {
	builder := NewReportBuilder(ctx, cfg)

	if _, err := builder.LoadInputs(); err != nil {
		return nil, err
	}
	if _, err := builder.FilterErrors(); err != nil {
		return nil, err
	}
	if _, err := builder.CollectData(); err != nil {
		return nil, err
	}
	if _, err := builder.AlignTasks(); err != nil {
		return nil, err
	}
	if !builder.HasRows() {
		contract.Logger().Warn("No results found, no tables produced.")
		return nil, nil
	}
	return builder.BuildTables().GetReport(), nil
}

// ExecuteGenerate builds the report, writes every table in every requested
// format and records the generation in the history store.
func ExecuteGenerate(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	start := now()
	ctx = withGenerationID(ctx, uuid.NewString())

	report, err := BuildReport(ctx, cfg)
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}

	if report.FilePattern != StdoutPattern {
		if err := os.MkdirAll(report.OutputPath, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", report.OutputPath, err)
		}
	}
	if err := outwriter.NewOutWriter().WriteTables(report.Tables, cfg, report.OutputFile); err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		contract.Logger().Info("done")
	}

	recordGeneration(ctx, cfg, mgr, report, start)

	if cfg.DumpCounts {
		return report.Dump(os.Stdout)
	}
	return nil
}

// Dump prints the regression count and the per-run-set counts in the
// line-oriented format build bots parse.
func (r *Report) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "REGRESSIONS %d\n", r.Regressions); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "STATS"); err != nil {
		return err
	}
	for _, c := range r.Counts {
		if _, err := fmt.Fprintf(w, "%d %d %d\n", c.Correct, c.Wrong, c.Other); err != nil {
			return err
		}
	}
	return nil
}

// recordGeneration stores the generation when a history store is configured.
// Failures are logged and never fail the generation.
func recordGeneration(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, report *Report, start time.Time) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	id := generationIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	generation := schema.GenerationRecord{
		GenerationID: id,
		StartTime:    start.UTC(),
		DurationMs:   now().Sub(start).Milliseconds(),
		OutputName:   report.Name,
		RunSets:      int32(len(report.RunSets)),
		Rows:         int32(len(report.Rows)),
		DiffRows:     int32(len(report.DiffRows)),
		Regressions:  int32(report.Regressions),
		ConfigParams: configParams(cfg),
	}

	if err := store.RecordGeneration(generation, runSetRecords(id, report)); err != nil {
		contract.LogWarn("Generation history recording failed", err)
	}
}

// configParams encodes the settings that shape a table as JSON.
func configParams(cfg *contract.Config) *string {
	params := map[string]any{
		"result_files":     cfg.ResultFiles,
		"table_definition": cfg.TableDefinition,
		"formats":          cfg.Formats,
		"common":           cfg.Common,
		"correct_only":     cfg.CorrectOnly,
		"all_columns":      cfg.AllColumns,
		"write_diff":       cfg.WriteDiff,
		"ignore_errors":    cfg.IgnoreErrors,
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

// runSetRecords returns one counts record per run-set of the report.
func runSetRecords(id string, report *Report) []schema.RunSetCountsRecord {
	records := make([]schema.RunSetCountsRecord, 0, len(report.RunSets))
	for i, rs := range report.RunSets {
		record := schema.RunSetCountsRecord{
			GenerationID: id,
			RunSetIndex:  int32(i),
			RunSetName:   rs.Name(),
			Tool:         strings.TrimSpace(rs.Attribute("tool") + " " + rs.Attribute("version")),
		}
		if i < len(report.Counts) {
			record.Correct = int32(report.Counts[i].Correct)
			record.Wrong = int32(report.Counts[i].Wrong)
			record.Other = int32(report.Counts[i].Other)
		}
		for _, row := range report.Rows {
			record.Score += int64(row.Results[i].Score)
		}
		records = append(records, record)
	}
	return records
}

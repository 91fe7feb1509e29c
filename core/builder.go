package core

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/benchtable/core/extract"
	"github.com/huangsam/benchtable/core/loader"
	"github.com/huangsam/benchtable/core/units"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
)

// Output file patterns. Placeholders are {name}, {type} and {ext}.
const (
	SingleFilePattern = "{name}.{ext}"
	MultiFilePattern  = "{name}.{type}.{ext}"
	StdoutPattern     = contract.StdoutPath

	// nameStart prefixes generated names when several result files are combined.
	nameStart = "results"
	// nameTimeLayout is the time stamp of generated names.
	nameTimeLayout = "2006-01-02_1504"
	// resultFileGlob finds result files when none are given.
	resultFileGlob = "*.results*.xml"
)

// Report is the outcome of one table generation.
type Report struct {
	Name        string
	OutputPath  string
	FilePattern string

	RunSets  []*loader.RunSetResult
	Rows     []*Row
	DiffRows []*Row
	Tables   []*schema.Table

	Regressions int
	Counts      []schema.RunSetCounts
}

// OutputFile returns the file a table is written to, or "-" for stdout.
func (r *Report) OutputFile(tableType schema.TableType, ext string) string {
	if r.FilePattern == StdoutPattern {
		return StdoutPattern
	}
	name := strings.NewReplacer("{name}", r.Name, "{type}", string(tableType), "{ext}", ext).Replace(r.FilePattern)
	return filepath.Join(r.OutputPath, name)
}

// ReportBuilder builds a report step by step.
type ReportBuilder struct {
	ctx     context.Context
	cfg     *contract.Config
	runSets []*loader.RunSetResult
	rows    []*Row
	report  *Report
}

// NewReportBuilder creates a new builder for a table generation.
func NewReportBuilder(ctx context.Context, cfg *contract.Config) *ReportBuilder {
	return &ReportBuilder{
		ctx:    ctx,
		cfg:    cfg,
		report: &Report{},
	}
}

func (b *ReportBuilder) progress(template string, args ...any) {
	if !shouldSuppressHeader(b.ctx) {
		contract.Logger().Sugar().Infof(template, args...)
	}
}

// LoadInputs resolves the input files, parses them into run-sets and decides
// how the output is named and where it goes.
func (b *ReportBuilder) LoadInputs() (*ReportBuilder, error) {
	cfg := b.cfg
	r := b.report
	r.Name = cfg.Name
	r.OutputPath = cfg.OutputPath
	r.FilePattern = MultiFilePattern
	if cfg.WritesToStdout() {
		r.FilePattern = StdoutPattern
		r.OutputPath = "."
	}

	if cfg.TableDefinition != "" {
		runSets, err := loader.ParseTableDefinitionFile(cfg.TableDefinition, cfg.AllColumns)
		if err != nil {
			return nil, err
		}
		b.runSets = runSets
		if r.Name == "" {
			r.Name = loader.BasenameWithoutEnding(cfg.TableDefinition)
		}
		if r.OutputPath == "" {
			r.OutputPath = filepath.Dir(cfg.TableDefinition)
		}
	} else {
		inputs := cfg.ResultFiles
		if len(inputs) == 0 {
			searchDir := r.OutputPath
			if searchDir == "" {
				searchDir = contract.DefaultOutputPath
			}
			b.progress("Searching result files in '%s'...", searchDir)
			inputs = []string{filepath.Join(searchDir, resultFileGlob)}
		}

		files := loader.ExtendFileList(inputs)
		runSets, err := loader.LoadResultFiles(files, cfg.AllColumns)
		if err != nil {
			return nil, err
		}
		b.runSets = runSets

		if len(files) == 1 {
			if r.Name == "" {
				r.Name = loader.BasenameWithoutEnding(files[0])
			}
			if r.FilePattern != StdoutPattern {
				r.FilePattern = SingleFilePattern
			}
		} else if r.Name == "" {
			r.Name = nameStart + "." + now().Format(nameTimeLayout)
		}

		if len(files) > 0 && r.OutputPath == "" {
			r.OutputPath = commonDirectory(files)
		}
	}

	if r.OutputPath == "" {
		r.OutputPath = "."
	}
	return b, nil
}

// commonDirectory returns the directory of all files when they share one,
// otherwise the default output path.
func commonDirectory(files []string) string {
	dir := filepath.Dir(files[0])
	for _, f := range files[1:] {
		if filepath.Dir(f) != dir {
			return contract.DefaultOutputPath
		}
	}
	return dir
}

// FilterErrors drops erroneous run-sets when requested and fails when no
// run-set remains.
func (b *ReportBuilder) FilterErrors() (*ReportBuilder, error) {
	if b.cfg.IgnoreErrors {
		kept := b.runSets[:0]
		for _, rs := range b.runSets {
			if rs.HasAttribute("error") {
				contract.Logger().Sugar().Warnf("Ignoring benchmark %s because of error: %s",
					joinUnique(rs.Attributes["name"]), joinUnique(rs.Attributes["error"]))
				continue
			}
			kept = append(kept, rs)
		}
		b.runSets = kept
	}
	if len(b.runSets) == 0 {
		return nil, errors.New("no benchmark results found")
	}
	return b, nil
}

func joinUnique(values []string) string {
	var unique []string
	for _, v := range values {
		if !slices.Contains(unique, v) {
			unique = append(unique, v)
		}
	}
	return strings.Join(unique, ", ")
}

// CollectData turns the raw results of every run-set into run results.
func (b *ReportBuilder) CollectData() (*ReportBuilder, error) {
	registry, err := extract.NewRegistry(b.cfg.Extractors)
	if err != nil {
		return nil, err
	}
	b.progress("Collecting data...")
	for _, rs := range b.runSets {
		if err := b.ctx.Err(); err != nil {
			return nil, err
		}
		if err := rs.CollectData(registry, b.cfg.CorrectOnly); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// AlignTasks makes all run-sets hold the same tasks in the same order and
// transposes them into rows.
func (b *ReportBuilder) AlignTasks() (*ReportBuilder, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}
	b.progress("Merging results...")
	if b.cfg.Common {
		FindCommonTasks(b.runSets)
	} else {
		MergeTasks(b.runSets)
	}

	rows, err := GetRows(b.runSets)
	if err != nil {
		return nil, err
	}
	b.rows = rows
	return b, nil
}

// HasRows reports whether alignment produced anything to tabulate.
func (b *ReportBuilder) HasRows() bool {
	return len(b.rows) > 0
}

// BuildTables computes the table documents, the regression count and the
// per-run-set counts.
func (b *ReportBuilder) BuildTables() *ReportBuilder {
	r := b.report
	r.RunSets = b.runSets
	r.Rows = b.rows
	if b.cfg.WriteDiff {
		r.DiffRows = FilterRowsWithDifferences(b.rows)
	}

	b.progress("Generating table...")
	commonPrefix := CommonPrefix(b.rows)
	SetRelativePaths(b.rows, commonPrefix, r.OutputPath)

	head := GetTableHead(b.runSets, commonPrefix)
	relevant := SelectRelevantIDColumns(b.rows)

	r.Tables = []*schema.Table{b.buildTable(schema.FullTable, r.Name, b.rows, head, relevant)}
	if len(r.DiffRows) > 0 {
		r.Tables = append(r.Tables, b.buildTable(schema.DiffTable, r.Name+" differences", r.DiffRows, head, relevant))
	}

	r.Regressions = GetRegressionCount(b.rows, b.cfg.IgnoreFlappingTimeouts)
	r.Counts = GetCounts(b.rows)
	return b
}

func (b *ReportBuilder) buildTable(tableType schema.TableType, title string, rows []*Row, head []schema.HeadRow, relevant []bool) *schema.Table {
	stats := GetStats(rows)
	if tableType != schema.DiffTable && !b.cfg.CorrectOnly && !b.cfg.Common {
		if summary := GetSummary(b.runSets); summary != nil {
			stats = slices.Insert(stats, min(1, len(stats)), *summary)
		}
	}

	table := &schema.Table{
		Name:              b.report.Name,
		Type:              tableType,
		Title:             title,
		Head:              head,
		RelevantIDColumns: relevant,
		Stats:             stats,
	}
	for _, rs := range b.runSets {
		table.RunSets = append(table.RunSets, schema.RunSetInfo{
			Name:       rs.Name(),
			Attributes: rs.Attributes,
			Columns:    rs.Columns,
		})
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, tableRow(row))
	}
	return table
}

func tableRow(row *Row) schema.TableRow {
	out := schema.TableRow{
		ID:        row.ID,
		ShortName: row.ShortName,
		FilePath:  row.FilePath,
		Results:   make([]schema.TableResult, len(row.Results)),
	}
	for i, r := range row.Results {
		values := make([]string, len(r.Values))
		for j, v := range r.Values {
			values[j] = units.FormatValue(v, r.Columns[j])
		}
		out.Results[i] = schema.TableResult{
			Status:   r.Status,
			Category: r.Category,
			Score:    r.Score,
			LogFile:  r.LogFile,
			Values:   values,
			Raw:      append([]string(nil), r.Values...),
		}
	}
	return out
}

// GetReport returns the built report.
func (b *ReportBuilder) GetReport() *Report {
	return b.report
}

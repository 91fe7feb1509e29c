// Package parquet provides data structures and functions for exporting benchmark
// tables and generation history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/benchtable/schema"
	"github.com/parquet-go/parquet-go"
)

// TableCell is one value of a table: a task, a run-set and a column.
type TableCell struct {
	// TableName is the name shared by all tables of one generation
	TableName string `parquet:"table_name,snappy,dict"`

	// TableType is "table" or "diff"
	TableType string `parquet:"table_type,snappy,dict"`

	// TaskName is the file name of the task
	TaskName string `parquet:"task_name,snappy"`

	// Properties are the whitespace-separated properties of the task (nullable)
	Properties *string `parquet:"properties,optional,snappy"`

	// RunSetIndex is the position of the run-set in the table
	RunSetIndex int32 `parquet:"run_set_index,snappy"`

	// RunSetName is the display name of the run-set
	RunSetName string `parquet:"run_set_name,snappy,dict"`

	// ColumnTitle is the title of the column
	ColumnTitle string `parquet:"column_title,snappy,dict"`

	// Value is the raw value (nullable when unset)
	Value *string `parquet:"value,optional,snappy"`

	// Status is the raw status of the result (nullable for missing results)
	Status *string `parquet:"status,optional,snappy"`

	// Category is the correctness category of the result
	Category string `parquet:"category,snappy,dict"`

	// Score is the score of the result
	Score int32 `parquet:"score,snappy"`
}

// Generation represents a single recorded table generation.
// This struct maps to the benchtable_generations database table.
type Generation struct {
	// GenerationID is the unique identifier for this generation
	GenerationID string `parquet:"generation_id,snappy"`

	// StartTime is when the generation began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// DurationMs is the duration of the generation in milliseconds
	DurationMs int64 `parquet:"duration_ms,snappy"`

	// OutputName is the name the tables were written under
	OutputName string `parquet:"output_name,snappy"`

	// RunSets is the number of run-sets in the table
	RunSets int32 `parquet:"run_sets,snappy"`

	// Rows is the number of tasks in the table
	Rows int32 `parquet:"rows,snappy"`

	// DiffRows is the number of tasks in the difference table
	DiffRows int32 `parquet:"diff_rows,snappy"`

	// Regressions is the regression count between the last two run-sets
	Regressions int32 `parquet:"regressions,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunSetCounts represents the tallies of one run-set within a generation.
// This struct maps to the benchtable_runset_counts database table.
type RunSetCounts struct {
	// GenerationID references the parent generation
	GenerationID string `parquet:"generation_id,snappy"`

	// RunSetIndex is the position of the run-set in the table
	RunSetIndex int32 `parquet:"run_set_index,snappy"`

	// RunSetName is the display name of the run-set
	RunSetName string `parquet:"run_set_name,snappy"`

	// Tool is the tool name and version
	Tool string `parquet:"tool,snappy"`

	// Correct is the number of correct results
	Correct int32 `parquet:"correct,snappy"`

	// Wrong is the number of wrong results
	Wrong int32 `parquet:"wrong,snappy"`

	// Other is the number of unknown and erroneous results
	Other int32 `parquet:"other,snappy"`

	// Score is the summed score of the run-set
	Score int64 `parquet:"score,snappy"`
}

// WriteTableCells writes the cells of a table to w.
func WriteTableCells(w io.Writer, data []TableCell) error {
	return writeRows(w, data)
}

// WriteGenerationsParquet writes a slice of Generation structs to a Parquet file.
func WriteGenerationsParquet(data []Generation, outputPath string) error {
	return writeFile(outputPath, data)
}

// WriteRunSetCountsParquet writes a slice of RunSetCounts structs to a Parquet file.
func WriteRunSetCountsParquet(data []RunSetCounts, outputPath string) error {
	return writeFile(outputPath, data)
}

func writeFile[T any](outputPath string, data []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return writeRows(file, data)
}

// writeRows writes all records with a schema inferred from the struct tags of T.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertTable flattens a table into one cell per task, run-set and column.
func ConvertTable(table *schema.Table) []TableCell {
	var cells []TableCell
	for _, row := range table.Rows {
		var properties *string
		if row.ID.Properties != "" {
			p := row.ID.Properties
			properties = &p
		}
		for i, result := range row.Results {
			if i >= len(table.RunSets) {
				break
			}
			runSet := table.RunSets[i]
			var status *string
			if result.Category != schema.CategoryMissing || result.Status != "" {
				s := result.Status
				status = &s
			}
			for j, column := range runSet.Columns {
				cell := TableCell{
					TableName:   table.Name,
					TableType:   string(table.Type),
					TaskName:    row.ID.Name,
					Properties:  properties,
					RunSetIndex: int32(i),
					RunSetName:  runSet.Name,
					ColumnTitle: column.Title,
					Status:      status,
					Category:    string(result.Category),
					Score:       int32(result.Score),
				}
				if j < len(result.Raw) && result.Raw[j] != "" {
					v := result.Raw[j]
					cell.Value = &v
				}
				cells = append(cells, cell)
			}
		}
	}
	return cells
}

// ConvertGenerationRecords converts schema.GenerationRecord to Generation for Parquet export.
func ConvertGenerationRecords(records []schema.GenerationRecord) []Generation {
	result := make([]Generation, len(records))
	for i, record := range records {
		result[i] = Generation{
			GenerationID: record.GenerationID,
			StartTime:    record.StartTime,
			DurationMs:   record.DurationMs,
			OutputName:   record.OutputName,
			RunSets:      record.RunSets,
			Rows:         record.Rows,
			DiffRows:     record.DiffRows,
			Regressions:  record.Regressions,
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertRunSetCountsRecords converts schema.RunSetCountsRecord to RunSetCounts for Parquet export.
func ConvertRunSetCountsRecords(records []schema.RunSetCountsRecord) []RunSetCounts {
	result := make([]RunSetCounts, len(records))
	for i, record := range records {
		result[i] = RunSetCounts{
			GenerationID: record.GenerationID,
			RunSetIndex:  record.RunSetIndex,
			RunSetName:   record.RunSetName,
			Tool:         record.Tool,
			Correct:      record.Correct,
			Wrong:        record.Wrong,
			Other:        record.Other,
			Score:        record.Score,
		}
	}
	return result
}

// Package extract turns run elements of a result file into RunResults,
// pulling column values from the element itself or from the task's log file.
package extract

import (
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/benchtable/core/units"
	"github.com/huangsam/benchtable/core/verdict"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"go.uber.org/zap"
)

// TaskIDOf returns the identity of a run element.
func TaskIDOf(run *schema.Element) schema.TaskID {
	return schema.TaskID{
		Name:       run.AttrOr("name", ""),
		Properties: run.AttrOr("properties", ""),
		RunSet:     run.AttrOr("runset", ""),
	}
}

// NewRunResult builds the result of one run element for the given columns.
// With correctOnly, values of results that are not correct stay unset.
func NewRunResult(run *schema.Element, extractor ValueExtractor, columns []schema.Column, correctOnly bool) *schema.RunResult {
	status, _ := run.ColumnValue("status")
	category := schema.CategoryMissing
	if c, ok := run.ColumnValue("category"); ok {
		category = schema.Category(c)
	}
	id := TaskIDOf(run)
	score := verdict.ScoreForTask(id.Name, id.PropertyList(), category)
	logFile := run.AttrOr("logfile", "")

	var lines []string
	linesRead := false

	values := make([]string, len(columns))
	for i, column := range columns {
		var value string
		switch strings.ToLower(column.Title) {
		case "score":
			value = strconv.Itoa(score)
		case "status":
			value = status
		default:
			if correctOnly && category != schema.CategoryCorrect {
				break
			}
			if column.Pattern == "" {
				value, _ = run.ColumnValue(column.Title)
				break
			}
			if !linesRead {
				lines = readLogLines(logFile)
				linesRead = true
			}
			value, _ = extractor.ValueFromOutput(lines, column.Pattern)
		}

		if column.NumberOfDigits != nil {
			value = units.FormatNumber(value, *column.NumberOfDigits)
		}
		values[i] = value
	}

	return &schema.RunResult{
		TaskID:   id,
		Status:   status,
		Category: category,
		Score:    score,
		LogFile:  logFile,
		Columns:  columns,
		Values:   values,
	}
}

// readLogLines returns the lines of a log file, or nothing when it cannot be read.
func readLogLines(path string) []string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		contract.Logger().Warn("Could not read value from logfile", zap.Error(err))
		return nil
	}
	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

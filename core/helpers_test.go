package core

import (
	"testing"

	"github.com/huangsam/benchtable/core/loader"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	statusColumn  = schema.Column{Title: "status"}
	cputimeColumn = schema.Column{Title: "cputime"}
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	prev := contract.SetLogger(zap.New(core))
	t.Cleanup(func() { contract.SetLogger(prev) })
	return logs
}

func taskID(name string) schema.TaskID {
	return schema.TaskID{Name: name, Properties: "unreach-call"}
}

func taskIDs(names ...string) []schema.TaskID {
	ids := make([]schema.TaskID, len(names))
	for i, n := range names {
		ids[i] = taskID(n)
	}
	return ids
}

// newResult builds a result with a status column followed by the given values.
func newResult(name, status string, category schema.Category, score int, values ...string) *schema.RunResult {
	columns := []schema.Column{statusColumn}
	all := []string{status}
	for range values {
		columns = append(columns, cputimeColumn)
	}
	all = append(all, values...)
	return &schema.RunResult{
		TaskID:   taskID(name),
		Status:   status,
		Category: category,
		Score:    score,
		Columns:  columns,
		Values:   all,
	}
}

func newRunSet(name string, results ...*schema.RunResult) *loader.RunSetResult {
	columns := []schema.Column{statusColumn}
	if len(results) > 0 {
		columns = results[0].Columns
	}
	rs := loader.NewRunSetResult(columns)
	rs.Attributes["name"] = []string{name}
	rs.Results = results
	return rs
}

func statuses(rs *loader.RunSetResult) []string {
	out := make([]string, len(rs.Results))
	for i, r := range rs.Results {
		if r.Placeholder {
			out[i] = "<missing>"
			continue
		}
		out[i] = r.Status
	}
	return out
}

func rowsOf(t *testing.T, runSets ...*loader.RunSetResult) []*Row {
	t.Helper()
	rows, err := GetRows(runSets)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	return rows
}

func messages(logs *observer.ObservedLogs, level zapcore.Level) []string {
	var out []string
	for _, e := range logs.FilterLevelExact(level).All() {
		out = append(out, e.Message)
	}
	return out
}

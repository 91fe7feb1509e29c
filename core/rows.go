package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/benchtable/core/loader"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
)

// Row holds the results of one task across all run-sets.
type Row struct {
	ID        schema.TaskID
	Results   []*schema.RunResult
	ShortName string
	FilePath  string
}

// Filename returns the task name.
func (r *Row) Filename() string {
	return r.ID.Name
}

// Properties returns the properties of the task.
func (r *Row) Properties() []string {
	return r.ID.PropertyList()
}

// GetRows transposes aligned run-sets into rows. All run-sets must hold the
// same tasks in the same order.
func GetRows(runSets []*loader.RunSetResult) ([]*Row, error) {
	if len(runSets) == 0 {
		return nil, nil
	}
	n := len(runSets[0].Results)
	for _, rs := range runSets[1:] {
		if len(rs.Results) != n {
			return nil, fmt.Errorf("run-sets are not aligned: %d vs %d results", n, len(rs.Results))
		}
	}

	rows := make([]*Row, 0, n)
	for i := 0; i < n; i++ {
		results := make([]*schema.RunResult, len(runSets))
		for j, rs := range runSets {
			results[j] = rs.Results[i]
			if results[j].TaskID != results[0].TaskID {
				return nil, fmt.Errorf("not all results are for same task: '%s' vs '%s'",
					results[0].TaskID.Name, results[j].TaskID.Name)
			}
		}
		rows = append(rows, &Row{ID: results[0].TaskID, Results: results})
	}
	return rows, nil
}

// CommonPrefix returns the directory prefix shared by all task names,
// including the trailing slash.
func CommonPrefix(rows []*Row) string {
	if len(rows) == 0 {
		return ""
	}
	prefix := rows[0].Filename()
	for _, row := range rows[1:] {
		name := row.Filename()
		i := 0
		for i < len(prefix) && i < len(name) && prefix[i] == name[i] {
			i++
		}
		prefix = prefix[:i]
	}
	return prefix[:strings.LastIndex(prefix, "/")+1]
}

// SetRelativePaths fills the display paths of every row: the short name
// drops the common prefix, the file path is relative to baseDir unless the
// task name is absolute.
func SetRelativePaths(rows []*Row, commonPrefix, baseDir string) {
	for _, row := range rows {
		name := row.Filename()
		row.ShortName = strings.Replace(name, commonPrefix, "", 1)
		row.FilePath = relativePath(name, baseDir)
	}
}

func relativePath(name, baseDir string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if rel, err := filepath.Rel(baseDir, name); err == nil {
		return rel
	}
	absName, err1 := filepath.Abs(name)
	absBase, err2 := filepath.Abs(baseDir)
	if err1 != nil || err2 != nil {
		return name
	}
	if rel, err := filepath.Rel(absBase, absName); err == nil {
		return rel
	}
	return name
}

// SelectRelevantIDColumns reports for each part of the task identity whether
// it is worth displaying. The file name always is; the other parts only when
// they differ between rows.
func SelectRelevantIDColumns(rows []*Row) []bool {
	relevant := []bool{true}
	if len(rows) == 0 {
		return relevant
	}
	prototype := rows[0].ID
	for part := 1; part < schema.TaskIDParts; part++ {
		differs := false
		for _, row := range rows {
			if row.ID.Part(part) != prototype.Part(part) {
				differs = true
				break
			}
		}
		relevant = append(relevant, differs)
	}
	return relevant
}

// FilterRowsWithDifferences returns the rows whose run-sets disagree on the
// status. It returns nothing for single run-set tables and when every row differs.
func FilterRowsWithDifferences(rows []*Row) []*Row {
	if len(rows) == 0 || len(rows[0].Results) == 1 {
		return nil
	}

	var diff []*Row
	for _, row := range rows {
		if !allEqualStatus(row.Results) {
			diff = append(diff, row)
		}
	}

	log := contract.Logger()
	switch len(diff) {
	case 0:
		log.Info("---> NO DIFFERENCE FOUND IN COLUMN 'STATUS'")
	case len(rows):
		log.Info("---> DIFFERENCES FOUND IN ALL ROWS, NO NEED TO CREATE DIFFERENCE TABLE")
		return nil
	}
	return diff
}

func allEqualStatus(results []*schema.RunResult) bool {
	statuses := make(map[string]struct{})
	for _, r := range results {
		if r.HasStatus() {
			statuses[r.Status] = struct{}{}
		}
	}
	return len(statuses) <= 1
}

package schema

import "strings"

// TaskID identifies a task within a run-set. Equality is structural.
type TaskID struct {
	Name       string `json:"name" yaml:"name"`
	Properties string `json:"properties,omitempty" yaml:"properties,omitempty"`
	RunSet     string `json:"runset,omitempty" yaml:"runset,omitempty"`
}

// Part returns the i-th component of the identity (0 name, 1 properties, 2 run-set).
func (id TaskID) Part(i int) string {
	switch i {
	case 0:
		return id.Name
	case 1:
		return id.Properties
	default:
		return id.RunSet
	}
}

// TaskIDParts is the number of components of a TaskID.
const TaskIDParts = 3

// PropertyList returns the whitespace-separated properties.
func (id TaskID) PropertyList() []string {
	return strings.Fields(id.Properties)
}

// Column describes how to obtain a value, never the value itself.
type Column struct {
	Title          string `json:"title" yaml:"title"`
	Pattern        string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	NumberOfDigits *int   `json:"numberOfDigits,omitempty" yaml:"numberOfDigits,omitempty"`
}

// ColumnTitles returns the titles of the given columns.
func ColumnTitles(columns []Column) []string {
	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = c.Title
	}
	return titles
}

// RunResult is one task's outcome within one run-set. Values are parallel to
// Columns; an empty string means the value is unset.
type RunResult struct {
	TaskID   TaskID
	Status   string
	Category Category
	Score    int
	LogFile  string
	Columns  []Column
	Values   []string

	// Placeholder marks a synthetic result for a task the run-set does not contain.
	// Its status is absent rather than empty.
	Placeholder bool
}

// NewPlaceholderResult returns the synthetic MISSING result used during alignment.
func NewPlaceholderResult(id TaskID, columns []Column) *RunResult {
	return &RunResult{
		TaskID:      id,
		Category:    CategoryMissing,
		Columns:     columns,
		Values:      make([]string, len(columns)),
		Placeholder: true,
	}
}

// HasStatus reports whether the result carries a non-empty status.
func (r *RunResult) HasStatus() bool {
	return !r.Placeholder && r.Status != ""
}

// SameStatus reports whether two results have the same status, treating an
// absent status as different from an empty one.
func (r *RunResult) SameStatus(other *RunResult) bool {
	return r.Placeholder == other.Placeholder && r.Status == other.Status
}

package loader

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/benchtable/core/extract"
	"github.com/huangsam/benchtable/core/units"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
)

// RunSetResult holds all results of one execution of a run-set. It collects
// raw run elements until CollectData turns them into RunResults.
type RunSetResult struct {
	Attributes map[string][]string
	Columns    []schema.Column
	Summary    map[string]string
	Results    []*schema.RunResult

	raw       []*schema.Element
	collected bool
}

// NewRunSetResult creates an empty run-set with the given columns.
func NewRunSetResult(columns []schema.Column) *RunSetResult {
	return &RunSetResult{
		Attributes: make(map[string][]string),
		Columns:    columns,
		Summary:    make(map[string]string),
	}
}

// RunSetFromXML creates a run-set from the root element of a result file.
// Without explicit columns, every column seen in the file is used.
func RunSetFromXML(resultFile string, root *schema.Element, columns []schema.Column, allColumns bool) *RunSetResult {
	if len(columns) == 0 {
		columns = existingColumns(resultFile, root, allColumns)
	}
	return &RunSetResult{
		Attributes: extractAttributes(resultFile, root),
		Columns:    columns,
		Summary:    extractSummary(root, columns),
		raw:        runElements(root),
	}
}

// Append adds the runs and attributes of another result file. It must be
// called before CollectData.
func (r *RunSetResult) Append(resultFile string, root *schema.Element, allColumns bool) {
	r.raw = append(r.raw, runElements(root)...)
	for key, values := range extractAttributes(resultFile, root) {
		r.Attributes[key] = append(r.Attributes[key], values...)
	}
	if len(r.Columns) == 0 {
		r.Columns = existingColumns(resultFile, root, allColumns)
	}
}

// RawCount returns the number of runs not yet collected.
func (r *RunSetResult) RawCount() int {
	return len(r.raw)
}

// CollectData builds the RunResults from the collected runs, reading log
// files where needed, and releases the raw runs. It may only run once.
func (r *RunSetResult) CollectData(registry *extract.Registry, correctOnly bool) error {
	if r.collected {
		return errors.New("run-set data has already been collected")
	}
	extractor := extract.Unavailable
	if hasPatternColumn(r.Columns) {
		extractor = registry.Load(r.Attribute("toolmodule"), units.PrettyList(r.Attributes["name"]))
	}

	r.Results = make([]*schema.RunResult, 0, len(r.raw))
	for _, run := range r.raw {
		r.Results = append(r.Results, extract.NewRunResult(run, extractor, r.Columns, correctOnly))
	}
	r.raw = nil
	r.collected = true
	return nil
}

func hasPatternColumn(columns []schema.Column) bool {
	for _, c := range columns {
		if c.Pattern != "" {
			return true
		}
	}
	return false
}

// Tasks returns the task identities of all results, in order.
func (r *RunSetResult) Tasks() []schema.TaskID {
	ids := make([]schema.TaskID, len(r.Results))
	for i, res := range r.Results {
		ids[i] = res.TaskID
	}
	return ids
}

// Attribute returns the first value of an attribute, or "".
func (r *RunSetResult) Attribute(key string) string {
	if values := r.Attributes[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// HasAttribute reports whether the attribute was recorded.
func (r *RunSetResult) HasAttribute(key string) bool {
	_, ok := r.Attributes[key]
	return ok
}

// Name returns the display name of the run-set.
func (r *RunSetResult) Name() string {
	return units.PrettyList(r.Attributes["name"])
}

// ToolModule returns the tool module recorded in the result file.
func (r *RunSetResult) ToolModule() string {
	return r.Attribute("toolmodule")
}

func runElements(root *schema.Element) []*schema.Element {
	return append(root.Children("run"), root.Children("sourcefile")...)
}

func existingColumns(resultFile string, root *schema.Element, allColumns bool) []schema.Column {
	runs := runElements(root)
	if len(runs) == 0 {
		contract.Logger().Sugar().Warnf("Result file '%s' is empty.", resultFile)
		return nil
	}

	seen := make(map[string]struct{})
	var columns []schema.Column
	for _, run := range runs {
		for _, c := range run.Children("column") {
			title := c.AttrOr("title", "")
			if _, ok := seen[title]; ok {
				continue
			}
			if !allColumns && c.AttrOr("hidden", "") == "true" {
				continue
			}
			seen[title] = struct{}{}
			columns = append(columns, schema.Column{Title: title})
		}
	}
	return columns
}

func extractAttributes(resultFile string, root *schema.Element) map[string][]string {
	attrs := make(map[string][]string)

	attrs["name"] = []string{root.AttrOr("benchmarkname", "")}
	branch := ""
	if strings.Contains(resultFile, "#") {
		branch = strings.SplitN(filepath.Base(resultFile), "#", 2)[0]
	}
	attrs["branch"] = []string{branch}

	for _, a := range root.Attrs() {
		attrs[a.Name] = []string{a.Value}
	}

	systems := root.Children("systeminfo")
	sort.SliceStable(systems, func(i, j int) bool {
		return systems[i].AttrOr("hostname", "unknown") < systems[j].AttrOr("hostname", "unknown")
	})
	for _, sys := range systems {
		cpu := childOrEmpty(sys, "cpu")
		attrs["os"] = append(attrs["os"], childOrEmpty(sys, "os").AttrOr("name", ""))
		attrs["cpu"] = append(attrs["cpu"], cpu.AttrOr("model", ""))
		attrs["cores"] = append(attrs["cores"], cpu.AttrOr("cores", ""))
		attrs["freq"] = append(attrs["freq"], cpu.AttrOr("frequency", ""))
		attrs["turbo"] = append(attrs["turbo"], cpu.AttrOr("turboboostActive", ""))
		attrs["ram"] = append(attrs["ram"], childOrEmpty(sys, "ram").AttrOr("size", ""))
		attrs["host"] = append(attrs["host"], sys.AttrOr("hostname", "unknown"))
	}
	return attrs
}

var emptyElement = schema.NewElement("", nil, "")

func childOrEmpty(e *schema.Element, name string) *schema.Element {
	if c := e.Child(name); c != nil {
		return c
	}
	return emptyElement
}

func extractSummary(root *schema.Element, columns []schema.Column) map[string]string {
	titles := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		titles[c.Title] = struct{}{}
	}
	summary := make(map[string]string)
	for _, c := range root.Children("column") {
		title := c.AttrOr("title", "")
		if _, ok := titles[title]; ok {
			summary[title] = c.AttrOr("value", "")
		}
	}
	return summary
}

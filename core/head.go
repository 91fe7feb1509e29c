package core

import (
	"regexp"
	"strings"

	"github.com/huangsam/benchtable/core/loader"
	"github.com/huangsam/benchtable/core/units"
	"github.com/huangsam/benchtable/schema"
)

// unknownAttribute is shown for run-sets lacking an optional attribute.
const unknownAttribute = "Unknown"

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// headRowSpec describes one line of the table head.
type headRowSpec struct {
	name     string
	format   string
	collapse bool
	onlyIf   string
	fallback string
}

// displayAttributes reduces the multi-valued attributes of a run-set to the
// strings shown in the head.
func displayAttributes(rs *loader.RunSetResult) map[string]string {
	out := make(map[string]string, len(rs.Attributes))
	for key, values := range rs.Attributes {
		if key == "turbo" {
			out[key] = turboLabel(values)
			continue
		}
		out[key] = units.PrettyList(values)
	}
	return out
}

func turboLabel(values []string) string {
	unique := make(map[string]struct{})
	for _, v := range values {
		unique[v] = struct{}{}
	}
	var state string
	switch {
	case len(unique) > 1:
		state = "mixed"
	case len(values) > 0 && values[0] == "true":
		state = "enabled"
	case len(values) > 0 && values[0] == "false":
		state = "disabled"
	default:
		return ""
	}
	return ", Turbo Boost " + state
}

// formatAttributes substitutes {key} placeholders. Unknown keys render empty.
func formatAttributes(format string, attrs map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(format, func(m string) string {
		return attrs[m[1:len(m)-1]]
	})
}

// GetTableHead builds the head rows of a table. Rows without any value are
// left out; the column-title row always comes last.
func GetTableHead(runSets []*loader.RunSetResult, commonPrefix string) []schema.HeadRow {
	widths := make([]int, len(runSets))
	attrs := make([]map[string]string, len(runSets))
	for i, rs := range runSets {
		widths[i] = len(rs.Columns)
		attrs[i] = displayAttributes(rs)
	}

	runSetFormat := "{benchmarkname}.{name}"
	if allBenchmarkNamesEqual(attrs) {
		runSetFormat = "{name}"
	}

	specs := []headRowSpec{
		{name: "Tool", format: "{tool} {version}", collapse: true},
		{name: "Limits", format: "timelimit: {timelimit}, memlimit: {memlimit}, CPU core limit: {cpuCores}", collapse: true},
		{name: "Host", format: "{host}", collapse: true, onlyIf: "host", fallback: unknownAttribute},
		{name: "OS", format: "{os}", collapse: true, onlyIf: "os", fallback: unknownAttribute},
		{name: "System", format: "CPU: {cpu} with {cores} cores, frequency: {freq}{turbo}; RAM: {ram}", collapse: true, onlyIf: "cpu", fallback: unknownAttribute},
		{name: "Date of execution", format: "{date}", collapse: true},
		{name: "Run set", format: runSetFormat},
		{name: "Branch", format: "{branch}"},
		{name: "Options", format: "{options}"},
		{name: "Propertyfile", format: "{propertyfiles}", collapse: true, onlyIf: "propertyfiles", fallback: ""},
	}

	var head []schema.HeadRow
	for _, spec := range specs {
		if row, ok := headRow(spec, attrs, widths); ok {
			head = append(head, row)
		}
	}

	titleRow := schema.HeadRow{ID: "columnTitles", Name: commonPrefix}
	for _, rs := range runSets {
		for _, c := range rs.Columns {
			titleRow.Content = append(titleRow.Content, schema.HeadCell{Value: c.Title, Width: 1})
		}
	}
	return append(head, titleRow)
}

func headRow(spec headRowSpec, attrs []map[string]string, widths []int) (schema.HeadRow, bool) {
	values := make([]string, len(attrs))
	anyValue := false
	for i, a := range attrs {
		format := spec.format
		if spec.onlyIf != "" {
			if _, ok := a[spec.onlyIf]; !ok {
				format = spec.fallback
			}
		}
		values[i] = formatAttributes(format, a)
		if values[i] != "" {
			anyValue = true
		}
	}
	if !anyValue {
		return schema.HeadRow{}, false
	}

	counts := widths
	if spec.collapse {
		values, counts = units.CollapseEqualValues(values, widths)
	}
	row := schema.HeadRow{
		ID:   strings.ToLower(strings.SplitN(spec.name, " ", 2)[0]),
		Name: spec.name,
	}
	for i, v := range values {
		row.Content = append(row.Content, schema.HeadCell{Value: v, Width: counts[i]})
	}
	return row, true
}

func allBenchmarkNamesEqual(attrs []map[string]string) bool {
	if len(attrs) == 0 {
		return true
	}
	first := attrs[0]["benchmarkname"]
	sameAsFirst, sameAsName := true, true
	for _, a := range attrs {
		if a["benchmarkname"] != first {
			sameAsFirst = false
		}
		if a["benchmarkname"] != a["name"] {
			sameAsName = false
		}
	}
	return sameAsFirst || sameAsName
}

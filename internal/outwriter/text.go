package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// valueColumnWidth is the space reserved for one value column, borders included.
const valueColumnWidth = 12

// writeTextTable renders the table for terminals: head rows first, then one
// row per task with statuses colored by category, then the statistics.
func writeTextTable(w io.Writer, table *schema.Table, cfg *contract.Config) error {
	if _, err := fmt.Fprintln(w, table.Title); err != nil {
		return err
	}

	idColumns := max(table.IDColumnCount(), 1)
	pathWidth := GetMaxTablePathWidth(cfg, table.ColumnCount())
	title := cases.Title(language.English)

	tbl := tablewriter.NewWriter(w)
	tbl.Header(textHeader(table, idColumns))
	tbl.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.PerColumn = textAlignment(idColumns, table.ColumnCount())
	})

	var data [][]string
	for _, head := range table.Head {
		if head.ID == "columnTitles" {
			continue
		}
		row := padded([]string{paint(contract.HeaderColor, head.Name, cfg.UseColors)}, idColumns)
		data = append(data, append(row, expandHeadCells(head.Content)...))
	}

	for _, row := range table.Rows {
		cells := idCells(row, table.RelevantIDColumns)
		cells[0] = contract.TruncatePath(cells[0], pathWidth)
		for i, result := range row.Results {
			columns := table.RunSets[i].Columns
			for j, value := range result.Values {
				if j < len(columns) && strings.EqualFold(columns[j].Title, "status") {
					value = statusCell(result, value, cfg.UseColors)
				}
				cells = append(cells, value)
			}
		}
		data = append(data, cells)
	}

	for _, stat := range table.Stats {
		label := strings.Repeat("  ", stat.Indent) + title.String(stat.Title)
		row := padded([]string{paint(contract.HeaderColor, label, cfg.UseColors)}, idColumns)
		for _, value := range stat.Content {
			row = append(row, value.String())
		}
		data = append(data, row)
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	return tbl.Render()
}

// textHeader returns the column titles prefixed by the displayed identity parts.
func textHeader(table *schema.Table, idColumns int) []string {
	headers := []string{"Task"}
	names := []string{"", "Properties", "Run set"}
	for i := 1; i < len(table.RelevantIDColumns) && i < len(names); i++ {
		if table.RelevantIDColumns[i] {
			headers = append(headers, names[i])
		}
	}
	headers = padded(headers, idColumns)
	for _, rs := range table.RunSets {
		headers = append(headers, schema.ColumnTitles(rs.Columns)...)
	}
	return headers
}

// textAlignment left-aligns identity columns and right-aligns values.
func textAlignment(idColumns, valueColumns int) []tw.Align {
	align := make([]tw.Align, 0, idColumns+valueColumns)
	for range idColumns {
		align = append(align, tw.AlignLeft)
	}
	for range valueColumns {
		align = append(align, tw.AlignRight)
	}
	return align
}

// statusCell colors a status by its category. Statuses of tasks a run-set
// did not contain show the category instead.
func statusCell(result schema.TableResult, value string, useColors bool) string {
	if result.Category == schema.CategoryMissing && result.Status == "" {
		value = cases.Title(language.English).String(string(result.Category))
	}
	return paint(contract.CategoryColor(result.Category), value, useColors)
}

func paint(c *color.Color, s string, useColors bool) string {
	if !useColors {
		return s
	}
	return c.Sprint(s)
}

func padded(cells []string, n int) []string {
	for len(cells) < n {
		cells = append(cells, "")
	}
	return cells
}

// GetMaxTablePathWidth calculates the maximum width for task names in table output
// based on terminal width and the number of value columns.
func GetMaxTablePathWidth(cfg *contract.Config, valueColumns int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for value columns, borders and padding
	baseWidth := valueColumns*valueColumnWidth + 20

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

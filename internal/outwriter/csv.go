package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/benchtable/core/units"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
)

// writeCSVTable writes the head rows, the column titles and one line per task,
// separated by tabs. Values are written without their unit.
func writeCSVTable(w io.Writer, table *schema.Table, _ *contract.Config) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = '\t'
	idColumns := max(table.IDColumnCount(), 1)

	for _, head := range table.Head {
		record := append([]string{head.Name}, make([]string, idColumns-1)...)
		record = append(record, expandHeadCells(head.Content)...)
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, row := range table.Rows {
		record := idCells(row, table.RelevantIDColumns)
		for _, result := range row.Results {
			for _, raw := range result.Raw {
				record = append(record, units.RemoveUnit(raw))
			}
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// expandHeadCells repeats every head cell once per column it spans.
func expandHeadCells(cells []schema.HeadCell) []string {
	var out []string
	for _, cell := range cells {
		for range cell.Width {
			out = append(out, cell.Value)
		}
	}
	return out
}

// idCells returns the displayed identity of a row. The task name is always
// shown, properties and run-set only when relevant.
func idCells(row schema.TableRow, relevant []bool) []string {
	cells := []string{row.ShortName}
	for i := 1; i < schema.TaskIDParts; i++ {
		if i < len(relevant) && relevant[i] {
			cells = append(cells, row.ID.Part(i))
		}
	}
	return cells
}

package history

import (
	"fmt"
	"io"
	"slices"

	"github.com/huangsam/benchtable/schema"
)

// PrintHistoryStatus prints history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Generations: %d\n", status.TotalGenerations)
	if status.TotalGenerations > 0 {
		_, _ = fmt.Fprintf(w, "Last Generation ID: %s\n", status.LastGenerationID)
		_, _ = fmt.Fprintf(w, "Last Generation: %s\n", status.LastGenerationTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Oldest Generation: %s\n", status.OldestGenerationTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Total Rows Tabulated: %d\n", status.TotalRowsTabulated)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

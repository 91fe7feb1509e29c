package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/internal/parquet"
	"github.com/huangsam/benchtable/schema"
	"gopkg.in/yaml.v3"
)

// writeYAMLTable writes the table document as YAML.
func writeYAMLTable(w io.Writer, table *schema.Table, _ *contract.Config) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(table); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// writeParquetTable writes one record per task, run-set and column.
func writeParquetTable(w io.Writer, table *schema.Table, _ *contract.Config) error {
	return parquet.WriteTableCells(w, parquet.ConvertTable(table))
}

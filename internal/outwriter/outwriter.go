// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OutputFileFunc maps a table type and a file extension to the destination
// of a table, or "-" for stdout.
type OutputFileFunc func(tableType schema.TableType, ext string) string

// renderFunc writes one table in one format.
type renderFunc func(w io.Writer, table *schema.Table, cfg *contract.Config) error

// formats binds every output mode to its file extension and renderer.
var formats = map[schema.OutputMode]struct {
	ext    string
	render renderFunc
}{
	schema.HTMLOut:    {ext: "html", render: writeHTMLTable},
	schema.CSVOut:     {ext: "csv", render: writeCSVTable},
	schema.TextOut:    {ext: "txt", render: writeTextTable},
	schema.JSONOut:    {ext: "json", render: writeJSONTable},
	schema.YAMLOut:    {ext: "yaml", render: writeYAMLTable},
	schema.ParquetOut: {ext: "parquet", render: writeParquetTable},
}

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteTables writes every table in every configured format.
func (ow *OutWriter) WriteTables(tables []*schema.Table, cfg *contract.Config, outputFile OutputFileFunc) error {
	for _, table := range tables {
		for _, mode := range cfg.Formats {
			format, ok := formats[mode]
			if !ok {
				return fmt.Errorf("unsupported output format '%s'", mode)
			}
			if err := ow.WriteTable(table, mode, cfg, outputFile(table.Type, format.ext)); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteTable writes one table in one format to outputFile.
func (ow *OutWriter) WriteTable(table *schema.Table, mode schema.OutputMode, cfg *contract.Config, outputFile string) error {
	format, ok := formats[mode]
	if !ok {
		return fmt.Errorf("unsupported output format '%s'", mode)
	}
	label := cases.Upper(language.English).String(string(mode))
	if outputFile == contract.StdoutPath {
		contract.Logger().Sugar().Infof("Writing %-4s to stdout...", label)
	} else {
		contract.Logger().Sugar().Infof("Writing %-4s into %s ...", label, outputFile)
	}
	err := writeWithFile(outputFile, func(w io.Writer) error {
		return format.render(w, table, cfg)
	})
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", label, err)
	}
	return nil
}

// Extension returns the file extension of an output mode.
func Extension(mode schema.OutputMode) string {
	return formats[mode].ext
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}
	return writer(file)
}

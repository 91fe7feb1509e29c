package outwriter

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const tableSchemaName = "table.schema.json"

//go:embed schemas/table.schema.json
var schemaFS embed.FS

var (
	tableSchema *jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

// compileTableSchema compiles the embedded table schema once.
func compileTableSchema() error {
	compileOnce.Do(func() {
		data, err := schemaFS.ReadFile("schemas/" + tableSchemaName)
		if err != nil {
			compileErr = fmt.Errorf("read table schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal table schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(tableSchemaName, doc); err != nil {
			compileErr = fmt.Errorf("add table schema resource: %w", err)
			return
		}
		tableSchema, err = compiler.Compile(tableSchemaName)
		if err != nil {
			compileErr = fmt.Errorf("compile table schema: %w", err)
		}
	})
	return compileErr
}

// ValidateTableJSON validates an encoded table document against the table schema.
func ValidateTableJSON(data []byte) error {
	if err := compileTableSchema(); err != nil {
		return err
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := tableSchema.Validate(v); err != nil {
		return fmt.Errorf("table validation failed: %w", err)
	}
	return nil
}

// writeJSONTable writes the table document after checking it against the schema.
func writeJSONTable(w io.Writer, table *schema.Table, _ *contract.Config) error {
	var buf bytes.Buffer
	if err := writeJSON(&buf, table); err != nil {
		return err
	}
	if err := ValidateTableJSON(buf.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/internal/parquet"
	"github.com/huangsam/benchtable/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

func sampleTable() *schema.Table {
	return &schema.Table{
		Name:  "results.2024-05-06_0708",
		Type:  schema.FullTable,
		Title: "results.2024-05-06_0708",
		Head: []schema.HeadRow{
			{ID: "tool", Name: "Tool", Content: []schema.HeadCell{{Value: "CPAchecker 1.0", Width: 3}}},
			{ID: "columnTitles", Name: "sv/", Content: []schema.HeadCell{
				{Value: "status", Width: 1}, {Value: "cputime", Width: 1}, {Value: "status", Width: 1},
			}},
		},
		RunSets: []schema.RunSetInfo{
			{Name: "bench.default", Columns: []schema.Column{{Title: "status"}, {Title: "cputime"}}},
			{Name: "bench.predicate", Columns: []schema.Column{{Title: "status"}}},
		},
		RelevantIDColumns: []bool{true, false, false},
		Rows: []schema.TableRow{
			{
				ID:        schema.TaskID{Name: "sv/a.c", Properties: "unreach-call"},
				ShortName: "a.c",
				FilePath:  "sv/a.c",
				Results: []schema.TableResult{
					{Status: "true", Category: schema.CategoryCorrect, Score: 2, LogFile: "logs/a.c.log",
						Values: []string{"true", "1.500s"}, Raw: []string{"true", "1.5s"}},
					{Status: "false", Category: schema.CategoryWrong, Score: -32,
						Values: []string{"false"}, Raw: []string{"false"}},
				},
			},
			{
				ID:        schema.TaskID{Name: "sv/b.c", Properties: "unreach-call"},
				ShortName: "b.c",
				FilePath:  "sv/b.c",
				Results: []schema.TableResult{
					{Status: "TIMEOUT", Category: schema.CategoryError,
						Values: []string{"TIMEOUT", "900.100s"}, Raw: []string{"TIMEOUT", "900.1s"}},
					{Category: schema.CategoryMissing, Values: []string{"-"}, Raw: []string{""}},
				},
			},
		},
		Stats: []schema.StatsRow{
			{ID: "total", Title: "total tasks", Content: []*schema.StatValue{
				schema.NewCountStat(2), nil, schema.NewCountStat(2),
			}},
		},
	}
}

func baseConfig(formats ...schema.OutputMode) *contract.Config {
	return &contract.Config{Formats: formats, Width: 120}
}

func TestWriteTablesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(schema.HTMLOut, schema.CSVOut, schema.TextOut, schema.JSONOut, schema.YAMLOut, schema.ParquetOut)
	diff := sampleTable()
	diff.Type = schema.DiffTable

	outputFile := func(tableType schema.TableType, ext string) string {
		return filepath.Join(dir, "out."+string(tableType)+"."+ext)
	}
	err := NewOutWriter().WriteTables([]*schema.Table{sampleTable(), diff}, cfg, outputFile)
	require.NoError(t, err)

	for _, tableType := range []string{"table", "diff"} {
		for _, ext := range []string{"html", "csv", "txt", "json", "yaml", "parquet"} {
			info, err := os.Stat(filepath.Join(dir, "out."+tableType+"."+ext))
			require.NoError(t, err, "%s.%s", tableType, ext)
			assert.Positive(t, info.Size(), "%s.%s", tableType, ext)
		}
	}
}

func TestWriteTableLogsProgress(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := contract.SetLogger(zap.New(core))
	t.Cleanup(func() { contract.SetLogger(prev) })

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, NewOutWriter().WriteTable(sampleTable(), schema.CSVOut, baseConfig(), path))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Writing CSV  into "+path+" ...", entries[0].Message)
}

func TestWriteTableUnsupportedFormat(t *testing.T) {
	err := NewOutWriter().WriteTable(sampleTable(), schema.OutputMode("pdf"), baseConfig(), filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format 'pdf'")
}

func TestWriteTableCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")
	require.NoError(t, NewOutWriter().WriteTable(sampleTable(), schema.CSVOut, baseConfig(), path))
	assert.FileExists(t, path)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "html", Extension(schema.HTMLOut))
	assert.Equal(t, "csv", Extension(schema.CSVOut))
	assert.Equal(t, "txt", Extension(schema.TextOut))
	assert.Equal(t, "json", Extension(schema.JSONOut))
	assert.Equal(t, "yaml", Extension(schema.YAMLOut))
	assert.Equal(t, "parquet", Extension(schema.ParquetOut))
}

func TestWriteCSVTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVTable(&buf, sampleTable(), baseConfig()))

	expected := "Tool\tCPAchecker 1.0\tCPAchecker 1.0\tCPAchecker 1.0\n" +
		"sv/\tstatus\tcputime\tstatus\n" +
		"a.c\ttrue\t1.5\tfalse\n" +
		"b.c\tTIMEOUT\t900.1\t\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteCSVTableRelevantIDColumns(t *testing.T) {
	table := sampleTable()
	table.RelevantIDColumns = []bool{true, true, false}
	table.Rows[1].ID.Properties = "valid-memsafety"

	var buf bytes.Buffer
	require.NoError(t, writeCSVTable(&buf, table, baseConfig()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Tool\t\tCPAchecker 1.0\tCPAchecker 1.0\tCPAchecker 1.0", lines[0])
	assert.Equal(t, "a.c\tunreach-call\ttrue\t1.5\tfalse", lines[2])
	assert.Equal(t, "b.c\tvalid-memsafety\tTIMEOUT\t900.1\t", lines[3])
}

func TestWriteHTMLTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHTMLTable(&buf, sampleTable(), baseConfig()))
	out := buf.String()

	assert.Contains(t, out, "<title>results.2024-05-06_0708</title>")
	assert.Contains(t, out, `<td class="status correct"><a href="logs/a.c.log">true</a></td>`)
	assert.Contains(t, out, `<td class="status wrong">false</td>`)
	assert.Contains(t, out, `<th colspan="3">CPAchecker 1.0</th>`)
	assert.Contains(t, out, `<td>900.100s</td>`)
	assert.Contains(t, out, `title="sv/a.c"`)
	assert.Contains(t, out, `<tr id="total">`)
	assert.Contains(t, out, onlineLibURL)
	assert.NotContains(t, out, offlineLibURL)
}

func TestWriteHTMLTableOffline(t *testing.T) {
	cfg := baseConfig()
	cfg.Offline = true

	var buf bytes.Buffer
	require.NoError(t, writeHTMLTable(&buf, sampleTable(), cfg))
	assert.Contains(t, buf.String(), offlineLibURL+"/npm/")
	assert.NotContains(t, buf.String(), onlineLibURL)
}

func TestWriteHTMLTableEscapes(t *testing.T) {
	table := sampleTable()
	table.Rows[0].ShortName = "<script>.c"

	var buf bytes.Buffer
	require.NoError(t, writeHTMLTable(&buf, table, baseConfig()))
	assert.NotContains(t, buf.String(), "<script>.c")
	assert.Contains(t, buf.String(), "&lt;script&gt;.c")
}

func TestWriteJSONTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONTable(&buf, sampleTable(), baseConfig()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "results.2024-05-06_0708", decoded["name"])
	assert.Equal(t, "table", decoded["type"])

	rows, ok := decoded["rows"].([]any)
	require.True(t, ok)
	assert.Len(t, rows, 2)

	stats := decoded["stats"].([]any)
	content := stats[0].(map[string]any)["content"].([]any)
	assert.Equal(t, "2", content[0].(map[string]any)["sum"])
	assert.Nil(t, content[1])
}

func TestValidateTableJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleTable()))
	require.NoError(t, ValidateTableJSON(buf.Bytes()))

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"missing fields", `{"name": "x"}`},
		{"wrong type", `{"name": 1, "type": "table", "title": "", "head": [], "runsets": [], "relevant_id_columns": [], "rows": [], "stats": []}`},
		{"unknown table type", `{"name": "x", "type": "chart", "title": "", "head": [], "runsets": [], "relevant_id_columns": [], "rows": [], "stats": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateTableJSON([]byte(tt.data)))
		})
	}
}

func TestWriteYAMLTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeYAMLTable(&buf, sampleTable(), baseConfig()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "results.2024-05-06_0708", decoded["name"])
	assert.Contains(t, buf.String(), "short_name: a.c")
	assert.Contains(t, buf.String(), "sum: \"2\"")
}

func TestWriteParquetTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeParquetTable(&buf, sampleTable(), baseConfig()))

	reader := pq.NewGenericReader[parquet.TableCell](bytes.NewReader(buf.Bytes()))
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(6), reader.NumRows())
}

func TestWriteTextTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTextTable(&buf, sampleTable(), baseConfig()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "results.2024-05-06_0708\n"))
	assert.Contains(t, out, "CPAchecker 1.0")
	assert.Contains(t, out, "a.c")
	assert.Contains(t, out, "TIMEOUT")
	assert.Contains(t, out, "Missing")
	assert.Contains(t, out, "Total Tasks")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteTextTableTruncatesNames(t *testing.T) {
	table := sampleTable()
	table.Rows[0].ShortName = strings.Repeat("x", 40) + "/long-task-name.c"
	cfg := baseConfig()
	cfg.Width = 40

	var buf bytes.Buffer
	require.NoError(t, writeTextTable(&buf, table, cfg))
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), table.Rows[0].ShortName)
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		columns  int
		expected int
	}{
		{"wide terminal clamps to maximum", 200, 2, 70},
		{"narrow terminal clamps to minimum", 50, 2, 15},
		{"fits in between", 100, 2, 56},
		{"many columns", 120, 10, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, GetMaxTablePathWidth(cfg, tt.columns))
		})
	}
}

func TestIDCells(t *testing.T) {
	row := schema.TableRow{
		ID:        schema.TaskID{Name: "sv/a.c", Properties: "unreach-call", RunSet: "rs"},
		ShortName: "a.c",
	}
	assert.Equal(t, []string{"a.c"}, idCells(row, []bool{true, false, false}))
	assert.Equal(t, []string{"a.c", "rs"}, idCells(row, []bool{true, false, true}))
	assert.Equal(t, []string{"a.c", "unreach-call", "rs"}, idCells(row, []bool{true, true, true}))
	assert.Equal(t, []string{"a.c"}, idCells(row, nil))
}

func TestExpandHeadCells(t *testing.T) {
	cells := []schema.HeadCell{{Value: "a", Width: 2}, {Value: "b", Width: 1}, {Value: "c", Width: 0}}
	assert.Equal(t, []string{"a", "a", "b"}, expandHeadCells(cells))
}

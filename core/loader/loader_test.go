package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/benchtable/core/extract"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sampleResult = `<?xml version="1.0"?>
<!DOCTYPE result>
<result benchmarkname="test" name="test.default" block="default" tool="CPAchecker" version="1.4" toolmodule="benchexec.tools.cpachecker" timelimit="900 s">
  <systeminfo hostname="zeta">
    <os name="Linux 4.4"/>
    <cpu model="Intel Xeon" cores="8" frequency="3400 MHz" turboboostActive="true"/>
    <ram size="32000 MB"/>
  </systeminfo>
  <systeminfo hostname="alpha">
    <os name="Linux 4.2"/>
    <cpu model="Intel i7" cores="4" frequency="2600 MHz" turboboostActive="false"/>
    <ram size="16000 MB"/>
  </systeminfo>
  <run name="../programs/a_true-unreach-call.c" properties="unreach-call">
    <column title="status" value="true"/>
    <column title="category" value="correct" hidden="true"/>
    <column title="cputime" value="1.5s"/>
  </run>
  <run name="../programs/b_false-unreach-call.c" properties="unreach-call">
    <column title="status" value="TIMEOUT"/>
    <column title="category" value="error" hidden="true"/>
    <column title="cputime" value="900.1s"/>
    <column title="walltime" value="901s"/>
  </run>
  <column title="cputime" value="901.6s"/>
  <column title="host" value="zeta"/>
</result>
`

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	prev := contract.SetLogger(zap.New(core))
	t.Cleanup(func() { contract.SetLogger(prev) })
	return logs
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseXML(t *testing.T) {
	root, err := parseXML(strings.NewReader(`<table><!-- c --><column title="a" numberOfDigits="2">Time:</column><result filename="x.xml"/></table>`))
	require.NoError(t, err)
	assert.Equal(t, "table", root.Name())
	col := root.Child("column")
	require.NotNil(t, col)
	assert.Equal(t, "Time:", col.Text())
	assert.Equal(t, "2", col.AttrOr("numberOfDigits", ""))
	assert.Len(t, root.Children("result"), 1)

	_, err = parseXML(strings.NewReader(`<result><run></result>`))
	assert.Error(t, err)

	_, err = parseXML(strings.NewReader(``))
	assert.Error(t, err)
}

func TestParseResultsFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "test.2015-01-01_1200.results.default.xml"), sampleResult)

	root, err := ParseResultsFile(file, "7")
	require.NoError(t, err)

	runs := root.Children("run")
	require.Len(t, runs, 2)
	assert.Equal(t, "7", runs[0].AttrOr("runset", ""))
	assert.Equal(t, filepath.Join(dir, "test.2015-01-01_1200.logfiles/test.a_true-unreach-call.c.log"), runs[0].AttrOr("logfile", ""))

	root, err = ParseResultsFile(file, "")
	require.NoError(t, err)
	assert.False(t, root.Child("run").HasAttr("runset"))
}

func TestParseResultsFileLatin1(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "latin1.results.xml"),
		"<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<result benchmarkname=\"caf\xe9\"><run name=\"na\xefve.c\"/></result>\n")

	root, err := ParseResultsFile(file, "")
	require.NoError(t, err)
	assert.Equal(t, "café", root.AttrOr("benchmarkname", ""))
	assert.Equal(t, "naïve.c", root.Child("run").AttrOr("name", ""))

	unknown := writeFile(t, filepath.Join(dir, "unknown.results.xml"),
		"<?xml version=\"1.0\" encoding=\"x-no-such-charset\"?>\n<result/>\n")
	_, err = ParseResultsFile(unknown, "")
	assert.ErrorContains(t, err, "is invalid")
}

func TestParseResultsFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseResultsFile(filepath.Join(dir, "missing.xml"), "")
	assert.ErrorContains(t, err, "not found")

	broken := writeFile(t, filepath.Join(dir, "broken.results.xml"), "<result><run>")
	_, err = ParseResultsFile(broken, "")
	assert.ErrorContains(t, err, "is invalid")

	table := writeFile(t, filepath.Join(dir, "table.xml"), "<table/>")
	_, err = ParseResultsFile(table, "")
	assert.ErrorContains(t, err, "not named 'result' or 'test'")

	test := writeFile(t, filepath.Join(dir, "old.results.xml"), `<test><sourcefile name="x.c"/></test>`)
	root, err := ParseResultsFile(test, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "old.logfiles/x.c.log"), root.Child("sourcefile").AttrOr("logfile", ""))
}

func TestLogFolder(t *testing.T) {
	tests := []struct {
		name     string
		attrs    []schema.Attribute
		expected string
	}{
		{"No Name", nil, "r/t.logfiles/"},
		{"Name Without Block", []schema.Attribute{{Name: "name", Value: "t.cfg"}}, "r/t.logfiles/t.cfg."},
		{"Block Equals Name", []schema.Attribute{{Name: "name", Value: "cfg"}, {Name: "block", Value: "cfg"}}, "r/t.logfiles/"},
		{"Block Suffix", []schema.Attribute{{Name: "name", Value: "t.cfg"}, {Name: "block", Value: "cfg"}}, "r/t.logfiles/t."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := schema.NewElement("result", tt.attrs, "")
			assert.Equal(t, tt.expected, LogFolder("r/t.results.cfg.xml", root))
		})
	}
}

func TestCompressedInputs(t *testing.T) {
	dir := t.TempDir()

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(sampleResult))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	gzFile := writeFile(t, filepath.Join(dir, "a.results.xml.gz"), gz.String())

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sampleResult))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	zstFile := writeFile(t, filepath.Join(dir, "b.results.xml.zst"), zs.String())

	for _, file := range []string{gzFile, zstFile} {
		root, err := ParseResultsFile(file, "")
		require.NoError(t, err, file)
		assert.Len(t, root.Children("run"), 2)
	}
}

func TestRunSetFromXML(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "trunk#test.results.default.xml"), sampleResult)
	root, err := ParseResultsFile(file, "")
	require.NoError(t, err)

	rs := RunSetFromXML(file, root, nil, false)

	assert.Equal(t, []schema.Column{{Title: "status"}, {Title: "cputime"}, {Title: "walltime"}}, rs.Columns)
	assert.Equal(t, map[string]string{"cputime": "901.6s"}, rs.Summary)
	assert.Equal(t, 2, rs.RawCount())

	assert.Equal(t, "test.default", rs.Name())
	assert.Equal(t, "trunk", rs.Attribute("branch"))
	assert.Equal(t, "CPAchecker", rs.Attribute("tool"))
	assert.Equal(t, "benchexec.tools.cpachecker", rs.ToolModule())
	assert.Equal(t, []string{"alpha", "zeta"}, rs.Attributes["host"])
	assert.Equal(t, []string{"Linux 4.2", "Linux 4.4"}, rs.Attributes["os"])
	assert.Equal(t, []string{"false", "true"}, rs.Attributes["turbo"])
	assert.False(t, rs.HasAttribute("error"))

	all := RunSetFromXML(file, root, nil, true)
	assert.Equal(t, []string{"status", "category", "cputime", "walltime"}, schema.ColumnTitles(all.Columns))
}

func TestRunSetFromXMLWithoutBranch(t *testing.T) {
	root := schema.NewElement("result", []schema.Attribute{{Name: "benchmarkname", Value: "bench"}}, "")
	rs := RunSetFromXML("results/x.results.xml", root, []schema.Column{{Title: "status"}}, false)
	assert.Equal(t, "bench", rs.Name())
	assert.Equal(t, []string{""}, rs.Attributes["branch"])
}

func TestEmptyResultFileWarns(t *testing.T) {
	logs := observeLogs(t)
	root := schema.NewElement("result", nil, "")
	rs := RunSetFromXML("empty.results.xml", root, nil, false)
	assert.Empty(t, rs.Columns)
	assert.Equal(t, 1, logs.FilterMessage("Result file 'empty.results.xml' is empty.").Len())
}

func TestAppendAndCollectData(t *testing.T) {
	dir := t.TempDir()
	fileA := writeFile(t, filepath.Join(dir, "a.results.xml"), sampleResult)
	fileB := writeFile(t, filepath.Join(dir, "b.results.xml"),
		`<result benchmarkname="other" tool="CPAchecker"><run name="c.c"><column title="status" value="false"/><column title="memory" value="12MB"/></run></result>`)

	union := NewRunSetResult(nil)
	for _, f := range []string{fileA, fileB} {
		root, err := ParseResultsFile(f, "")
		require.NoError(t, err)
		union.Append(f, root, false)
	}

	assert.Equal(t, 3, union.RawCount())
	assert.Equal(t, []string{"status", "cputime", "walltime"}, schema.ColumnTitles(union.Columns), "columns come from the first file only")
	assert.Equal(t, []string{"test.default", "other"}, union.Attributes["name"])
	assert.Empty(t, union.Summary)

	registry, err := extract.NewRegistry(nil)
	require.NoError(t, err)
	require.NoError(t, union.CollectData(registry, false))

	assert.Equal(t, 0, union.RawCount())
	require.Len(t, union.Results, 3)
	assert.Equal(t, "TIMEOUT", union.Results[1].Status)
	assert.Equal(t, schema.CategoryError, union.Results[1].Category)
	assert.Equal(t, []string{"false", "", ""}, union.Results[2].Values)
	assert.Equal(t, "c.c", union.Tasks()[2].Name)

	assert.ErrorContains(t, union.CollectData(registry, false), "already been collected")
}

func TestParseTableDefinitionFile(t *testing.T) {
	logs := observeLogs(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "results", "one.results.xml"), sampleResult)
	writeFile(t, filepath.Join(dir, "results", "two.results.xml"), sampleResult)
	writeFile(t, filepath.Join(dir, "results", "three.results.xml"), sampleResult)

	def := writeFile(t, filepath.Join(dir, "table.xml"), `<?xml version="1.0"?>
<table>
  <column title="status"/>
  <column title="cputime" numberOfDigits="1"/>
  <result filename="results/t*.results.xml" id="r"/>
  <result/>
  <union title="merged">
    <column title="status"/>
    <result filename="results/one.results.xml"/>
    <result filename="results/nothing*.xml"/>
  </union>
  <union name="void">
    <result filename="results/nothing*.xml"/>
  </union>
</table>`)

	runSets, err := ParseTableDefinitionFile(def, false)
	require.NoError(t, err)
	require.Len(t, runSets, 3)

	assert.Equal(t, "test.default", runSets[0].Name())
	require.Len(t, runSets[0].Columns, 2)
	require.NotNil(t, runSets[0].Columns[1].NumberOfDigits)
	assert.Equal(t, 1, *runSets[0].Columns[1].NumberOfDigits)

	assert.Equal(t, "merged", runSets[2].Name())
	assert.Equal(t, []string{"status"}, schema.ColumnTitles(runSets[2].Columns))
	assert.Equal(t, 2, runSets[2].RawCount())

	assert.Equal(t, 1, logs.FilterMessageSnippet("Result tag without filename attribute").Len())
	assert.Equal(t, 2, logs.FilterMessageSnippet("No file matches").Len())
}

func TestParseTableDefinitionFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseTableDefinitionFile(filepath.Join(dir, "missing.xml"), false)
	assert.ErrorContains(t, err, "does not exist")

	notTable := writeFile(t, filepath.Join(dir, "result.xml"), "<result/>")
	_, err = ParseTableDefinitionFile(notTable, false)
	assert.ErrorContains(t, err, "not named 'table'")

	badDigits := writeFile(t, filepath.Join(dir, "digits.xml"), `<table><column title="x" numberOfDigits="two"/></table>`)
	_, err = ParseTableDefinitionFile(badDigits, false)
	assert.ErrorContains(t, err, "invalid numberOfDigits")

	missingResult := writeFile(t, filepath.Join(dir, "ref.xml"), `<table><result filename="*.nothing"/></table>`)
	runSets, err := ParseTableDefinitionFile(missingResult, false)
	require.NoError(t, err)
	assert.Empty(t, runSets)
}

func TestFileList(t *testing.T) {
	logs := observeLogs(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.results.xml"), "")
	writeFile(t, filepath.Join(dir, "a.results.xml"), "")

	t.Setenv("BENCHTABLE_TEST_DIR", dir)
	files := FileList("$BENCHTABLE_TEST_DIR/*.results.xml")
	assert.Equal(t, []string{filepath.Join(dir, "a.results.xml"), filepath.Join(dir, "b.results.xml")}, files)

	assert.Empty(t, FileList(filepath.Join(dir, "*.nothing")))
	assert.Equal(t, 1, logs.FilterMessageSnippet("No file matches").Len())

	assert.Len(t, ExtendFileList([]string{filepath.Join(dir, "a*"), filepath.Join(dir, "b*")}), 2)
}

func TestBasenameWithoutEnding(t *testing.T) {
	assert.Equal(t, "test.results", BasenameWithoutEnding("dir/test.results.xml"))
	assert.Equal(t, "test.results.xml.gz", BasenameWithoutEnding("test.results.xml.gz"))
}

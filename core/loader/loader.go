// Package loader reads benchmark result files and table definitions into
// run-sets.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
)

// ParseResultsFile parses a result file and returns its root element. A
// non-empty runSetID is recorded on every run so tasks of different run-sets
// never share an identity. Every run receives the path of its log file.
func ParseResultsFile(resultFile, runSetID string) (*schema.Element, error) {
	if !isFile(resultFile) {
		return nil, fmt.Errorf("file '%s' not found", resultFile)
	}
	contract.Logger().Sugar().Infof("    %s", resultFile)

	root, err := parseXMLFile(resultFile)
	if err != nil {
		return nil, fmt.Errorf("result file %s is invalid: %w", resultFile, err)
	}
	if root.Name() != "result" && root.Name() != "test" {
		return nil, fmt.Errorf("XML file with benchmark results seems to be invalid: "+
			"the root element of %s is not named 'result' or 'test' "+
			"(use --xml for table-definition files)", resultFile)
	}

	if runSetID != "" {
		root = root.MapChildren(func(run *schema.Element) *schema.Element {
			return run.WithAttr("runset", runSetID)
		}, "run", "sourcefile")
	}
	return insertLogfileNames(resultFile, root), nil
}

// insertLogfileNames records the expected log file path on every run.
func insertLogfileNames(resultFile string, root *schema.Element) *schema.Element {
	logFolder := LogFolder(resultFile, root)
	return root.MapChildren(func(run *schema.Element) *schema.Element {
		return run.WithAttr("logfile", logFolder+filepath.Base(run.AttrOr("name", ""))+".log")
	}, "run", "sourcefile")
}

// LogFolder returns the directory plus file name prefix under which the log
// files of a result file are stored.
func LogFolder(resultFile string, root *schema.Element) string {
	base := resultFile
	if i := strings.LastIndex(resultFile, ".results."); i >= 0 {
		base = resultFile[:i]
	}
	folder := base + ".logfiles/"

	name, ok := root.Attr("name")
	if !ok {
		return folder
	}
	block, ok := root.Attr("block")
	switch {
	case !ok:
		return folder + name + "."
	case block == name:
		return folder
	default:
		return folder + strings.TrimSuffix(name, "."+block) + "."
	}
}

// ParseTableDefinitionFile reads a table definition and loads every result
// file it references. Each <result> glob match is one run-set; each <union>
// merges its results into a single run-set.
func ParseTableDefinitionFile(file string, allColumns bool) ([]*RunSetResult, error) {
	log := contract.Logger().Sugar()
	log.Infof("Reading table definition from '%s'...", file)
	if !isFile(file) {
		return nil, fmt.Errorf("file '%s' does not exist", file)
	}

	table, err := parseXMLFile(file)
	if err != nil {
		return nil, fmt.Errorf("table file %s is invalid: %w", file, err)
	}
	if table.Name() != "table" {
		return nil, fmt.Errorf("table file %s is invalid: its root element is not named 'table'", file)
	}

	defaultColumns, err := columnsOf(table)
	if err != nil {
		return nil, fmt.Errorf("table file %s is invalid: %w", file, err)
	}
	baseDir := filepath.Dir(file)

	var runSets []*RunSetResult
	for _, resultTag := range table.Children("result") {
		filename, ok := resultTag.Attr("filename")
		if !ok {
			log.Warnf("Result tag without filename attribute in file '%s'.", file)
			continue
		}
		columns, err := columnsOrDefault(resultTag, defaultColumns)
		if err != nil {
			return nil, fmt.Errorf("table file %s is invalid: %w", file, err)
		}
		for _, resultFile := range FileList(filepath.Join(baseDir, filename)) {
			root, err := ParseResultsFile(resultFile, resultTag.AttrOr("id", ""))
			if err != nil {
				return nil, err
			}
			runSets = append(runSets, RunSetFromXML(resultFile, root, columns, allColumns))
		}
	}

	for _, unionTag := range table.Children("union") {
		columns, err := columnsOrDefault(unionTag, defaultColumns)
		if err != nil {
			return nil, fmt.Errorf("table file %s is invalid: %w", file, err)
		}
		union := NewRunSetResult(columns)

		for _, resultTag := range unionTag.Children("result") {
			filename, ok := resultTag.Attr("filename")
			if !ok {
				log.Warnf("Result tag without filename attribute in file '%s'.", file)
				continue
			}
			for _, resultFile := range FileList(filepath.Join(baseDir, filename)) {
				root, err := ParseResultsFile(resultFile, resultTag.AttrOr("id", ""))
				if err != nil {
					return nil, err
				}
				union.Append(resultFile, root, allColumns)
			}
		}

		if union.RawCount() == 0 {
			continue
		}
		name := unionTag.AttrOr("title", unionTag.AttrOr("name", ""))
		if name != "" {
			union.Attributes["name"] = []string{name}
		}
		runSets = append(runSets, union)
	}

	return runSets, nil
}

func columnsOrDefault(tag *schema.Element, defaults []schema.Column) ([]schema.Column, error) {
	columns, err := columnsOf(tag)
	if err != nil || len(columns) > 0 {
		return columns, err
	}
	return defaults, nil
}

// columnsOf reads the <column title numberOfDigits>pattern</column> children of a tag.
func columnsOf(tag *schema.Element) ([]schema.Column, error) {
	var columns []schema.Column
	for _, c := range tag.Children("column") {
		column := schema.Column{
			Title:   c.AttrOr("title", ""),
			Pattern: strings.TrimSpace(c.Text()),
		}
		if raw, ok := c.Attr("numberOfDigits"); ok {
			digits, err := strconv.Atoi(raw)
			if err != nil || digits < 0 {
				return nil, fmt.Errorf("invalid numberOfDigits '%s' for column '%s'", raw, column.Title)
			}
			column.NumberOfDigits = &digits
		}
		columns = append(columns, column)
	}
	return columns, nil
}

// LoadResultFiles parses each result file into its own run-set.
func LoadResultFiles(files []string, allColumns bool) ([]*RunSetResult, error) {
	runSets := make([]*RunSetResult, 0, len(files))
	for _, file := range files {
		root, err := ParseResultsFile(file, "")
		if err != nil {
			return nil, err
		}
		runSets = append(runSets, RunSetFromXML(file, root, nil, allColumns))
	}
	return runSets, nil
}

// FileList expands "~", environment variables and wildcards in pattern and
// returns the sorted matches.
func FileList(pattern string) []string {
	matches, err := filepath.Glob(expandPath(pattern))
	if err != nil || len(matches) == 0 {
		contract.Logger().Sugar().Warnf("No file matches '%s'.", pattern)
		return nil
	}
	sort.Strings(matches)
	return matches
}

// ExtendFileList expands every pattern of a list with FileList.
func ExtendFileList(patterns []string) []string {
	var files []string
	for _, p := range patterns {
		files = append(files, FileList(p)...)
	}
	return files
}

// BasenameWithoutEnding returns the base name of file without a trailing ".xml".
func BasenameWithoutEnding(file string) string {
	return strings.TrimSuffix(filepath.Base(file), ".xml")
}

func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = home + p[1:]
		}
	}
	return os.Expand(p, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return "${" + key + "}"
	})
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

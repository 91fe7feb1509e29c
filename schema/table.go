package schema

// HeadCell is one cell of a head row; Width is the number of value columns it spans.
type HeadCell struct {
	Value string `json:"value" yaml:"value"`
	Width int    `json:"width" yaml:"width"`
}

// HeadRow is one line of the table head (tool, limits, host, ...).
type HeadRow struct {
	ID      string     `json:"id" yaml:"id"`
	Name    string     `json:"name" yaml:"name"`
	Content []HeadCell `json:"content" yaml:"content"`
}

// RunSetInfo describes one run-set of a table.
type RunSetInfo struct {
	Name       string              `json:"name" yaml:"name"`
	Attributes map[string][]string `json:"attributes" yaml:"attributes"`
	Columns    []Column            `json:"columns" yaml:"columns"`
}

// TableResult is the rendered result of one task within one run-set.
type TableResult struct {
	Status   string   `json:"status" yaml:"status"`
	Category Category `json:"category" yaml:"category"`
	Score    int      `json:"score" yaml:"score"`
	LogFile  string   `json:"logfile,omitempty" yaml:"logfile,omitempty"`
	Values   []string `json:"values" yaml:"values"`
	Raw      []string `json:"raw" yaml:"raw"`
}

// TableRow is one task across all run-sets of a table.
type TableRow struct {
	ID        TaskID        `json:"id" yaml:"id"`
	ShortName string        `json:"short_name" yaml:"short_name"`
	FilePath  string        `json:"file_path" yaml:"file_path"`
	Results   []TableResult `json:"results" yaml:"results"`
}

// Table is the complete document handed to every output format.
type Table struct {
	Name              string       `json:"name" yaml:"name"`
	Type              TableType    `json:"type" yaml:"type"`
	Title             string       `json:"title" yaml:"title"`
	Head              []HeadRow    `json:"head" yaml:"head"`
	RunSets           []RunSetInfo `json:"runsets" yaml:"runsets"`
	RelevantIDColumns []bool       `json:"relevant_id_columns" yaml:"relevant_id_columns"`
	Rows              []TableRow   `json:"rows" yaml:"rows"`
	Stats             []StatsRow   `json:"stats" yaml:"stats"`
}

// ColumnCount returns the number of value columns across all run-sets.
func (t *Table) ColumnCount() int {
	n := 0
	for _, rs := range t.RunSets {
		n += len(rs.Columns)
	}
	return n
}

// IDColumnCount returns the number of identity columns that are displayed.
func (t *Table) IDColumnCount() int {
	n := 0
	for _, relevant := range t.RelevantIDColumns {
		if relevant {
			n++
		}
	}
	return n
}

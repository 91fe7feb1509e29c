package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of a rendered table.
	OutputMode string

	// Category represents the correctness classification of a task outcome.
	Category string

	// ResultClass represents the classification of a raw status string.
	ResultClass string

	// TableType distinguishes the full table from the difference table.
	TableType string

	// DatabaseBackend represents the database backend for generation history.
	DatabaseBackend string

	// LogFormat represents the encoding of diagnostic log lines.
	LogFormat string
)

// All output modes supported.
const (
	HTMLOut    OutputMode = "html" // default
	CSVOut     OutputMode = "csv"  // default
	TextOut    OutputMode = "text"
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All correctness categories.
const (
	CategoryCorrect Category = "correct"
	CategoryWrong   Category = "wrong"
	CategoryUnknown Category = "unknown"
	CategoryError   Category = "error"
	CategoryMissing Category = "missing"
)

// All result classes.
const (
	ResultClassTrue    ResultClass = "true"
	ResultClassFalse   ResultClass = "false"
	ResultClassUnknown ResultClass = "unknown"
	ResultClassError   ResultClass = "error"
)

// Well-known status strings.
const (
	StatusTrue        = "true"
	StatusFalse       = "false"
	StatusUnknown     = "unknown"
	StatusTimeout     = "TIMEOUT"
	StatusOutOfMemory = "OUT OF MEMORY"
)

// Table types written per generation.
const (
	FullTable TableType = "table"
	DiffTable TableType = "diff"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All log formats supported.
const (
	ConsoleLog LogFormat = "console" // default
	JSONLog    LogFormat = "json"
)

// DefaultOutputModes are the formats written when none are requested.
var DefaultOutputModes = []OutputMode{HTMLOut, CSVOut}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	HTMLOut:    {},
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidLogFormats lists all valid log formats.
var ValidLogFormats = map[LogFormat]struct{}{
	ConsoleLog: {},
	JSONLog:    {},
}

package contract

import (
	"fmt"
	"maps"
	"strings"

	"github.com/huangsam/benchtable/schema"
)

// Default values for configuration.
const (
	DefaultOutputPath = "results/"
	DefaultWidth      = 0
	// StdoutPath as output path writes every table to stdout.
	StdoutPath = "-"
)

// ValidExtractorKinds lists the extractor kinds tool modules can be mapped onto.
var ValidExtractorKinds = map[string]struct{}{
	"none":   {},
	"base":   {},
	"prefix": {},
	"regex":  {},
}

// Config holds the runtime configuration for table generation.
// This struct remains the "final, validated" config.
type Config struct {
	ResultFiles     []string
	TableDefinition string
	OutputPath      string
	Name            string

	IgnoreErrors           bool
	DumpCounts             bool
	IgnoreFlappingTimeouts bool
	Formats                []schema.OutputMode
	Common                 bool
	WriteDiff              bool
	CorrectOnly            bool
	AllColumns             bool
	Offline                bool
	Quiet                  bool

	Width     int // Terminal width override (0 = auto-detect)
	UseColors bool
	LogFormat schema.LogFormat

	// Extractors maps additional tool modules onto extractor kinds.
	Extractors map[string]string

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ResultFiles []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Color            string `mapstructure:"color"`
	Width            int    `mapstructure:"width"`
	LogFormat        string `mapstructure:"log-format"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Quiet            bool   `mapstructure:"quiet"`

	// --- Fields from generateCmd.Flags() ---
	TableDefinition        string   `mapstructure:"xml"`
	OutputPath             string   `mapstructure:"outputpath"`
	Name                   string   `mapstructure:"name"`
	IgnoreErrors           bool     `mapstructure:"ignore-erroneous-benchmarks"`
	Dump                   bool     `mapstructure:"dump"`
	IgnoreFlappingTimeouts bool     `mapstructure:"ignore-flapping-timeout-regressions"`
	Formats                []string `mapstructure:"format"`
	Common                 bool     `mapstructure:"common"`
	NoDiff                 bool     `mapstructure:"no-diff"`
	CorrectOnly            bool     `mapstructure:"correct-only"`
	AllColumns             bool     `mapstructure:"all-columns"`
	Offline                bool     `mapstructure:"offline"`

	// --- Extractor aliases from config file ---
	Extractors map[string]string `mapstructure:"extractors"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.ResultFiles != nil {
		clone.ResultFiles = append([]string(nil), c.ResultFiles...)
	}
	if c.Formats != nil {
		clone.Formats = append([]schema.OutputMode(nil), c.Formats...)
	}
	if c.Extractors != nil {
		clone.Extractors = make(map[string]string, len(c.Extractors))
		maps.Copy(clone.Extractors, c.Extractors)
	}
	return &clone
}

// WritesToStdout reports whether tables go to stdout instead of files.
func (c *Config) WritesToStdout() bool {
	return c.OutputPath == StdoutPath
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processInputs(cfg, input); err != nil {
		return err
	}
	if err := processFormats(cfg, input); err != nil {
		return err
	}
	if err := processExtractors(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// validateSimpleInputs transfers and validates the plain fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputPath = input.OutputPath
	cfg.Name = input.Name
	cfg.IgnoreErrors = input.IgnoreErrors
	cfg.DumpCounts = input.Dump
	cfg.IgnoreFlappingTimeouts = input.IgnoreFlappingTimeouts
	cfg.Common = input.Common
	cfg.WriteDiff = !input.NoDiff
	cfg.CorrectOnly = input.CorrectOnly
	cfg.AllColumns = input.AllColumns
	cfg.Offline = input.Offline
	cfg.Quiet = input.Quiet

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.LogFormat = schema.LogFormat(strings.ToLower(input.LogFormat))
	if cfg.LogFormat == "" {
		cfg.LogFormat = schema.ConsoleLog
	}
	if _, ok := schema.ValidLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}
	return nil
}

// processInputs resolves the result files and the table definition.
func processInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.TableDefinition = strings.TrimSpace(input.TableDefinition)
	cfg.ResultFiles = append([]string(nil), input.ResultFiles...)
	if cfg.TableDefinition != "" && len(cfg.ResultFiles) > 0 {
		return fmt.Errorf("invalid additional arguments '%s'", strings.Join(cfg.ResultFiles, " "))
	}
	return nil
}

// processFormats validates the requested formats, dropping repeated ones.
func processFormats(cfg *Config, input *ConfigRawInput) error {
	cfg.Formats = nil
	seen := make(map[schema.OutputMode]struct{})
	for _, raw := range input.Formats {
		for part := range strings.SplitSeq(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			mode := schema.OutputMode(strings.ToLower(part))
			if _, ok := schema.ValidOutputModes[mode]; !ok {
				return fmt.Errorf("invalid output format '%s'. must be html, csv, text, json, yaml, parquet", part)
			}
			if _, dup := seen[mode]; dup {
				continue
			}
			seen[mode] = struct{}{}
			cfg.Formats = append(cfg.Formats, mode)
		}
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = append([]schema.OutputMode(nil), schema.DefaultOutputModes...)
	}
	return nil
}

// processExtractors validates the tool-module aliases from the config file.
func processExtractors(cfg *Config, input *ConfigRawInput) error {
	cfg.Extractors = nil
	if len(input.Extractors) == 0 {
		return nil
	}
	cfg.Extractors = make(map[string]string, len(input.Extractors))
	for module, kind := range input.Extractors {
		kind = strings.ToLower(strings.TrimSpace(kind))
		if _, ok := ValidExtractorKinds[kind]; !ok {
			return fmt.Errorf("invalid extractor kind '%s' for tool module '%s'. must be none, base, prefix, regex", kind, module)
		}
		cfg.Extractors[module] = kind
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the history backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

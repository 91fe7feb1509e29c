package schema

import "time"

// GenerationRecord represents a row from the benchtable_generations table.
type GenerationRecord struct {
	GenerationID string
	StartTime    time.Time
	DurationMs   int64
	OutputName   string
	RunSets      int32
	Rows         int32
	DiffRows     int32
	Regressions  int32
	ConfigParams *string
}

// RunSetCountsRecord represents a row from the benchtable_runset_counts table.
type RunSetCountsRecord struct {
	GenerationID string
	RunSetIndex  int32
	RunSetName   string
	Tool         string
	Correct      int32
	Wrong        int32
	Other        int32
	Score        int64
}

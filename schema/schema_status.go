package schema

import "time"

// HistoryStatus represents the status of the generation history store.
type HistoryStatus struct {
	Backend              string           `json:"backend"`
	Connected            bool             `json:"connected"`
	TotalGenerations     int              `json:"total_generations"`
	LastGenerationID     string           `json:"last_generation_id"`
	LastGenerationTime   time.Time        `json:"last_generation_time"`
	OldestGenerationTime time.Time        `json:"oldest_generation_time"`
	TotalRowsTabulated   int              `json:"total_rows_tabulated"`
	TableSizes           map[string]int64 `json:"table_sizes"`
}

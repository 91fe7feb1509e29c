// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"github.com/huangsam/benchtable/schema"
)

// HistoryManager defines the interface for managing the generation history store.
// This allows the history layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for recording table generations.
type HistoryStore interface {
	// RecordGeneration stores one generation together with its per-run-set counts
	RecordGeneration(generation schema.GenerationRecord, runSets []schema.RunSetCountsRecord) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllGenerations returns every recorded generation, oldest first
	GetAllGenerations() ([]schema.GenerationRecord, error)

	// GetAllRunSetCounts returns every recorded per-run-set count
	GetAllRunSetCounts() ([]schema.RunSetCountsRecord, error)

	// Close closes the underlying connection
	Close() error
}

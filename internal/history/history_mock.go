package history

import (
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// RecordGeneration implements the HistoryStore interface.
func (m *MockHistoryStore) RecordGeneration(generation schema.GenerationRecord, runSets []schema.RunSetCountsRecord) error {
	args := m.Called(generation, runSets)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllGenerations implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllGenerations() ([]schema.GenerationRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.GenerationRecord)
	return records, args.Error(1)
}

// GetAllRunSetCounts implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRunSetCounts() ([]schema.RunSetCountsRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.RunSetCountsRecord)
	return records, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

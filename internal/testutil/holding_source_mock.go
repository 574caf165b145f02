package testutil

import (
	"context"
	"sync"

	"github.com/ndewijer/mf-folio-backend/internal/folio"
	"github.com/ndewijer/mf-folio-backend/internal/model"
)

// MockHoldingSource is an in-memory service.HoldingSource for testing.
// It returns predefined records per user instead of calling the upstream API.
type MockHoldingSource struct {
	mu sync.Mutex

	// Records maps user id to the records returned for that user
	Records map[string][]model.HoldingRecord
	// Errors maps user id to the error returned for that user
	Errors map[string]error
	// Err is returned for every user without an entry in Errors
	Err error
	// Calls lists the user ids requested, in call order
	Calls []string
}

// NewMockHoldingSource creates an empty mock source. Unknown users get no-data errors.
func NewMockHoldingSource() *MockHoldingSource {
	return &MockHoldingSource{
		Records: map[string][]model.HoldingRecord{},
		Errors:  map[string]error{},
	}
}

// FetchHoldings returns the configured records or error for userID.
func (m *MockHoldingSource) FetchHoldings(_ context.Context, userID string) ([]model.HoldingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, userID)

	if err, ok := m.Errors[userID]; ok {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	records, ok := m.Records[userID]
	if !ok {
		return nil, &folio.NoDataError{}
	}
	return records, nil
}

// CallCount returns how many times FetchHoldings was called.
func (m *MockHoldingSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// WithRecords configures the records returned for userID.
func (m *MockHoldingSource) WithRecords(userID string, records ...model.HoldingRecord) *MockHoldingSource {
	m.Records[userID] = records
	return m
}

// WithNoData configures userID to get the upstream's "no data" answer with message.
func (m *MockHoldingSource) WithNoData(userID, message string) *MockHoldingSource {
	m.Errors[userID] = &folio.NoDataError{Message: message}
	return m
}

// WithUserError configures the error returned for userID.
func (m *MockHoldingSource) WithUserError(userID string, err error) *MockHoldingSource {
	m.Errors[userID] = err
	return m
}

// WithError configures the mock to return err for every user.
func (m *MockHoldingSource) WithError(err error) *MockHoldingSource {
	m.Err = err
	return m
}

package metrics

import (
	"context"
	"sync"
)

// MockRecorder captures turn records for assertions in tests.
type MockRecorder struct {
	mu      sync.Mutex
	Records []TurnRecord
}

func (m *MockRecorder) RecordTurn(_ context.Context, record TurnRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, record)
}

// Recorded returns a copy of all captured records.
func (m *MockRecorder) Recorded() []TurnRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TurnRecord, len(m.Records))
	copy(out, m.Records)
	return out
}

var _ Recorder = (*MockRecorder)(nil)

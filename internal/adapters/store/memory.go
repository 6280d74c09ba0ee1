package store

import (
	"context"
	"fmt"
	"imagestudio/internal/core/domain"
	"sync"

	"github.com/gofrs/uuid/v5"
)

// Memory is a process-local store used when no Redis address is configured.
type Memory struct {
	mutex       sync.RWMutex
	collections map[string][]domain.HistoryRecord
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]domain.HistoryRecord)}
}

func (m *Memory) Append(_ context.Context, path string, record domain.HistoryRecord) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("error generating record id: %w", err)
	}
	record.ID = id.String()

	m.mutex.Lock()
	m.collections[path] = append(m.collections[path], record)
	m.mutex.Unlock()

	return record.ID, nil
}

func (m *Memory) List(_ context.Context, path string) ([]domain.HistoryRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	records := make([]domain.HistoryRecord, len(m.collections[path]))
	copy(records, m.collections[path])
	return records, nil
}

package persist

import (
	"context"
	"sync"
)

// MemoryKV is a process-local KV. Setting FailLoad or FailSave makes the
// corresponding call return that error.
type MemoryKV struct {
	mu       sync.Mutex
	data     map[string]string
	saves    int
	FailLoad error
	FailSave error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLoad != nil {
		return "", false, m.FailLoad
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	m.data[key] = value
	m.saves++
	return nil
}

// Set stores value directly, bypassing FailSave.
func (m *MemoryKV) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Saves returns the number of successful Save calls.
func (m *MemoryKV) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

package storage

import (
	"context"
	"fmt"
	"sync"
)

const (
	KeyResume = "resume"
	KeyJobs   = "jobs"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Store is a durable key-value slot store. Load reports ok=false for absent keys.
type Store interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
}

// MemoryStore keeps slots in process memory. It is used for ephemeral sessions and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
	saves map[string]int
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]string),
		saves: make(map[string]int),
	}
}

func (m *MemoryStore) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("storage key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	m.saves[key]++
	return nil
}

// Saves returns how many times key was written.
func (m *MemoryStore) Saves(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[key]
}

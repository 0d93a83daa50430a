package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// MemoryRemote is an in-process Remote implementation, used in tests and in
// deployments without a shared cache backend.
type MemoryRemote struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{entries: make(map[string]entry)}
}

func (m *MemoryRemote) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !time.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, nil
	}
	return e.value, nil
}

func (m *MemoryRemote) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryRemote) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *MemoryRemote) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.entries {
		if matched, _ := path.Match(pattern, k); matched {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MemoryRemote) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
	return nil
}

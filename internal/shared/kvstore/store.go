// Package kvstore provides the process-wide key-value store the authentication
// subsystem writes the current access token into.
package kvstore

import (
	"strings"
	"sync"
)

// Memory is a concurrency-safe in-memory store. Readers always observe the latest write.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key and whether it was present.
func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[strings.TrimSpace(key)]
	return value, ok
}

func (m *Memory) Set(key, value string) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return
	}
	m.mu.Lock()
	m.values[trimmed] = value
	m.mu.Unlock()
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.values, strings.TrimSpace(key))
	m.mu.Unlock()
}

package localstore

import (
	"encoding/json"
	"sync"
)

// Memory is an in-memory KV used in tests and as a fallback when the local
// store cannot be opened (the client then simply forgets its caches across
// restarts).
type Memory struct {
	mu   sync.Mutex
	data map[Scope]map[string][]byte
}

// NewMemory creates an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: map[Scope]map[string][]byte{}}
}

// Get decodes the value under scope/key into v.
func (m *Memory) Get(scope Scope, key string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.data[scope][key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores v as JSON under scope/key.
func (m *Memory) Set(scope Scope, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[scope] == nil {
		m.data[scope] = map[string][]byte{}
	}
	m.data[scope][key] = raw
	return nil
}

// Delete removes the value under scope/key.
func (m *Memory) Delete(scope Scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[scope], key)
	return nil
}

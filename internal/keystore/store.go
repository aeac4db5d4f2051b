// Package keystore persists the API key, its remember flag and the theme
// choice in a small key-value store.
package keystore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Names of the persisted values.
const (
	NameAPIKey   = "api_key"
	NameRemember = "api_key_remember"
	NameTheme    = "theme"
)

// Store is a string key-value store. Get reports ok=false for absent names.
type Store interface {
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, names ...string) error
}

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range names {
		delete(m.values, n)
	}
	return nil
}

// Mask hides all but the first four characters of a key for display and logs.
func Mask(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	r := []rune(key)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return fmt.Sprintf("%s%s", string(r[:4]), strings.Repeat("*", min(len(r)-4, 12)))
}

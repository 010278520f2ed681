// Package history persists recently used endpoint parameters so forms can
// be prefilled on the next invocation.
package history

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

const maxPerEndpoint = 20

// Store manages per-endpoint parameter history.
type Store struct {
	path    string
	entries map[string][]map[string]string // endpoint name → param sets, most recent first
	mu      sync.RWMutex
}

// NewStore creates or loads a history store. A missing or unreadable file
// starts an empty history rather than failing.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string][]map[string]string),
	}

	data, err := os.ReadFile(path)
	if err == nil {
		json.Unmarshal(data, &s.entries)
	}

	return s, nil
}

// Add records a parameter set for an endpoint, deduplicating and keeping
// the most recent first.
func (s *Store) Add(endpoint string, params map[string]string) {
	if len(params) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sets := s.entries[endpoint]

	for i, set := range sets {
		if maps.Equal(set, params) {
			sets = append(sets[:i], sets[i+1:]...)
			break
		}
	}

	sets = append([]map[string]string{maps.Clone(params)}, sets...)

	if len(sets) > maxPerEndpoint {
		sets = sets[:maxPerEndpoint]
	}

	s.entries[endpoint] = sets
}

// Get returns the parameter sets recorded for an endpoint, most recent
// first.
func (s *Store) Get(endpoint string) []map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sets := s.entries[endpoint]
	out := make([]map[string]string, len(sets))
	for i, set := range sets {
		out[i] = maps.Clone(set)
	}
	return out
}

// Latest returns the most recent parameter set for an endpoint, or nil.
func (s *Store) Latest(endpoint string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sets := s.entries[endpoint]
	if len(sets) == 0 {
		return nil
	}
	return maps.Clone(sets[0])
}

// Save persists the history to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

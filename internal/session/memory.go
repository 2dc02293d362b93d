package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for development and tests. It honors
// TTLs the same way the Redis store does so session expiry behaves alike.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryEntry
	flags   map[string]map[string]bool
	now     func() time.Time
}

type memoryEntry struct {
	rec       *Record
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryEntry),
		flags:   make(map[string]map[string]bool),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, rec *Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rec
	s.records[rec.ID] = memoryEntry{rec: &clone, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	entry, ok := s.records[id]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	clone := *entry.rec
	return &clone, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) SetFlag(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flags[scope] == nil {
		s.flags[scope] = make(map[string]bool)
	}
	s.flags[scope][key] = true
	return nil
}

func (s *MemoryStore) HasFlag(_ context.Context, scope, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[scope][key], nil
}

func (s *MemoryStore) ClearFlags(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, scope)
	return nil
}

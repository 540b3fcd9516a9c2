package quota

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// MemoryStore is an in-process Store. Stale records are dropped by DeleteStale,
// which the purge job calls periodically.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.QuotaRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.QuotaRecord)}
}

func (s *MemoryStore) Get(_ context.Context, scopeKey string) (*domain.QuotaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[scopeKey]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Set(_ context.Context, rec domain.QuotaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ScopeKey] = rec
	return nil
}

func (s *MemoryStore) DeleteStale(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, rec := range s.records {
		if rec.ResetAt.Before(before) {
			delete(s.records, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ping satisfies the readiness checker; the memory store is always ready.
func (s *MemoryStore) Ping(context.Context) error { return nil }

package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"regdesk/internal/registration/models"
	"regdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations for the lifetime of the process, in
// insertion order. Nothing survives a restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.Record
	byID    map[uuid.UUID]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[uuid.UUID]int)}
}

// Append adds a record. Records with identical content are kept side by side.
func (s *InMemoryStore) Append(_ context.Context, record models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[record.ID] = len(s.records)
	s.records = append(s.records, record)
	return nil
}

// Snapshot returns a copy of all records in insertion order.
func (s *InMemoryStore) Snapshot(_ context.Context) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Record{}, s.records...), nil
}

func (s *InMemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	record := s.records[idx]
	return &record, nil
}

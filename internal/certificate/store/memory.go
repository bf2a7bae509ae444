// Package store provides certificate record persistence. Records are
// write-once: a store never accepts a second write for the same token.
package store

import (
	"context"
	"sync"

	"certreg/internal/certificate/models"
	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
)

// MemoryStore keeps certificate records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[id.TokenID]*models.Certificate
}

func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[id.TokenID]*models.Certificate)}
}

// Put stores a fresh record. Returns sentinel.ErrConflict when a record for
// the token already exists; existing records are never overwritten.
func (s *MemoryStore) Put(ctx context.Context, cert *models.Certificate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[cert.TokenID]; exists {
		return sentinel.ErrConflict
	}
	copied := *cert
	s.records[cert.TokenID] = &copied
	return nil
}

// Get returns a copy of the record for token, or sentinel.ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, token id.TokenID) (*models.Certificate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cert, exists := s.records[token]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	copied := *cert
	return &copied, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Package store provides issuer allow-list persistence.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"certreg/internal/issuer/models"
	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
)

// MemoryStore keeps the issuer allow-list in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	issuers map[id.Identity]*models.Issuer
}

func NewMemory() *MemoryStore {
	return &MemoryStore{issuers: make(map[id.Identity]*models.Issuer)}
}

// SetAuthorized upserts the issuer's authorization state.
func (s *MemoryStore) SetAuthorized(ctx context.Context, identity id.Identity, authorized bool, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.issuers[identity] = models.NewIssuer(identity, authorized, now)
	return nil
}

// IsAuthorized reports the issuer's current standing. Unknown identities are
// unauthorized.
func (s *MemoryStore) IsAuthorized(ctx context.Context, identity id.Identity) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	issuer, exists := s.issuers[identity]
	if !exists {
		return false, nil
	}
	return issuer.Authorized, nil
}

// Find returns a copy of the issuer row.
func (s *MemoryStore) Find(ctx context.Context, identity id.Identity) (*models.Issuer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	issuer, exists := s.issuers[identity]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	copied := *issuer
	return &copied, nil
}

// List returns copies of all issuer rows ordered by identity.
func (s *MemoryStore) List(ctx context.Context) ([]*models.Issuer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Issuer, 0, len(s.issuers))
	for _, issuer := range s.issuers {
		copied := *issuer
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out, nil
}

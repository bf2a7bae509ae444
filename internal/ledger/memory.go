package ledger

import (
	"context"
	"sync"

	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
)

// MemoryLedger keeps minted tokens in process memory.
type MemoryLedger struct {
	mu      sync.RWMutex
	holders map[id.TokenID]id.Identity
}

func NewMemory() *MemoryLedger {
	return &MemoryLedger{holders: make(map[id.TokenID]id.Identity)}
}

func (l *MemoryLedger) Mint(ctx context.Context, token id.TokenID, holder id.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.holders[token]; exists {
		return sentinel.ErrConflict
	}
	l.holders[token] = holder
	return nil
}

func (l *MemoryLedger) Exists(ctx context.Context, token id.TokenID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.holders[token]
	return exists, nil
}

func (l *MemoryLedger) HolderOf(ctx context.Context, token id.TokenID) (id.Identity, error) {
	if err := ctx.Err(); err != nil {
		return id.Identity(""), err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	holder, exists := l.holders[token]
	if !exists {
		return id.Identity(""), sentinel.ErrNotFound
	}
	return holder, nil
}

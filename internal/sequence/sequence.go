// Package sequence allocates certificate identifiers. Identifiers start at
// zero and strictly increase; an allocated value is never reused even when
// the surrounding operation fails after allocation.
package sequence

import (
	"context"
	"sync"

	id "certreg/pkg/domain"
)

// Allocator hands out the next certificate identifier.
type Allocator interface {
	Next(ctx context.Context) (id.TokenID, error)
}

// Memory is an in-process allocator. Callers that need allocation ordered
// with other state changes must invoke it inside the shared transactional
// boundary; the internal mutex only protects the counter itself.
type Memory struct {
	mu   sync.Mutex
	next uint64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (a *Memory) Next(ctx context.Context) (id.TokenID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	allocated := a.next
	a.next++
	return id.TokenID(allocated), nil
}

// Package storetx provides the transactional boundary shared by the issuer
// and certificate services. The registry serializes every mutating operation
// through a single boundary so identifier allocation, ledger minting, and
// record writes observe a consistent order.
package storetx

import (
	"context"
	"sync"
	"time"

	dErrors "certreg/pkg/domain-errors"
)

// StoreTx runs fn inside a transactional boundary. Implementations may wrap a
// database transaction or an in-memory lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

// InMemory serializes mutations for in-memory stores. A single instance must
// be shared by every service that mutates registry state.
type InMemory struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (t *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

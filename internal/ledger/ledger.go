// Package ledger tracks which certificate identifiers exist and who holds
// them. A token is minted exactly once; rebinding an existing token is an
// invariant breach surfaced as a conflict.
package ledger

import (
	"context"

	id "certreg/pkg/domain"
)

// TokenLedger records minted certificate tokens.
type TokenLedger interface {
	// Mint binds token to holder. Returns sentinel.ErrConflict when the
	// token already exists.
	Mint(ctx context.Context, token id.TokenID, holder id.Identity) error
	// Exists reports whether token has been minted.
	Exists(ctx context.Context, token id.TokenID) (bool, error)
	// HolderOf returns the identity the token is bound to, or
	// sentinel.ErrNotFound when the token was never minted.
	HolderOf(ctx context.Context, token id.TokenID) (id.Identity, error)
}

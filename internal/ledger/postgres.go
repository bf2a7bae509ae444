package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
	txcontext "certreg/pkg/platform/tx"
)

// PostgresLedger persists minted tokens in PostgreSQL. It joins a transaction
// carried by the context so minting commits or rolls back together with the
// certificate record write.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (l *PostgresLedger) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return l.db
}

func (l *PostgresLedger) Mint(ctx context.Context, token id.TokenID, holder id.Identity) error {
	query := `
		INSERT INTO token_ledger (token_id, holder)
		VALUES ($1, $2)
		ON CONFLICT (token_id) DO NOTHING
	`
	result, err := l.execer(ctx).ExecContext(ctx, query, int64(token), holder.String())
	if err != nil {
		return fmt.Errorf("mint token %s: %w", token, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mint token %s: %w", token, err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (l *PostgresLedger) Exists(ctx context.Context, token id.TokenID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM token_ledger WHERE token_id = $1)`
	if err := l.execer(ctx).QueryRowContext(ctx, query, int64(token)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check token %s: %w", token, err)
	}
	return exists, nil
}

func (l *PostgresLedger) HolderOf(ctx context.Context, token id.TokenID) (id.Identity, error) {
	var holder string
	query := `SELECT holder FROM token_ledger WHERE token_id = $1`
	err := l.execer(ctx).QueryRowContext(ctx, query, int64(token)).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve holder of token %s: %w", token, err)
	}
	return id.Identity(holder), nil
}

package sequence

import (
	"context"
	"database/sql"
	"fmt"

	id "certreg/pkg/domain"
	txcontext "certreg/pkg/platform/tx"
)

// Postgres allocates identifiers from a database sequence. The sequence is
// created by the schema migrations with MINVALUE 0 so the first certificate
// receives identifier zero.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (a *Postgres) querier(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return a.db
}

func (a *Postgres) Next(ctx context.Context) (id.TokenID, error) {
	var allocated uint64
	query := `SELECT nextval('certificate_ids')`
	if err := a.querier(ctx).QueryRowContext(ctx, query).Scan(&allocated); err != nil {
		return 0, fmt.Errorf("allocate certificate id: %w", err)
	}
	return id.TokenID(allocated), nil
}

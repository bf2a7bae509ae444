package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certreg/internal/issuer/models"
	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
	txcontext "certreg/pkg/platform/tx"
)

// PostgresStore persists the issuer allow-list in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) SetAuthorized(ctx context.Context, identity id.Identity, authorized bool, now time.Time) error {
	query := `
		INSERT INTO issuers (identity, authorized, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (identity) DO UPDATE
		SET authorized = EXCLUDED.authorized, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.execer(ctx).ExecContext(ctx, query, identity.String(), authorized, now); err != nil {
		return fmt.Errorf("set issuer authorization: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAuthorized(ctx context.Context, identity id.Identity) (bool, error) {
	var authorized bool
	query := `SELECT authorized FROM issuers WHERE identity = $1`
	err := s.execer(ctx).QueryRowContext(ctx, query, identity.String()).Scan(&authorized)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check issuer authorization: %w", err)
	}
	return authorized, nil
}

func (s *PostgresStore) Find(ctx context.Context, identity id.Identity) (*models.Issuer, error) {
	query := `
		SELECT identity, authorized, updated_at
		FROM issuers
		WHERE identity = $1
	`
	issuer, err := scanIssuer(s.execer(ctx).QueryRowContext(ctx, query, identity.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find issuer: %w", err)
	}
	return issuer, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Issuer, error) {
	query := `
		SELECT identity, authorized, updated_at
		FROM issuers
		ORDER BY identity
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list issuers: %w", err)
	}
	defer rows.Close()

	var out []*models.Issuer
	for rows.Next() {
		issuer, err := scanIssuer(rows)
		if err != nil {
			return nil, fmt.Errorf("list issuers: %w", err)
		}
		out = append(out, issuer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list issuers: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssuer(row rowScanner) (*models.Issuer, error) {
	var (
		identity   string
		authorized bool
		updatedAt  time.Time
	)
	if err := row.Scan(&identity, &authorized, &updatedAt); err != nil {
		return nil, err
	}
	return &models.Issuer{
		Identity:   id.Identity(identity),
		Authorized: authorized,
		UpdatedAt:  updatedAt,
	}, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"certreg/internal/certificate/models"
	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
	txcontext "certreg/pkg/platform/tx"
)

// PostgresStore persists certificate records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Put(ctx context.Context, cert *models.Certificate) error {
	query := `
		INSERT INTO certificates (token_id, recipient, course, issuer, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token_id) DO NOTHING
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		int64(cert.TokenID),
		cert.Recipient.String(),
		cert.Course,
		cert.Issuer.String(),
		cert.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("put certificate %s: %w", cert.TokenID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("put certificate %s: %w", cert.TokenID, err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, token id.TokenID) (*models.Certificate, error) {
	query := `
		SELECT token_id, recipient, course, issuer, issued_at
		FROM certificates
		WHERE token_id = $1
	`
	var (
		tokenID   int64
		recipient string
		course    string
		issuer    string
		issuedAt  time.Time
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, int64(token)).
		Scan(&tokenID, &recipient, &course, &issuer, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get certificate %s: %w", token, err)
	}
	return &models.Certificate{
		TokenID:   id.TokenID(tokenID),
		Recipient: id.Identity(recipient),
		Course:    course,
		Issuer:    id.Identity(issuer),
		IssuedAt:  issuedAt,
	}, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count certificates: %w", err)
	}
	return count, nil
}

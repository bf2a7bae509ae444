// Package service orchestrates certificate issuance and verification.
//
// Issuance is the registry's critical section: the authorization check,
// identifier allocation, ledger mint, and record write all happen inside one
// run of the shared transactional boundary. A rejected call never allocates
// an identifier, so observed identifiers stay gapless under the usual flow
// and strictly increasing always.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	certmetrics "certreg/internal/certificate/metrics"
	"certreg/internal/certificate/models"
	"certreg/internal/events"
	"certreg/internal/ledger"
	"certreg/internal/sequence"
	"certreg/internal/storetx"
	id "certreg/pkg/domain"
	dErrors "certreg/pkg/domain-errors"
	"certreg/pkg/platform/sentinel"
	"certreg/pkg/requestcontext"
)

// RecordStore persists certificate records write-once.
type RecordStore interface {
	Put(ctx context.Context, cert *models.Certificate) error
	Get(ctx context.Context, token id.TokenID) (*models.Certificate, error)
}

// IssuerAuthority answers whether an identity may issue certificates.
type IssuerAuthority interface {
	IsAuthorized(ctx context.Context, identity id.Identity) (bool, error)
}

// Notifier publishes registry notifications.
type Notifier interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service owns the issuance and verification flows.
type Service struct {
	records   RecordStore
	authority IssuerAuthority
	allocator sequence.Allocator
	ledger    ledger.TokenLedger
	tx        storetx.StoreTx
	notifier  Notifier
	logger    *slog.Logger
	metrics   *certmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithMetrics(m *certmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service. The tx boundary must be the same instance the
// issuer service uses so issuance serializes with allow-list changes.
func New(
	records RecordStore,
	authority IssuerAuthority,
	allocator sequence.Allocator,
	tokenLedger ledger.TokenLedger,
	tx storetx.StoreTx,
	opts ...Option,
) *Service {
	s := &Service{
		records:   records,
		authority: authority,
		allocator: allocator,
		ledger:    tokenLedger,
		tx:        tx,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Issue mints a certificate for recipient. The caller identity comes from the
// request context; only authorized issuers may issue. The authorization check
// runs inside the transactional boundary, before the identifier is allocated,
// so a rejected call leaves the allocator untouched.
func (s *Service) Issue(ctx context.Context, recipient id.Identity, course string) (*models.Certificate, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveIssue(start)
		}
	}()

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		s.countRejection("unauthenticated")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if err := models.ValidateCourse(course); err != nil {
		s.countRejection("invalid_course")
		return nil, err
	}
	if recipient.IsZero() {
		s.countRejection("invalid_recipient")
		return nil, dErrors.New(dErrors.CodeValidation, "recipient is required")
	}

	var cert *models.Certificate
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		authorized, err := s.authority.IsAuthorized(txCtx, caller)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check issuer authorization")
		}
		if !authorized {
			s.countRejection("unauthorized_issuer")
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not an authorized issuer")
		}

		tokenID, err := s.allocator.Next(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate certificate id")
		}

		c, err := models.NewCertificate(tokenID, recipient, course, caller, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}

		if err := s.ledger.Mint(txCtx, tokenID, recipient); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "allocated token already minted")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint certificate token")
		}
		if err := s.records.Put(txCtx, c); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "certificate record already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store certificate record")
		}
		cert = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notify only once the transaction has committed: a rolled-back issuance
	// must never be observable downstream. The record is already durable here,
	// so a notification failure is logged rather than surfaced.
	if s.notifier != nil {
		if err := s.notifier.Emit(ctx, events.CertificateIssued(cert.TokenID, recipient, cert.Course, caller)); err != nil {
			s.logger.WarnContext(ctx, "failed to record issuance notification",
				"error", err,
				"token_id", cert.TokenID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	s.logger.InfoContext(ctx, "certificate issued",
		"token_id", cert.TokenID.String(),
		"issuer", caller.String(),
		"recipient", recipient.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.CertificatesIssued.Inc()
	}
	return cert, nil
}

// Verify returns the certificate record for token. Existence is delegated to
// the token ledger; a minted token without a record is an internal invariant
// breach, not a not-found.
func (s *Service) Verify(ctx context.Context, token id.TokenID) (*models.Certificate, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveVerify(start)
		}
	}()

	exists, err := s.ledger.Exists(ctx, token)
	if err != nil {
		s.countVerification("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check certificate existence")
	}
	if !exists {
		s.countVerification("not_found")
		return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
	}

	cert, err := s.records.Get(ctx, token)
	if err != nil {
		s.countVerification("error")
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "minted token has no certificate record",
				"token_id", token.String(),
			)
			return nil, dErrors.New(dErrors.CodeInternal, "certificate record missing for minted token")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate record")
	}

	s.countVerification("found")
	return cert, nil
}

func (s *Service) countRejection(reason string) {
	if s.metrics != nil {
		s.metrics.IssuanceRejected.WithLabelValues(reason).Inc()
	}
}

func (s *Service) countVerification(outcome string) {
	if s.metrics != nil {
		s.metrics.VerificationRequests.WithLabelValues(outcome).Inc()
	}
}

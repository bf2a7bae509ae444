// Package service orchestrates the issuer allow-list: grants, revocations,
// and the authorization checks the issuance path depends on.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"certreg/internal/events"
	issuermetrics "certreg/internal/issuer/metrics"
	"certreg/internal/issuer/models"
	"certreg/internal/storetx"
	id "certreg/pkg/domain"
	dErrors "certreg/pkg/domain-errors"
	"certreg/pkg/platform/sentinel"
	"certreg/pkg/requestcontext"
)

// IssuerStore persists the allow-list. Unknown identities must report as
// unauthorized rather than as errors.
type IssuerStore interface {
	SetAuthorized(ctx context.Context, identity id.Identity, authorized bool, now time.Time) error
	IsAuthorized(ctx context.Context, identity id.Identity) (bool, error)
	Find(ctx context.Context, identity id.Identity) (*models.Issuer, error)
	List(ctx context.Context) ([]*models.Issuer, error)
}

// Notifier publishes registry notifications.
type Notifier interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service owns grant/revoke decisions. Only the configured owner identity may
// mutate the allow-list; the check runs before any state is touched.
type Service struct {
	owner    id.Identity
	issuers  IssuerStore
	tx       storetx.StoreTx
	notifier Notifier
	logger   *slog.Logger
	metrics  *issuermetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithMetrics(m *issuermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service. The tx boundary must be the same instance the
// certificate service uses so allow-list changes serialize with issuance.
func New(owner id.Identity, issuers IssuerStore, tx storetx.StoreTx, opts ...Option) *Service {
	s := &Service{owner: owner, issuers: issuers, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Grant authorizes identity to issue certificates. Re-granting an already
// authorized issuer succeeds and still raises a notification.
func (s *Service) Grant(ctx context.Context, identity id.Identity) error {
	return s.setAuthorization(ctx, identity, true)
}

// Revoke removes identity from the allow-list. Revoking an identity that was
// never authorized succeeds and still raises a notification.
func (s *Service) Revoke(ctx context.Context, identity id.Identity) error {
	return s.setAuthorization(ctx, identity, false)
}

func (s *Service) setAuthorization(ctx context.Context, identity id.Identity, authorized bool) error {
	if err := s.requireOwner(ctx); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.issuers.SetAuthorized(txCtx, identity, authorized, requestcontext.Now(txCtx)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update issuer authorization")
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Notify only once the change has committed; a rolled-back grant must
	// never be observable downstream.
	s.emit(ctx, identity, authorized)

	s.logger.InfoContext(ctx, "issuer authorization updated",
		"issuer", identity.String(),
		"authorized", authorized,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.countAuthorizationChange(authorized)
	return nil
}

// IsAuthorized reports whether identity may issue certificates.
func (s *Service) IsAuthorized(ctx context.Context, identity id.Identity) (bool, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveAuthCheck(start)
		}
	}()

	authorized, err := s.issuers.IsAuthorized(ctx, identity)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check issuer authorization")
	}
	return authorized, nil
}

// Get returns the issuer row for identity. Owner-only.
func (s *Service) Get(ctx context.Context, identity id.Identity) (*models.Issuer, error) {
	if err := s.requireOwner(ctx); err != nil {
		return nil, err
	}

	issuer, err := s.issuers.Find(ctx, identity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "issuer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load issuer")
	}
	return issuer, nil
}

// List returns every issuer row. Owner-only.
func (s *Service) List(ctx context.Context) ([]*models.Issuer, error) {
	if err := s.requireOwner(ctx); err != nil {
		return nil, err
	}

	issuers, err := s.issuers.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list issuers")
	}
	return issuers, nil
}

func (s *Service) requireOwner(ctx context.Context) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() || caller != s.owner {
		if s.metrics != nil {
			s.metrics.UnauthorizedAdminCalls.Inc()
		}
		s.logger.WarnContext(ctx, "admin operation rejected",
			"caller", caller.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the registry owner")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, identity id.Identity, authorized bool) {
	if s.notifier == nil {
		return
	}
	event := events.IssuerRevoked(identity)
	if authorized {
		event = events.IssuerApproved(identity)
	}
	// The allow-list change is already durable; a notification failure is
	// logged rather than surfaced.
	if err := s.notifier.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record issuer notification",
			"error", err,
			"issuer", identity.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) countAuthorizationChange(authorized bool) {
	if s.metrics == nil {
		return
	}
	if authorized {
		s.metrics.IssuersGranted.Inc()
	} else {
		s.metrics.IssuersRevoked.Inc()
	}
}

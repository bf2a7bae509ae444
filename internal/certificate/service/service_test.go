package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certreg/internal/certificate/service"
	"certreg/internal/certificate/store"
	"certreg/internal/events"
	issuerstore "certreg/internal/issuer/store"
	"certreg/internal/ledger"
	"certreg/internal/sequence"
	"certreg/internal/storetx"
	id "certreg/pkg/domain"
	dErrors "certreg/pkg/domain-errors"
	"certreg/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite

	records   *store.MemoryStore
	issuers   *issuerstore.MemoryStore
	allocator *sequence.Memory
	ledger    *ledger.MemoryLedger
	notifier  *events.Publisher
	notified  *events.InMemoryStore
	svc       *service.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.records = store.NewMemory()
	s.issuers = issuerstore.NewMemory()
	s.allocator = sequence.NewMemory()
	s.ledger = ledger.NewMemory()
	s.notified = events.NewInMemoryStore()
	s.notifier = events.NewPublisher(s.notified)
	s.svc = service.New(s.records, s.issuers, s.allocator, s.ledger, storetx.NewInMemory(),
		service.WithNotifier(s.notifier),
	)
}

func (s *ServiceSuite) authorize(issuer id.Identity) {
	s.Require().NoError(s.issuers.SetAuthorized(context.Background(), issuer, true, time.Now()))
}

func (s *ServiceSuite) issuerCtx(issuer id.Identity) context.Context {
	return requestcontext.WithCaller(context.Background(), issuer)
}

func (s *ServiceSuite) TestFirstCertificateGetsIdentifierZero() {
	s.authorize("university-a")

	cert, err := s.svc.Issue(s.issuerCtx("university-a"), "alice", "Distributed Systems")
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), cert.TokenID)
	s.Equal(id.Identity("alice"), cert.Recipient)
	s.Equal(id.Identity("university-a"), cert.Issuer)
	s.Equal("Distributed Systems", cert.Course)
}

func (s *ServiceSuite) TestIdentifiersStrictlyIncrease() {
	s.authorize("university-a")
	ctx := s.issuerCtx("university-a")

	for want := uint64(0); want < 4; want++ {
		cert, err := s.svc.Issue(ctx, "alice", "Course")
		s.Require().NoError(err)
		s.Equal(id.TokenID(want), cert.TokenID)
	}
}

func (s *ServiceSuite) TestUnauthorizedIssuerDoesNotAdvanceAllocator() {
	s.authorize("university-a")

	_, err := s.svc.Issue(s.issuerCtx("intruder"), "alice", "Course")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	cert, err := s.svc.Issue(s.issuerCtx("university-a"), "alice", "Course")
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), cert.TokenID, "rejected call must not consume an identifier")
}

func (s *ServiceSuite) TestAnonymousCallerIsRejected() {
	_, err := s.svc.Issue(context.Background(), "alice", "Course")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestRevokedIssuerCannotIssue() {
	s.authorize("university-a")
	ctx := s.issuerCtx("university-a")

	_, err := s.svc.Issue(ctx, "alice", "Course")
	s.Require().NoError(err)

	s.Require().NoError(s.issuers.SetAuthorized(context.Background(), "university-a", false, time.Now()))

	_, err = s.svc.Issue(ctx, "bob", "Course")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestIssuedCertificatesSurviveIssuerRevocation() {
	s.authorize("university-a")
	ctx := s.issuerCtx("university-a")

	first, err := s.svc.Issue(ctx, "alice", "Algorithms")
	s.Require().NoError(err)
	second, err := s.svc.Issue(ctx, "bob", "Compilers")
	s.Require().NoError(err)

	s.Require().NoError(s.issuers.SetAuthorized(context.Background(), "university-a", false, time.Now()))

	for _, issued := range []id.TokenID{first.TokenID, second.TokenID} {
		got, err := s.svc.Verify(context.Background(), issued)
		s.Require().NoError(err)
		s.Equal(id.Identity("university-a"), got.Issuer, "record keeps naming the original issuer")
	}
	s.Equal(id.Identity("alice"), first.Recipient)
	s.Equal(id.Identity("bob"), second.Recipient)
}

func (s *ServiceSuite) TestInvalidCourseRejectedBeforeAllocation() {
	s.authorize("university-a")
	ctx := s.issuerCtx("university-a")

	for name, course := range map[string]string{
		"empty":      "",
		"whitespace": "   \t",
		"oversized":  string(make([]byte, 300)),
	} {
		s.Run(name, func() {
			_, err := s.svc.Issue(ctx, "alice", course)
			s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	cert, err := s.svc.Issue(ctx, "alice", "Valid Course")
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), cert.TokenID)
}

func (s *ServiceSuite) TestCourseIsTrimmed() {
	s.authorize("university-a")

	cert, err := s.svc.Issue(s.issuerCtx("university-a"), "alice", "  Algorithms  ")
	s.Require().NoError(err)
	s.Equal("Algorithms", cert.Course)
}

func (s *ServiceSuite) TestIssueStampsRequestTime() {
	s.authorize("university-a")
	now := time.Date(2026, 7, 4, 8, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.issuerCtx("university-a"), now)

	cert, err := s.svc.Issue(ctx, "alice", "Course")
	s.Require().NoError(err)
	s.Equal(now, cert.IssuedAt)
}

func (s *ServiceSuite) TestIssueEmitsNotification() {
	s.authorize("university-a")

	cert, err := s.svc.Issue(s.issuerCtx("university-a"), "alice", "Course")
	s.Require().NoError(err)

	stored, err := s.notified.List(context.Background())
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal(events.TypeCertificateIssued, stored[0].Type)
	s.Equal(cert.TokenID, stored[0].TokenID)
	s.Equal(id.Identity("alice"), stored[0].Recipient)
	s.Equal(id.Identity("university-a"), stored[0].Issuer)
}

// commitFailingTx runs the closure, then fails the way a transaction whose
// final commit is rejected does: the work is rolled back after fn succeeded.
type commitFailingTx struct{}

func (commitFailingTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return errors.New("commit failed")
}

func (s *ServiceSuite) TestCommitFailureEmitsNoNotification() {
	svc := service.New(s.records, s.issuers, s.allocator, s.ledger, commitFailingTx{},
		service.WithNotifier(s.notifier),
	)
	s.authorize("university-a")

	_, err := svc.Issue(s.issuerCtx("university-a"), "alice", "Algorithms")
	s.Require().Error(err)

	stored, err := s.notified.List(context.Background())
	s.Require().NoError(err)
	s.Empty(stored, "a rolled-back issuance must not be observable downstream")
}

func (s *ServiceSuite) TestIssueMintsLedgerToken() {
	s.authorize("university-a")

	cert, err := s.svc.Issue(s.issuerCtx("university-a"), "alice", "Course")
	s.Require().NoError(err)

	holder, err := s.ledger.HolderOf(context.Background(), cert.TokenID)
	s.Require().NoError(err)
	s.Equal(id.Identity("alice"), holder)
}

func (s *ServiceSuite) TestVerifyReturnsIssuedCertificate() {
	s.authorize("university-a")

	issued, err := s.svc.Issue(s.issuerCtx("university-a"), "alice", "Distributed Systems")
	s.Require().NoError(err)

	got, err := s.svc.Verify(context.Background(), issued.TokenID)
	s.Require().NoError(err)
	s.Equal(issued, got)
}

func (s *ServiceSuite) TestVerifyUnknownToken() {
	_, err := s.svc.Verify(context.Background(), 99)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestVerifyNeverIssuedIdentifierAfterIssuance() {
	s.authorize("university-a")

	_, err := s.svc.Issue(s.issuerCtx("university-a"), "alice", "Course")
	s.Require().NoError(err)

	_, err = s.svc.Verify(context.Background(), 1)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestConcurrentIssuanceYieldsUniqueIdentifiers() {
	s.authorize("university-a")
	s.authorize("university-b")

	const perIssuer = 20
	var wg sync.WaitGroup
	results := make(chan id.TokenID, perIssuer*2)
	errs := make(chan error, perIssuer*2)

	for _, issuer := range []id.Identity{"university-a", "university-b"} {
		wg.Add(1)
		go func(issuer id.Identity) {
			defer wg.Done()
			ctx := s.issuerCtx(issuer)
			for i := 0; i < perIssuer; i++ {
				cert, err := s.svc.Issue(ctx, "alice", "Course")
				if err != nil {
					errs <- err
					return
				}
				results <- cert.TokenID
			}
		}(issuer)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	seen := make(map[id.TokenID]struct{}, perIssuer*2)
	for tokenID := range results {
		_, dup := seen[tokenID]
		s.Require().False(dup, "identifier %s issued twice", tokenID)
		seen[tokenID] = struct{}{}
	}
	s.Len(seen, perIssuer*2)
}

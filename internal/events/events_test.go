package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certreg/internal/events"
	id "certreg/pkg/domain"
	"certreg/pkg/requestcontext"
)

type recordingSink struct {
	published []events.Event
	err       error
}

func (s *recordingSink) Publish(_ context.Context, event events.Event) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, event)
	return nil
}

type PublisherSuite struct {
	suite.Suite

	store     *events.InMemoryStore
	sink      *recordingSink
	publisher *events.Publisher
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = events.NewInMemoryStore()
	s.sink = &recordingSink{}
	s.publisher = events.NewPublisher(s.store, events.WithSink(s.sink))
}

func (s *PublisherSuite) TestEmitStampsTimestampAndRequestID() {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	err := s.publisher.Emit(ctx, events.IssuerApproved("alice"))
	s.Require().NoError(err)

	stored, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal(events.TypeIssuerApproved, stored[0].Type)
	s.Equal(now, stored[0].Timestamp)
	s.Equal("req-42", stored[0].RequestID)

	s.Require().Len(s.sink.published, 1)
	s.Equal(stored[0], s.sink.published[0])
}

func (s *PublisherSuite) TestEmitSwallowsSinkFailure() {
	s.sink.err = errors.New("broker down")

	err := s.publisher.Emit(context.Background(), events.IssuerRevoked("bob"))
	s.Require().NoError(err)

	stored, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Len(stored, 1)
}

func (s *PublisherSuite) TestCertificateIssuedCarriesAllFields() {
	event := events.CertificateIssued(7, "carol", "Distributed Systems", "issuer-1")

	err := s.publisher.Emit(context.Background(), event)
	s.Require().NoError(err)

	stored, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal(events.TypeCertificateIssued, stored[0].Type)
	s.Equal(id.TokenID(7), stored[0].TokenID)
	s.Equal(id.Identity("carol"), stored[0].Recipient)
	s.Equal("Distributed Systems", stored[0].Course)
	s.Equal(id.Identity("issuer-1"), stored[0].Issuer)
}

func (s *PublisherSuite) TestListReturnsCopy() {
	s.Require().NoError(s.publisher.Emit(context.Background(), events.IssuerApproved("alice")))

	first, err := s.store.List(context.Background())
	s.Require().NoError(err)
	first[0].Issuer = "mutated"

	second, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Equal(id.Identity("alice"), second[0].Issuer)
}

type syncSink struct {
	mu        sync.Mutex
	published []events.Event
}

func (s *syncSink) Publish(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, event)
	return nil
}

func (s *syncSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func TestWorkerDrainsInboxToSink(t *testing.T) {
	inbox := make(chan events.Event, 4)
	sink := &syncSink{}
	worker := events.NewWorker(sink, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- events.IssuerApproved("alice")
	inbox <- events.IssuerRevoked("alice")

	deadline := time.After(2 * time.Second)
	for sink.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("worker did not drain inbox in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestChannelSinkDropsWhenFull(t *testing.T) {
	inbox := make(chan events.Event, 1)
	sink := events.NewChannelSink(inbox, nil)

	if err := sink.Publish(context.Background(), events.IssuerApproved("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sink.Publish(context.Background(), events.IssuerApproved("b")); err != nil {
		t.Fatalf("drop should not error, got: %v", err)
	}
	if got := len(inbox); got != 1 {
		t.Fatalf("expected 1 buffered event, got %d", got)
	}
}

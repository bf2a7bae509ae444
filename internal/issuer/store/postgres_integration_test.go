//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certreg/internal/issuer/store"
	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
	"certreg/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Reset(context.Background()))
}

func (s *PostgresStoreSuite) TestUnknownIdentityIsUnauthorized() {
	authorized, err := s.store.IsAuthorized(context.Background(), "nobody")
	s.Require().NoError(err)
	s.False(authorized)
}

func (s *PostgresStoreSuite) TestSetAuthorizedUpserts() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.store.SetAuthorized(ctx, "university-a", true, now))

	authorized, err := s.store.IsAuthorized(ctx, "university-a")
	s.Require().NoError(err)
	s.True(authorized)

	later := now.Add(time.Hour)
	s.Require().NoError(s.store.SetAuthorized(ctx, "university-a", false, later))

	issuer, err := s.store.Find(ctx, "university-a")
	s.Require().NoError(err)
	s.False(issuer.Authorized)
	s.Equal(later, issuer.UpdatedAt.UTC())
}

func (s *PostgresStoreSuite) TestFindUnknownIdentity() {
	_, err := s.store.Find(context.Background(), "nobody")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrdersByIdentity() {
	ctx := context.Background()
	now := time.Now()

	s.Require().NoError(s.store.SetAuthorized(ctx, "charlie", true, now))
	s.Require().NoError(s.store.SetAuthorized(ctx, "alice", true, now))
	s.Require().NoError(s.store.SetAuthorized(ctx, "bob", false, now))

	issuers, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(issuers, 3)
	s.Equal(id.Identity("alice"), issuers[0].Identity)
	s.Equal(id.Identity("bob"), issuers[1].Identity)
	s.Equal(id.Identity("charlie"), issuers[2].Identity)
}

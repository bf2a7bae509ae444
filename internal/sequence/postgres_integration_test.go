//go:build integration

package sequence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"certreg/internal/sequence"
	id "certreg/pkg/domain"
	"certreg/pkg/testutil/containers"
)

type PostgresAllocatorSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	allocator *sequence.Postgres
}

func TestPostgresAllocatorSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAllocatorSuite))
}

func (s *PostgresAllocatorSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.allocator = sequence.NewPostgres(s.postgres.DB)
}

func (s *PostgresAllocatorSuite) SetupTest() {
	s.Require().NoError(s.postgres.Reset(context.Background()))
}

func (s *PostgresAllocatorSuite) TestStartsAtZeroAndIncrements() {
	ctx := context.Background()

	for want := uint64(0); want < 5; want++ {
		got, err := s.allocator.Next(ctx)
		s.Require().NoError(err)
		s.Equal(id.TokenID(want), got)
	}
}

func (s *PostgresAllocatorSuite) TestAllocationSurvivesRolledBackTransactions() {
	ctx := context.Background()

	first, err := s.allocator.Next(ctx)
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), first)

	// nextval is not transactional: a value consumed inside an aborted
	// transaction stays consumed, which preserves strict monotonicity.
	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	var wasted uint64
	s.Require().NoError(tx.QueryRowContext(ctx, "SELECT nextval('certificate_ids')").Scan(&wasted))
	s.Require().NoError(tx.Rollback())
	s.Equal(uint64(1), wasted)

	next, err := s.allocator.Next(ctx)
	s.Require().NoError(err)
	s.Equal(id.TokenID(2), next)
}

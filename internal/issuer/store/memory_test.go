package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"certreg/internal/issuer/store"
	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
)

func TestMemoryUnknownIdentityIsUnauthorized(t *testing.T) {
	s := store.NewMemory()

	authorized, err := s.IsAuthorized(context.Background(), "nobody")
	require.NoError(t, err)
	require.False(t, authorized)
}

func TestMemorySetAuthorizedUpserts(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.SetAuthorized(ctx, "alice", true, now))

	authorized, err := s.IsAuthorized(ctx, "alice")
	require.NoError(t, err)
	require.True(t, authorized)

	later := now.Add(time.Hour)
	require.NoError(t, s.SetAuthorized(ctx, "alice", false, later))

	issuer, err := s.Find(ctx, "alice")
	require.NoError(t, err)
	require.False(t, issuer.Authorized)
	require.Equal(t, later, issuer.UpdatedAt)
}

func TestMemoryFindUnknownIdentity(t *testing.T) {
	s := store.NewMemory()

	_, err := s.Find(context.Background(), "nobody")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryFindReturnsCopy(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, s.SetAuthorized(ctx, "alice", true, time.Now()))

	first, err := s.Find(ctx, "alice")
	require.NoError(t, err)
	first.Authorized = false

	second, err := s.Find(ctx, "alice")
	require.NoError(t, err)
	require.True(t, second.Authorized)
}

func TestMemoryListOrdersByIdentity(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.SetAuthorized(ctx, "charlie", true, now))
	require.NoError(t, s.SetAuthorized(ctx, "alice", true, now))
	require.NoError(t, s.SetAuthorized(ctx, "bob", false, now))

	issuers, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, issuers, 3)
	require.Equal(t, id.Identity("alice"), issuers[0].Identity)
	require.Equal(t, id.Identity("bob"), issuers[1].Identity)
	require.Equal(t, id.Identity("charlie"), issuers[2].Identity)
}

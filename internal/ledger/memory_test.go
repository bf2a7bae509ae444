package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"certreg/internal/ledger"
	id "certreg/pkg/domain"
	"certreg/pkg/platform/sentinel"
)

func TestMemoryMintAndExists(t *testing.T) {
	l := ledger.NewMemory()
	ctx := context.Background()

	exists, err := l.Exists(ctx, 0)
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, l.Mint(ctx, 0, "alice"))

	exists, err = l.Exists(ctx, 0)
	require.NoError(t, err)
	require.True(t, exists)

	holder, err := l.HolderOf(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, id.Identity("alice"), holder)
}

func TestMemoryMintRejectsRebinding(t *testing.T) {
	l := ledger.NewMemory()
	ctx := context.Background()

	require.NoError(t, l.Mint(ctx, 7, "alice"))

	err := l.Mint(ctx, 7, "bob")
	require.ErrorIs(t, err, sentinel.ErrConflict)

	holder, err := l.HolderOf(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, id.Identity("alice"), holder, "failed mint must not change the holder")
}

func TestMemoryHolderOfUnknownToken(t *testing.T) {
	l := ledger.NewMemory()

	_, err := l.HolderOf(context.Background(), 99)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryConcurrentMintSingleWinner(t *testing.T) {
	l := ledger.NewMemory()

	const contenders = 16
	var (
		wins int32
		mu   sync.Mutex
		wg   sync.WaitGroup
	)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := l.Mint(context.Background(), 1, id.Identity("holder-"+string(rune('a'+n))))
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			require.ErrorIs(t, err, sentinel.ErrConflict)
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, wins)
}

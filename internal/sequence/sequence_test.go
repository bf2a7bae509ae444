package sequence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"certreg/internal/sequence"
	id "certreg/pkg/domain"
)

func TestMemoryStartsAtZeroAndIncrements(t *testing.T) {
	allocator := sequence.NewMemory()

	for want := uint64(0); want < 5; want++ {
		got, err := allocator.Next(context.Background())
		require.NoError(t, err)
		require.Equal(t, id.TokenID(want), got)
	}
}

func TestMemoryNeverRepeatsUnderConcurrency(t *testing.T) {
	allocator := sequence.NewMemory()

	const workers = 16
	const perWorker = 100

	var (
		mu   sync.Mutex
		seen = make(map[id.TokenID]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				got, err := allocator.Next(context.Background())
				require.NoError(t, err)
				mu.Lock()
				_, dup := seen[got]
				seen[got] = struct{}{}
				mu.Unlock()
				require.False(t, dup, "identifier %d allocated twice", got)
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}

func TestMemoryRejectsCancelledContext(t *testing.T) {
	allocator := sequence.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := allocator.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewPool_AutoSize(t *testing.T) {
	t.Parallel()
	require.Equal(t, NumSystemCores(), NewPool(0).Workers())
	require.Equal(t, NumSystemCores(), NewPool(-3).Workers())
	require.Equal(t, 3, NewPool(3).Workers())
}

func TestPool_ForVisitsEveryIndex(t *testing.T) {
	t.Parallel()

	p := NewPool(4)
	var mu sync.Mutex
	seen := make(map[int]bool)
	err := p.For(context.Background(), 100, func(_ context.Context, i int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = true
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 100)
}

func TestPool_ForRespectsLimit(t *testing.T) {
	t.Parallel()

	p := NewPool(2)
	var inFlight, maxInFlight atomic.Int32
	err := p.For(context.Background(), 20, func(_ context.Context, _ int) error {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return nil
	})
	require.NoError(t, err)
	require.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestPool_ForReturnsFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := NewPool(1).For(context.Background(), 10, func(_ context.Context, i int) error {
		if i == 3 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestPool_Closed(t *testing.T) {
	t.Parallel()

	p := NewPool(1)
	p.Close()
	err := p.For(context.Background(), 1, func(context.Context, int) error { return nil })
	require.ErrorIs(t, err, ErrPoolClosed)
}

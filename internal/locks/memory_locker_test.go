package locks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_ExclusiveUntilRelease(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	lease, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, lease.Release(ctx))

	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.NoError(t, err)
}

func TestMemoryLocker_ExpiredLeaseCanBeTaken(t *testing.T) {
	l := NewMemoryLocker()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	// releasing the stale lease must not drop the fresh one
	require.NoError(t, stale.Release(ctx))
	_, err = l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, fresh.Release(ctx))
}

func TestMemoryLocker_ConcurrentAcquire(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	results := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := l.Acquire(ctx, "shared", time.Minute)
			results <- err == nil
		}()
	}

	wg.Wait()
	close(results)

	won := 0
	for ok := range results {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

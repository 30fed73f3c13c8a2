package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryReplayStore_Remember(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewInMemoryReplayStore(WithClock(clock.Now))
	defer store.Close()

	ctx := context.Background()

	t.Run("first presentation is new", func(t *testing.T) {
		isNew, err := store.Remember(ctx, "sig-1", 300*time.Second)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("repeat inside the window is rejected", func(t *testing.T) {
		clock.Advance(299 * time.Second)
		isNew, err := store.Remember(ctx, "sig-1", 300*time.Second)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("accepted again once the window has passed", func(t *testing.T) {
		clock.Advance(2 * time.Second)
		isNew, err := store.Remember(ctx, "sig-1", 300*time.Second)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryReplayStore_Seen(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewInMemoryReplayStore(WithClock(clock.Now))
	defer store.Close()

	ctx := context.Background()

	seen, err := store.Seen(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = store.Remember(ctx, "known", time.Minute)
	require.NoError(t, err)
	seen, _ = store.Seen(ctx, "known")
	assert.True(t, seen)

	clock.Advance(time.Minute)
	seen, _ = store.Seen(ctx, "known")
	assert.False(t, seen)
}

func TestInMemoryReplayStore_Cleanup(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	store := NewInMemoryReplayStore(WithClock(clock.Now))
	defer store.Close()

	ctx := context.Background()
	_, _ = store.Remember(ctx, "short", time.Second)
	_, _ = store.Remember(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	clock.Advance(2 * time.Second)
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryReplayStore_ConcurrentRemember(t *testing.T) {
	store := NewInMemoryReplayStore()
	defer store.Close()

	ctx := context.Background()
	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Remember(ctx, "same", time.Minute); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestInMemoryReplayStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryReplayStore(WithCleanupInterval(time.Millisecond))
	for i := 0; i < 3; i++ {
		assert.NoError(t, store.Close(), fmt.Sprintf("close #%d", i))
	}
}

package dedup

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAdmitsFirstOccurrence(t *testing.T) {
	store := NewMemoryStore(DefaultTTL, clockwork.NewFakeClock())

	added, err := store.CheckAndAdd(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestMemoryStoreSuppressesDuplicate(t *testing.T) {
	store := NewMemoryStore(DefaultTTL, clockwork.NewFakeClock())

	_, err := store.CheckAndAdd(context.Background(), "msg-1")
	require.NoError(t, err)

	added, err := store.CheckAndAdd(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestMemoryStoreDistinctIDsAreIndependent(t *testing.T) {
	store := NewMemoryStore(DefaultTTL, clockwork.NewFakeClock())

	added, err := store.CheckAndAdd(context.Background(), "msg-1")
	require.NoError(t, err)
	require.True(t, added)

	added, err = store.CheckAndAdd(context.Background(), "msg-2")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestMemoryStoreReadmitsAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(DefaultTTL, clock)

	_, err := store.CheckAndAdd(context.Background(), "msg-1")
	require.NoError(t, err)

	clock.Advance(DefaultTTL + time.Second)

	added, err := store.CheckAndAdd(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.True(t, added)
}

func TestMemoryStoreAdmitsAtMostOnceUnderConcurrency(t *testing.T) {
	store := NewMemoryStore(DefaultTTL, clockwork.NewFakeClock())

	const workers = 32
	var admitted atomic.Int32
	var wg sync.WaitGroup

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			added, err := store.CheckAndAdd(context.Background(), "contested")
			require.NoError(t, err)
			if added {
				admitted.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
}

func TestMemoryStoreEvictionFreesExpiredEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(DefaultTTL, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartEviction(ctx, time.Minute)

	_, err := store.CheckAndAdd(context.Background(), "msg-1")
	require.NoError(t, err)
	_, err = store.CheckAndAdd(context.Background(), "msg-2")
	require.NoError(t, err)
	require.Equal(t, 2, store.size())

	clock.BlockUntil(1)
	clock.Advance(DefaultTTL + time.Minute)

	assert.Eventually(t, func() bool {
		return store.size() == 0
	}, time.Second, 5*time.Millisecond)
}

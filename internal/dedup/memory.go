package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTTL keeps IDs comfortably past Twitch's 10-minute replay window.
const DefaultTTL = 15 * time.Minute

// SeenStore records webhook message IDs. CheckAndAdd must be atomic: for any
// ID, exactly one caller ever observes added == true.
type SeenStore interface {
	CheckAndAdd(ctx context.Context, messageID string) (added bool, err error)
}

// MemoryStore is an in-memory SeenStore with TTL eviction. The mutex is held
// only across the check-and-insert pair, never across I/O.
type MemoryStore struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	ttl   time.Duration
	clock clockwork.Clock
}

func NewMemoryStore(ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		seen:  make(map[string]time.Time),
		ttl:   ttl,
		clock: clock,
	}
}

// CheckAndAdd reports whether messageID was admitted. An ID already present
// and not yet expired is a duplicate.
func (s *MemoryStore) CheckAndAdd(_ context.Context, messageID string) (bool, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if admittedAt, ok := s.seen[messageID]; ok && now.Sub(admittedAt) < s.ttl {
		return false, nil
	}
	s.seen[messageID] = now
	return true, nil
}

// StartEviction sweeps expired IDs on the given interval until ctx is
// cancelled. Without the sweep, expired entries would still be replaced on
// re-admission but never freed.
func (s *MemoryStore) StartEviction(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := s.clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				s.evictExpired()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *MemoryStore) evictExpired() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, admittedAt := range s.seen {
		if now.Sub(admittedAt) >= s.ttl {
			delete(s.seen, id)
		}
	}
}

// size is a test hook.
func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

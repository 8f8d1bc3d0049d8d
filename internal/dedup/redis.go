package dedup

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore is a SeenStore backed by Redis SETNX with a TTL, so the
// check-and-insert is atomic across instances.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) CheckAndAdd(ctx context.Context, messageID string) (bool, error) {
	added, err := s.rdb.SetNX(ctx, seenKey(messageID), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check message id: %w", err)
	}
	return added, nil
}

func seenKey(messageID string) string {
	return "eventsub:seen:" + messageID
}

package presence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:agent:"

// RedisStore backs presence with a shared key-value store so multiple router
// replicas observe the same state.
//
// Entries carry a TTL: an agent whose client died without reporting offline
// converges to "no record" instead of staying ready forever.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Set(ctx context.Context, identity string, status Status) error {
	return s.rdb.Set(ctx, keyPrefix+identity, string(status), s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, identity string) (Status, bool, error) {
	v, err := s.rdb.Get(ctx, keyPrefix+identity).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return Status(v), true, nil
}

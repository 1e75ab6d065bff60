package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultTokenKey is where the serialized token lives in Redis.
const defaultTokenKey = "scribe:session:token"

// RedisStore persists the token in Redis with a TTL matching its
// expiry, so stale tokens evict themselves.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore wraps an existing Redis client. An empty key selects
// the default.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultTokenKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Save(ctx context.Context, tok AccessToken) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	ttl := time.Until(tok.ExpiresAt)
	if ttl <= 0 {
		// Already expired, nothing worth keeping.
		return s.Clear(ctx)
	}
	if err := s.rdb.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (AccessToken, bool, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return AccessToken{}, false, nil
	}
	if err != nil {
		return AccessToken{}, false, fmt.Errorf("redis get: %w", err)
	}
	var tok AccessToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return AccessToken{}, false, fmt.Errorf("unmarshal token: %w", err)
	}
	return tok, true, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

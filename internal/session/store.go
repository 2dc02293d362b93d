package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a session record does not exist or expired.
var ErrNotFound = errors.New("session: not found")

// Store persists session records plus durable per-user flags (the permanent
// tier of banner dismissals). Implementations: Redis and in-memory.
type Store interface {
	Save(ctx context.Context, rec *Record, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error

	SetFlag(ctx context.Context, scope, key string) error
	HasFlag(ctx context.Context, scope, key string) (bool, error)
	ClearFlags(ctx context.Context, scope string) error
}

// RedisStore keeps sessions in Redis with the session TTL as key expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a Redis client as a session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string { return "session:" + id }
func flagKey(scope string) string { return "flags:" + scope }

func (s *RedisStore) Save(ctx context.Context, rec *Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: encode record: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(rec.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("session: save record: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("session: decode record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session: delete record: %w", err)
	}
	return nil
}

func (s *RedisStore) SetFlag(ctx context.Context, scope, key string) error {
	if err := s.client.SAdd(ctx, flagKey(scope), key).Err(); err != nil {
		return fmt.Errorf("session: set flag: %w", err)
	}
	return nil
}

func (s *RedisStore) HasFlag(ctx context.Context, scope, key string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, flagKey(scope), key).Result()
	if err != nil {
		return false, fmt.Errorf("session: read flag: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) ClearFlags(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, flagKey(scope)).Err(); err != nil {
		return fmt.Errorf("session: clear flags: %w", err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/servana-inc/servana/internal/domain/flow"
)

// RedisCallbackSessionStore parks completed logins in Redis until the
// frontend redeems them. The pickup token works once; the TTL is short
// because a healthy frontend redeems within seconds.
type RedisCallbackSessionStore struct {
	client *redis.Client
	prefix string // key prefix, e.g., "auth:cbsession:"
	ttl    time.Duration
}

// NewRedisCallbackSessionStore creates a new RedisCallbackSessionStore instance.
func NewRedisCallbackSessionStore(client *redis.Client, prefix string, ttl time.Duration) *RedisCallbackSessionStore {
	return &RedisCallbackSessionStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Put stores a callback session under its pickup token.
func (s *RedisCallbackSessionStore) Put(ctx context.Context, token string, session flow.CallbackSession) error {
	if token == "" {
		return errors.New("pickup token cannot be empty")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal callback session: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+token, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store callback session in redis: %w", err)
	}

	return nil
}

// Consume atomically redeems and deletes a callback session. A missing or
// replayed token returns (nil, nil).
func (s *RedisCallbackSessionStore) Consume(ctx context.Context, token string) (*flow.CallbackSession, error) {
	if token == "" {
		return nil, nil
	}

	data, err := s.client.GetDel(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve callback session from redis: %w", err)
	}

	var session flow.CallbackSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal callback session: %w", err)
	}

	return &session, nil
}

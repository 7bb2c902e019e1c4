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

// RedisStateStore keeps anti-CSRF state records in Redis. Expiry rides on
// the key TTL, so abandoned flows clean themselves up.
type RedisStateStore struct {
	client *redis.Client
	prefix string // key prefix, e.g., "auth:state:"
	ttl    time.Duration
}

// NewRedisStateStore creates a new RedisStateStore instance.
// Parameters:
//   - client: Redis client instance
//   - prefix: key prefix for namespacing (e.g., "auth:state:")
//   - ttl: time-to-live for state keys (recommended: 10 minutes)
func NewRedisStateStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Put stores a state record under its token with the configured TTL.
func (s *RedisStateStore) Put(ctx context.Context, token string, record flow.StateRecord) error {
	if token == "" {
		return errors.New("state token cannot be empty")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal state record: %w", err)
	}

	if err := s.client.Set(ctx, s.buildKey(token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store state in redis: %w", err)
	}

	return nil
}

// Consume retrieves and deletes the record in one atomic GETDEL, so a
// token can only ever be redeemed once even under concurrent callbacks.
// A missing, expired, or already-used token returns (nil, nil).
func (s *RedisStateStore) Consume(ctx context.Context, token string) (*flow.StateRecord, error) {
	if token == "" {
		return nil, nil
	}

	data, err := s.client.GetDel(ctx, s.buildKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve state from redis: %w", err)
	}

	var record flow.StateRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state record: %w", err)
	}
	record.Token = token

	return &record, nil
}

// Delete removes a state record without reading it.
func (s *RedisStateStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.buildKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete state from redis: %w", err)
	}
	return nil
}

func (s *RedisStateStore) buildKey(token string) string {
	return s.prefix + token
}

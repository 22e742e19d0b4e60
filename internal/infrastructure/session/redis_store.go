package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"discord-auth-gateway/internal/domain"
	"discord-auth-gateway/internal/ports"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore implements SessionStore on a Redis key-value backend.
// Sessions are stored as JSON blobs with the configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) ports.SessionStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Get loads the session for the given id. An unknown id yields a fresh
// session bound to that id.
func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return &domain.Session{ID: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

// Save persists the session, resetting its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telemed-chat/internal/session"

	goredis "github.com/redis/go-redis/v9"
)

// Session key pattern:
// - chat:session:{session_id} - hash of attributes, sliding TTL

// SessionStore keeps session attributes in one Redis hash per session.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSessionStore(client *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s", sessionID)
}

func (s *SessionStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	if sessionID == "" {
		return "", false, session.ErrInvalidID
	}
	value, err := s.client.HGet(ctx, sessionKey(sessionID), key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session attribute: %w", err)
	}
	return value, true, nil
}

func (s *SessionStore) Set(ctx context.Context, sessionID, key, value string) error {
	if sessionID == "" {
		return session.ErrInvalidID
	}
	k := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session attribute: %w", err)
	}
	return nil
}

// Touch refreshes the session TTL. Missing sessions are left alone.
func (s *SessionStore) Touch(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return session.ErrInvalidID
	}
	if s.ttl <= 0 {
		return nil
	}
	if err := s.client.Expire(ctx, sessionKey(sessionID), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	return nil
}

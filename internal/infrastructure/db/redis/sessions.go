package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry tracks live session tokens by jti.
// Key format: session:<jti> → identity id, expiring with the token TTL.
type SessionRegistry struct {
	client *redis.Client
}

// NewSessionRegistry creates a SessionRegistry wrapping the given Redis client.
func NewSessionRegistry(client *redis.Client) *SessionRegistry {
	return &SessionRegistry{client: client}
}

// Add registers a session. The key expires with the token, so abandoned
// sessions age out without an explicit sign-out.
func (s *SessionRegistry) Add(ctx context.Context, jti, uid string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(jti), uid, ttl).Err()
}

// Exists reports whether the session is still live.
func (s *SessionRegistry) Exists(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("session check: %w", err)
	}
	return n > 0, nil
}

// Remove revokes a session. Removing an unknown session is not an error.
func (s *SessionRegistry) Remove(ctx context.Context, jti string) error {
	return s.client.Del(ctx, s.key(jti)).Err()
}

func (s *SessionRegistry) key(jti string) string {
	return "session:" + jti
}

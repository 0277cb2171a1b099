package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRevoker tracks logged-out session IDs in redis so a stolen cookie
// dies with the logout. Without redis configured, logout still clears the
// cookie; the token simply runs out its TTL.
type SessionRevoker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRevoker(client *redis.Client, ttl time.Duration) *SessionRevoker {
	return &SessionRevoker{client: client, ttl: ttl}
}

func (r *SessionRevoker) Revoke(ctx context.Context, sessionID string) error {
	if r == nil || r.client == nil || sessionID == "" {
		return nil
	}
	return r.client.Set(ctx, revokedSessionKey(sessionID), "1", r.ttl).Err()
}

func (r *SessionRevoker) Revoked(ctx context.Context, sessionID string) (bool, error) {
	if r == nil || r.client == nil || sessionID == "" {
		return false, nil
	}
	_, err := r.client.Get(ctx, revokedSessionKey(sessionID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func revokedSessionKey(sessionID string) string {
	return fmt.Sprintf("revoked_session:%s", sessionID)
}

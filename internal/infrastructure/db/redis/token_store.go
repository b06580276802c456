package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/garagecrm/access-api/internal/core/ports"
)

// TokenStore keeps revoked session token ids in Redis until the token would
// have expired anyway.
// Key format: revoked:<jti>
type TokenStore struct {
	client *redis.Client
}

var _ ports.TokenStore = (*TokenStore)(nil)

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op since
// the token is already expired.
func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *TokenStore) key(jti string) string {
	return "revoked:" + jti
}

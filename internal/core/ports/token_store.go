package ports

import (
	"context"
	"time"
)

// TokenStore keeps the ids of revoked session tokens until they expire.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

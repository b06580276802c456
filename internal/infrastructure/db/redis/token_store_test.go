package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client), mr
}

func TestTokenStore_RevokeUntilExpiry(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh token reported revoked=%v err=%v", revoked, err)
	}

	if err := store.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !mr.Exists("revoked:jti-1") {
		t.Fatalf("expected key revoked:jti-1")
	}
	if ttl := mr.TTL("revoked:jti-1"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}

	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v err=%v", revoked, err)
	}

	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("expected revocation to lapse, got %v err=%v", revoked, err)
	}
}

func TestTokenStore_ExpiredTokenIsNotStored(t *testing.T) {
	store, mr := newStore(t)
	if err := store.Revoke(context.Background(), "jti-2", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if mr.Exists("revoked:jti-2") {
		t.Fatalf("expired token should not be stored")
	}
}

func TestTokenStore_Unavailable(t *testing.T) {
	store, mr := newStore(t)
	mr.Close()

	if _, err := store.IsRevoked(context.Background(), "jti-3"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := Connect(context.Background(), Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	_ = client.Close()

	mr.Close()
	if _, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond}); err == nil {
		t.Fatalf("expected ping failure against a closed server")
	}
}

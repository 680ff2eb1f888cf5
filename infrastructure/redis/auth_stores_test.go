package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"task-api/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := NewClient(&config.RedisConfig{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestOAuthStateStoreSingleUse(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewOAuthStateStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, "abc", 5*time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists(oauthStatePrefix + "abc") {
		t.Fatal("state key not written")
	}

	ok, err := store.Consume(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("Consume = %v, %v; want true", ok, err)
	}

	ok, err = store.Consume(ctx, "abc")
	if err != nil || ok {
		t.Fatalf("second Consume = %v, %v; want false", ok, err)
	}
}

func TestOAuthStateStoreExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewOAuthStateStore(client)
	ctx := context.Background()

	_ = store.Save(ctx, "abc", time.Minute)
	mr.FastForward(2 * time.Minute)

	if ok, _ := store.Consume(ctx, "abc"); ok {
		t.Fatal("expired state accepted")
	}
}

func TestTokenRevocationStore(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewTokenRevocationStore(client)
	ctx := context.Background()

	if err := store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, err := store.IsRevoked(ctx, "jti-1"); err != nil || !revoked {
		t.Fatalf("IsRevoked = %v, %v", revoked, err)
	}
	if revoked, _ := store.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatal("unknown jti reported revoked")
	}

	mr.FastForward(2 * time.Hour)
	if revoked, _ := store.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatal("revocation outlived token expiry")
	}

	if err := store.Revoke(ctx, "old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke expired: %v", err)
	}
	if mr.Exists(revokedTokenPrefix + "old") {
		t.Fatal("already-expired token should not be stored")
	}
}

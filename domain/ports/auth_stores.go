package ports

import (
	"context"
	"time"
)

// OAuthStateStore keeps the anti-CSRF state issued with a Google consent redirect.
type OAuthStateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume reports whether state was issued and not yet used, and forgets it.
	Consume(ctx context.Context, state string) (bool, error)
}

// TokenRevocationStore remembers logged-out token ids until they would have expired.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

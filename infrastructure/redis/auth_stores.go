package redis

import (
	"context"
	"time"

	"task-api/domain/ports"
)

const (
	oauthStatePrefix   = "oauth:state:"
	revokedTokenPrefix = "auth:revoked:"
)

// OAuthStateStore keeps Google login states as single-use keys with a TTL.
type OAuthStateStore struct {
	client *Client
}

func NewOAuthStateStore(client *Client) *OAuthStateStore {
	return &OAuthStateStore{client: client}
}

var _ ports.OAuthStateStore = (*OAuthStateStore)(nil)

func (s *OAuthStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.SetEx(ctx, oauthStatePrefix+state, "1", ttl)
}

func (s *OAuthStateStore) Consume(ctx context.Context, state string) (bool, error) {
	_, ok, err := s.client.GetDel(ctx, oauthStatePrefix+state)
	return ok, err
}

// TokenRevocationStore keeps revoked jtis until the token's own expiry.
type TokenRevocationStore struct {
	client *Client
	now    func() time.Time
}

func NewTokenRevocationStore(client *Client) *TokenRevocationStore {
	return &TokenRevocationStore{client: client, now: time.Now}
}

var _ ports.TokenRevocationStore = (*TokenRevocationStore)(nil)

func (s *TokenRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.client.SetEx(ctx, revokedTokenPrefix+jti, "1", ttl)
}

func (s *TokenRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.client.Exists(ctx, revokedTokenPrefix+jti)
}

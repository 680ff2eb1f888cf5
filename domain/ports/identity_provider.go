package ports

import (
	"context"

	"task-api/domain/dto"
)

// GoogleIdentityProvider wraps the Google OAuth2 handshake.
type GoogleIdentityProvider interface {
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the verified identity in its id_token.
	Exchange(ctx context.Context, code string) (*dto.GoogleUserInfo, error)
	VerifyIDToken(ctx context.Context, idToken string) (*dto.GoogleUserInfo, error)
}

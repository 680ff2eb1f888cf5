// Package google implements the Google OAuth2 login: consent URL, code exchange
// and id_token verification against Google's published keys.
package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"task-api/domain/dto"
	"task-api/domain/ports"
	"task-api/pkg/logger"
)

var validIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

var (
	ErrMissingIDToken = errors.New("token response has no id_token")
	ErrInvalidIDToken = errors.New("invalid google id_token")
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	JWKSURL      string
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

type Provider struct {
	oauth   *oauth2.Config
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	jwks    *keyfunc.JWKS
	now     func() time.Time
}

var _ ports.GoogleIdentityProvider = (*Provider)(nil)

// NewProvider fetches Google's JWKS and keeps it refreshed until ctx is done.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			logger.Warn("Google JWKS refresh failed", "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load google jwks: %w", err)
	}

	p := newProvider(cfg, googleoauth.Endpoint, jwks.Keyfunc)
	p.jwks = jwks
	return p, nil
}

func newProvider(cfg Config, endpoint oauth2.Endpoint, kf jwt.Keyfunc) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		keyfunc: kf,
		parser:  jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
		now:     time.Now,
	}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *Provider) Exchange(ctx context.Context, code string) (*dto.GoogleUserInfo, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", err)
	}

	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, ErrMissingIDToken
	}
	return p.VerifyIDToken(ctx, raw)
}

// VerifyIDToken checks signature, audience, issuer and expiry.
func (p *Provider) VerifyIDToken(ctx context.Context, raw string) (*dto.GoogleUserInfo, error) {
	var claims idTokenClaims
	token, err := p.parser.ParseWithClaims(raw, &claims, p.keyfunc)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	if !claims.VerifyAudience(p.oauth.ClientID, true) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidIDToken)
	}
	if !validIssuers[claims.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, claims.Issuer)
	}
	if !claims.VerifyExpiresAt(p.now(), true) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidIDToken)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", ErrInvalidIDToken)
	}

	return &dto.GoogleUserInfo{
		ID:            claims.Subject,
		Email:         claims.Email,
		VerifiedEmail: claims.EmailVerified,
		Name:          claims.Name,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
		Picture:       claims.Picture,
	}, nil
}

// Close stops the background JWKS refresh.
func (p *Provider) Close() {
	if p.jwks != nil {
		p.jwks.EndBackground()
	}
}

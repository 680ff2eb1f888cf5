package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

const testKID = "test-key"

type signer struct {
	key *rsa.PrivateKey
}

func newSigner(t *testing.T) *signer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &signer{key: key}
}

func (s *signer) keyfunc() jwt.Keyfunc {
	jwks := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		testKID: keyfunc.NewGivenRSACustomWithOptions(&s.key.PublicKey, keyfunc.GivenKeyOptions{Algorithm: "RS256"}),
	})
	return jwks.Keyfunc
}

func (s *signer) sign(t *testing.T, claims idTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	signed, err := token.SignedString(s.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func validClaims() idTokenClaims {
	return idTokenClaims{
		Email:         "alice@example.com",
		EmailVerified: true,
		GivenName:     "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "google-123",
			Issuer:    "https://accounts.google.com",
			Audience:  jwt.ClaimStrings{"client-id"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyIDToken(t *testing.T) {
	s := newSigner(t)
	p := newProvider(Config{ClientID: "client-id"}, oauth2.Endpoint{}, s.keyfunc())

	tests := []struct {
		name    string
		mutate  func(*idTokenClaims)
		wantErr bool
	}{
		{"valid", func(*idTokenClaims) {}, false},
		{"bare issuer", func(c *idTokenClaims) { c.Issuer = "accounts.google.com" }, false},
		{"wrong audience", func(c *idTokenClaims) { c.Audience = jwt.ClaimStrings{"other"} }, true},
		{"wrong issuer", func(c *idTokenClaims) { c.Issuer = "https://evil.example.com" }, true},
		{"expired", func(c *idTokenClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) }, true},
		{"no expiry", func(c *idTokenClaims) { c.ExpiresAt = nil }, true},
		{"no email", func(c *idTokenClaims) { c.Email = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(&claims)

			info, err := p.VerifyIDToken(context.Background(), s.sign(t, claims))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidIDToken) {
					t.Fatalf("err = %v, want ErrInvalidIDToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyIDToken: %v", err)
			}
			if info.ID != "google-123" || info.Email != "alice@example.com" || !info.VerifiedEmail {
				t.Fatalf("info = %+v", info)
			}
		})
	}
}

func TestVerifyIDTokenRejectsForeignKey(t *testing.T) {
	trusted := newSigner(t)
	attacker := newSigner(t)
	p := newProvider(Config{ClientID: "client-id"}, oauth2.Endpoint{}, trusted.keyfunc())

	if _, err := p.VerifyIDToken(context.Background(), attacker.sign(t, validClaims())); err == nil {
		t.Fatal("token signed by an unknown key was accepted")
	}
}

func TestExchange(t *testing.T) {
	s := newSigner(t)
	idToken := s.sign(t, validClaims())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "auth-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		})
	}))
	defer srv.Close()

	p := newProvider(
		Config{ClientID: "client-id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"},
		oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		s.keyfunc(),
	)

	info, err := p.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if info.ID != "google-123" {
		t.Fatalf("info = %+v", info)
	}

	if _, err := p.Exchange(context.Background(), "wrong"); err == nil {
		t.Fatal("expected exchange failure")
	}

	consent, _ := url.Parse(p.AuthCodeURL("state-1"))
	if consent.Query().Get("state") != "state-1" || consent.Query().Get("client_id") != "client-id" {
		t.Fatalf("consent url = %s", consent)
	}
}

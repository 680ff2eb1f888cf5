package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenManagerIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	userID := uuid.New()

	token, issued, err := m.Issue(userID, "alice", "alice@example.com", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.ID != issued.ID || claims.ID == "" {
		t.Fatalf("jti = %q, want %q", claims.ID, issued.ID)
	}

	caller, err := claims.Caller()
	if err != nil {
		t.Fatalf("Caller: %v", err)
	}
	if caller.UserID != userID || caller.Email != "alice@example.com" || caller.Username != "alice" {
		t.Fatalf("unexpected caller %+v", caller)
	}
}

func TestTokenManagerRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, err := m.Issue(uuid.New(), "bob", "bob@example.com", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	expired := NewTokenManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, _, err := expired.Issue(uuid.New(), "bob", "bob@example.com", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name    string
		manager *TokenManager
		token   string
		want    error
	}{
		{"empty", m, "", ErrMissingToken},
		{"garbage", m, "not-a-token", ErrInvalidToken},
		{"wrong secret", NewTokenManager("other", time.Hour), token, ErrInvalidToken},
		{"expired", m, oldToken, ErrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.Parse(tt.token)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"JWT abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
		{"Bearer a b", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := ExtractTokenFromHeader(tt.header); got != tt.want {
				t.Errorf("ExtractTokenFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"task-api/domain/access"
	"task-api/domain/services"
	"task-api/pkg/utils"
)

type stubResolver map[string]*access.Caller

func (r stubResolver) ResolveIdentity(_ context.Context, token string) (*access.Caller, error) {
	if token == "broken" {
		return nil, errors.New("redis down")
	}
	caller, ok := r[token]
	if !ok {
		return nil, services.ErrInvalidToken
	}
	return caller, nil
}

func newAuthApp(resolver services.IdentityResolver, protected bool) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{Authenticate(resolver)}
	if protected {
		handlers = append(handlers, Protected())
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		if caller := utils.GetCallerFromContext(c); caller != nil {
			return c.SendString(caller.Username + ":" + utils.GetTokenFromContext(c))
		}
		return c.SendString("anonymous")
	})
	app.Get("/", handlers...)
	return app
}

func TestAuthenticate(t *testing.T) {
	resolver := stubResolver{"good": {UserID: uuid.New(), Username: "alice"}}

	tests := []struct {
		name      string
		header    string
		protected bool
		want      int
	}{
		{"no header is anonymous", "", false, fiber.StatusOK},
		{"bearer token", "Bearer good", false, fiber.StatusOK},
		{"jwt scheme", "JWT good", true, fiber.StatusOK},
		{"unknown token", "Bearer nope", false, fiber.StatusUnauthorized},
		{"malformed header", "good", false, fiber.StatusUnauthorized},
		{"resolver failure", "Bearer broken", false, fiber.StatusInternalServerError},
		{"protected anonymous", "", true, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthApp(resolver, tt.protected)
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAuthenticateQuery(t *testing.T) {
	resolver := stubResolver{"good": {UserID: uuid.New(), Username: "alice"}}

	app := fiber.New()
	app.Get("/ws", AuthenticateQuery(resolver), Protected(), func(c *fiber.Ctx) error {
		return c.SendString(utils.GetCallerFromContext(c).Username)
	})

	tests := []struct {
		target string
		want   int
	}{
		{"/ws?token=good", fiber.StatusOK},
		{"/ws?token=bad", fiber.StatusUnauthorized},
		{"/ws", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.target, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.target, resp.StatusCode, tt.want)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.InternalServerErrorResponse(c)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(RequestIDHeader); got != "abc" {
		t.Fatalf("request id header = %q", got)
	}

	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Details["requestId"] != "abc" {
		t.Fatalf("500 details = %v, want the request id", body.Error.Details)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/", nil))
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Fatalf("generated request id is not a uuid: %v", err)
	}
}

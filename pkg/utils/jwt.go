package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"task-api/domain/access"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingToken = errors.New("missing token")
)

// Fiber locals set by the auth middleware.
const (
	CallerLocalsKey = "caller"
	TokenLocalsKey  = "token"
)

type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Caller converts verified claims into the identity the access policy works with.
func (c *JWTClaims) Caller() (*access.Caller, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &access.Caller{
		UserID:   userID,
		Username: c.Username,
		Email:    c.Email,
		Role:     c.Role,
	}, nil
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for the user. Every token carries a unique jti so it can be revoked.
func (m *TokenManager) Issue(userID uuid.UUID, username, email, role string) (string, *JWTClaims, error) {
	now := m.now()
	claims := &JWTClaims{
		UserID:   userID.String(),
		Username: username,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies signature and expiry. Tokens without exp or jti are rejected.
func (m *TokenManager) Parse(tokenString string) (*JWTClaims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractTokenFromHeader accepts "Bearer <token>" and the older "JWT <token>" scheme.
func ExtractTokenFromHeader(authHeader string) string {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 {
		return ""
	}
	switch strings.ToLower(parts[0]) {
	case "bearer", "jwt":
		return parts[1]
	default:
		return ""
	}
}

// GetCallerFromContext returns the authenticated caller, or nil for anonymous requests.
func GetCallerFromContext(c *fiber.Ctx) *access.Caller {
	caller, ok := c.Locals(CallerLocalsKey).(*access.Caller)
	if !ok {
		return nil
	}
	return caller
}

// GetTokenFromContext returns the raw bearer token that authenticated the request.
func GetTokenFromContext(c *fiber.Ctx) string {
	token, _ := c.Locals(TokenLocalsKey).(string)
	return token
}

package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"task-api/domain/services"
	"task-api/pkg/logger"
	"task-api/pkg/utils"
)

// Authenticate resolves an optional caller from the Authorization header.
// No header leaves the request anonymous; a header that does not resolve to
// an active user is rejected with 401.
func Authenticate(resolver services.IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Invalid authorization header format")
		}

		return authenticateToken(c, resolver, token)
	}
}

// AuthenticateQuery is Authenticate for clients that cannot set headers,
// such as browser websockets. The token may also come from ?token=.
func AuthenticateQuery(resolver services.IdentityResolver) fiber.Handler {
	header := Authenticate(resolver)
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "" {
			return header(c)
		}
		if token := c.Query("token"); token != "" {
			return authenticateToken(c, resolver, token)
		}
		return c.Next()
	}
}

func authenticateToken(c *fiber.Ctx, resolver services.IdentityResolver, token string) error {
	ctx := c.UserContext()

	caller, err := resolver.ResolveIdentity(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			return utils.UnauthorizedResponse(c, "Invalid or expired token")
		case errors.Is(err, services.ErrAccountDisabled):
			return utils.UnauthorizedResponse(c, "User account is disabled")
		default:
			logger.ErrorContext(ctx, "Failed to resolve identity", "error", err)
			return utils.InternalServerErrorResponse(c)
		}
	}

	c.Locals(utils.CallerLocalsKey, caller)
	c.Locals(utils.TokenLocalsKey, token)
	c.SetUserContext(logger.ContextWithUserID(ctx, caller.UserID.String()))

	return c.Next()
}

// Protected requires Authenticate to have resolved a caller.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if utils.GetCallerFromContext(c) == nil {
			return utils.UnauthorizedResponse(c, "")
		}
		return c.Next()
	}
}

package handlers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"task-api/domain/dto"
	"task-api/domain/models"
	"task-api/domain/services"
	"task-api/pkg/config"
	"task-api/pkg/logger"
	"task-api/pkg/utils"
)

type AuthHandler struct {
	userService  services.UserService
	googleConfig config.GoogleOAuthConfig
}

func NewAuthHandler(userService services.UserService, googleConfig config.GoogleOAuthConfig) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		googleConfig: googleConfig,
	}
}

// bind decodes and validates an auth request, writing the 400 response itself.
// It reports whether the handler should continue.
func bind(c *fiber.Ctx, req any) (bool, error) {
	fields, err := parseBody(c, req)
	if err != nil {
		return false, utils.BadRequestResponse(c, "Invalid request body")
	}
	if fields != nil {
		return false, utils.ValidationErrorResponse(c, fields)
	}
	if err := utils.ValidateStruct(req); err != nil {
		errs := utils.GetValidationErrors(err)
		logger.WarnContext(c.UserContext(), "Validation failed", "errors", errs)
		return false, utils.ValidationErrorResponse(c, errs)
	}
	return true, nil
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	token, user, err := h.userService.Register(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.CreatedResponse(c, authResponse(token, user))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	token, user, err := h.userService.Login(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, authResponse(token, user))
}

// Logout revokes the token that authenticated the request. Anonymous calls succeed too.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := utils.GetTokenFromContext(c); token != "" {
		if err := h.userService.Logout(c.UserContext(), token); err != nil {
			return h.respondError(c, err)
		}
	}

	return utils.SuccessResponse(c, dto.LogoutResponse{Message: "Successfully logged out."})
}

func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	var req dto.TokenVerifyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	if err := h.userService.VerifyToken(c.UserContext(), req.Token); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return utils.ValidationErrorResponse(c, map[string]string{"token": "Token is invalid or expired"})
		}
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TokenVerifyResponse{Token: req.Token})
}

func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	caller := utils.GetCallerFromContext(c)

	user, err := h.userService.GetProfile(c.UserContext(), caller.UserID)
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.UserToUserResponse(user))
}

func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	caller := utils.GetCallerFromContext(c)
	user, err := h.userService.UpdateProfile(c.UserContext(), caller.UserID, &req)
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.UserToUserResponse(user))
}

func (h *AuthHandler) DeleteUser(c *fiber.Ctx) error {
	caller := utils.GetCallerFromContext(c)

	if err := h.userService.DeleteUser(c.UserContext(), caller.UserID); err != nil {
		return h.respondError(c, err)
	}

	return utils.NoContentResponse(c)
}

// UploadAvatar replaces the caller's avatar with the multipart "avatar" file.
func (h *AuthHandler) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"avatar": "No file was submitted."})
	}

	file, err := fh.Open()
	if err != nil {
		logger.ErrorContext(c.UserContext(), "Failed to open uploaded avatar", "error", err)
		return utils.InternalServerErrorResponse(c)
	}
	defer file.Close()

	caller := utils.GetCallerFromContext(c)
	user, err := h.userService.UpdateAvatar(c.UserContext(), caller.UserID, file, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.UserToUserResponse(user))
}

// ========== Google OAuth ==========

// GoogleLogin redirects the browser to the Google consent screen.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	authURL, err := h.userService.BeginGoogleLogin(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

// GoogleCallback finishes the browser flow and hands the token to the frontend.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if errParam := c.Query("error"); errParam != "" {
		logger.WarnContext(ctx, "Google OAuth error", "error", errParam)
		return h.redirectLoginError(c, errParam)
	}

	code := c.Query("code")
	if code == "" {
		return h.redirectLoginError(c, "no_code")
	}

	token, user, err := h.userService.CompleteGoogleLogin(ctx, c.Query("state"), code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGoogleDisabled):
			return h.respondError(c, err)
		case errors.Is(err, services.ErrInvalidOAuthState):
			return h.redirectLoginError(c, "invalid_state")
		case errors.Is(err, services.ErrAccountDisabled):
			return h.redirectLoginError(c, "account_disabled")
		default:
			return h.redirectLoginError(c, "google_login_failed")
		}
	}

	logger.InfoContext(ctx, "Google auth successful", "user_id", user.ID)

	redirectURL := h.frontendURL() + "/auth/google/callback?token=" + url.QueryEscape(token) + "&user_id=" + user.ID.String()
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

// GoogleTokenLogin is social login for API clients holding a code or an id_token.
func (h *AuthHandler) GoogleTokenLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	token, user, err := h.userService.LoginWithGoogle(c.UserContext(), &req)
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, authResponse(token, user))
}

func (h *AuthHandler) frontendURL() string {
	return strings.TrimRight(h.googleConfig.FrontendURL, "/")
}

func (h *AuthHandler) redirectLoginError(c *fiber.Ctx, reason string) error {
	return c.Redirect(h.frontendURL()+"/login?error="+url.QueryEscape(reason), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationErrorResponse(c, verr.Fields)
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.UnauthorizedResponse(c, "Unable to log in with provided credentials.")
	case errors.Is(err, services.ErrAccountDisabled):
		return utils.UnauthorizedResponse(c, "User account is disabled.")
	case errors.Is(err, services.ErrInvalidToken):
		return utils.UnauthorizedResponse(c, "Invalid or expired token")
	case errors.Is(err, services.ErrUserExists):
		return utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		return utils.NotFoundResponse(c, "User not found")
	case errors.Is(err, services.ErrGoogleDisabled):
		return utils.NotFoundResponse(c, "Google login is not configured")
	default:
		logger.ErrorContext(c.UserContext(), "Auth request failed", "path", c.Path(), "error", err)
		return utils.InternalServerErrorResponse(c)
	}
}

func authResponse(token string, user *models.User) dto.AuthResponse {
	return dto.AuthResponse{Token: token, User: *dto.UserToUserResponse(user)}
}

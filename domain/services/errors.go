package services

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrUserExists         = errors.New("a user with that username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrAccountDisabled    = errors.New("user account is disabled")
	ErrGoogleDisabled     = errors.New("google login is not configured")
	ErrInvalidOAuthState  = errors.New("invalid oauth state")
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

package dto

// RegisterRequest mirrors the classic two-field password confirmation form.
type RegisterRequest struct {
	Username  string `json:"username" form:"username" validate:"required,max=150"`
	Email     string `json:"email" form:"email" validate:"required,email,max=255"`
	Password1 string `json:"password1" form:"password1" validate:"required,min=8,max=72"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password1"`
	FirstName string `json:"firstName" form:"firstName" validate:"omitempty,max=50"`
	LastName  string `json:"lastName" form:"lastName" validate:"omitempty,max=50"`
}

// LoginRequest identifies the account by username; email, when sent, must match it.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=150"`
	Email    string `json:"email" form:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" form:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type TokenVerifyRequest struct {
	Token string `json:"token" form:"token" validate:"required"`
}

type TokenVerifyResponse struct {
	Token string `json:"token"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

// ========== Google OAuth ==========

// GoogleLoginRequest is the API-client flavour of social login: either an
// authorization code to exchange or an id_token obtained by the client.
type GoogleLoginRequest struct {
	Code    string `json:"code" form:"code" validate:"required_without=IDToken"`
	IDToken string `json:"idToken" form:"idToken" validate:"required_without=Code"`
}

// GoogleUserInfo is the identity extracted from a verified Google id_token.
type GoogleUserInfo struct {
	ID            string `json:"sub"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

package auth

import (
	"time"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents a user registration response.
type RegisterResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a user login response with tokens.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse represents a token refresh response.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateProfileRequest represents a profile update request. Nil fields are
// left untouched. Categories must not carry omitempty: an explicit empty
// list clears the categories, and omitempty would drop it from the wire
// form, turning the clear into a no-op.
type UpdateProfileRequest struct {
	UserID      string   `json:"user_id"`
	DisplayName *string  `json:"display_name,omitempty"`
	Categories  []string `json:"categories"`
}

// ForgotPasswordRequest represents a password-reset issuance request.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse carries the issued token. The token is only ever
// handed to the mail delivery path, never echoed to the requester.
type ForgotPasswordResponse struct {
	Issued    bool      `json:"issued"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ResetPasswordRequest represents a password-reset completion request.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordResponse represents a password-reset completion response.
type ResetPasswordResponse struct {
	Reset bool `json:"reset"`
}

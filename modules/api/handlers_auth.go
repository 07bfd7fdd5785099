package api

import (
	domain "github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	authReq := auth.RegisterRequest{Email: req.Email, Password: req.Password}
	var resp auth.RegisterResponse
	if err := h.callAuth(c.UserContext(), "register", &authReq, &resp); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	authReq := auth.LoginRequest{Email: req.Email, Password: req.Password}
	var resp auth.LoginResponse
	if err := h.callAuth(c.UserContext(), "login", &authReq, &resp); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// Refresh handles token refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	authReq := auth.RefreshRequest{RefreshToken: req.RefreshToken}
	var resp auth.RefreshResponse
	if err := h.callAuth(c.UserContext(), "refresh-token", &authReq, &resp); err != nil {
		return unauthorized(c, "Invalid or expired refresh token")
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// ForgotPassword issues a password-reset token. The response is identical
// whether or not the email belongs to an account.
func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return badRequest(c, "Email is required")
	}

	authReq := auth.ForgotPasswordRequest{Email: req.Email}
	var resp auth.ForgotPasswordResponse
	if err := h.callAuth(c.UserContext(), "forgot-password", &authReq, &resp); err != nil {
		return internalError(c, err)
	}

	// The token travels out of band (mail delivery), never in this response.
	return c.Status(fiber.StatusOK).JSON(MessageResponse{
		Message: "If the email exists, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets a new password.
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Token == "" || req.NewPassword == "" {
		return badRequest(c, "Token and new password are required")
	}

	authReq := auth.ResetPasswordRequest{Token: req.Token, NewPassword: req.NewPassword}
	var resp auth.ResetPasswordResponse
	if err := h.callAuth(c.UserContext(), "reset-password", &authReq, &resp); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(MessageResponse{
		Message: "Password has been reset",
	})
}

// Profile returns the authenticated user's profile.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	user, err := h.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Categories:  user.Categories,
		CreatedAt:   user.CreatedAt,
	})
}

// UpdateProfile updates display name and/or predefined categories.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.DisplayName == nil && req.Categories == nil {
		return badRequest(c, "No fields to update")
	}

	authReq := auth.UpdateProfileRequest{
		UserID:      claims.UserID,
		DisplayName: req.DisplayName,
		Categories:  req.Categories,
	}
	var resp auth.GetUserResponse
	if err := h.callAuth(c.UserContext(), "update-profile", &authReq, &resp); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(ProfileResponse{
		ID:          resp.ID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Categories:  resp.Categories,
		CreatedAt:   resp.CreatedAt,
	})
}

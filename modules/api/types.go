package api

import "time"

// ErrorResponse is the stable error envelope: a machine-readable code plus a
// human-readable message. Internal detail never appears here.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents an authentication token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents a user response.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse represents the authenticated user's profile.
type ProfileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateProfileRequest represents a profile update body.
type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// ForgotPasswordRequest represents a password-reset issuance body.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents a password-reset completion body.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is a generic confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTaskRequest represents a task creation body.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
	OrderIndex  *int       `json:"order_index,omitempty"`
}

// UpdateTaskRequest represents a partial task update body.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ClearDue    bool       `json:"clear_due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
	Status      *string    `json:"status,omitempty"`
	OrderIndex  *int       `json:"order_index,omitempty"`
}

// ToggleStatusRequest represents a toggle-status body.
type ToggleStatusRequest struct {
	Status string `json:"status"`
}

// BulkTasksRequest names the tasks affected by a bulk operation.
type BulkTasksRequest struct {
	TaskIDs []string `json:"task_ids"`
}

// BulkCompleteResponse reports a bulk status change.
type BulkCompleteResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}

// BulkDeleteResponse reports a bulk delete.
type BulkDeleteResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

// ReorderTasksRequest supplies the full desired ordering.
type ReorderTasksRequest struct {
	Order []string `json:"order"`
}

// ShareTaskResponse carries the public link and its expiry.
type ShareTaskResponse struct {
	ShareURL  string    `json:"share_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GuestSessionResponse carries a freshly issued guest session id.
type GuestSessionResponse struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

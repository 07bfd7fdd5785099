package guest

import (
	"errors"
	"time"
)

// MaxTasksPerSession caps how many tasks a guest session may hold.
const MaxTasksPerSession = 5

// SessionTTL is the sliding lifetime of a guest session; the session and its
// tasks vanish once it lapses.
const SessionTTL = 24 * time.Hour

// Sentinel errors for guest operations.
var (
	// ErrSessionNotFound is returned for unknown or lapsed sessions.
	ErrSessionNotFound = errors.New("guest session not found")
	// ErrTaskNotFound is returned when a guest task id is unknown.
	ErrTaskNotFound = errors.New("guest task not found")
	// ErrLimitReached is returned when a session already holds the maximum
	// number of tasks.
	ErrLimitReached = errors.New("guest task limit reached")
)

// Task is a guest-session task. It mirrors the owned task shape minus the
// owner and share fields; nothing here ever touches the relational store.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
	Tags        *string    `json:"tags"`
	Status      string     `json:"status"`
	OrderIndex  int        `json:"order_index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateRequest adds a task to a guest session.
type CreateRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
}

// UpdateRequest partially updates a guest task.
type UpdateRequest struct {
	SessionID   string     `json:"session_id"`
	TaskID      string     `json:"task_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

package task

import (
	"time"
)

// Pagination bounds for list queries. Out-of-range values are clamped,
// never rejected.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 1000
)

// StatusAll is the status filter value that includes archived tasks.
const StatusAll = "all"

// ListOptions configures the task list query. The zero value lists the
// owner's non-archived tasks in display order, first page.
type ListOptions struct {
	// Search matches case-insensitively as a substring across title,
	// description and tags (OR-combined). All other filters AND-combine.
	Search   string `json:"search,omitempty"`
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
	// Tag matches as a substring against the comma-delimited tags field.
	Tag       string `json:"tag,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// TaskResponse is the owner-facing task projection.
type TaskResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	Priority       *string    `json:"priority"`
	Category       *string    `json:"category"`
	Tags           *string    `json:"tags"`
	Status         string     `json:"status"`
	OrderIndex     int        `json:"order_index"`
	ShareExpiresAt *time.Time `json:"share_expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PublicTaskResponse is the reduced projection served on the public share
// path. It omits the owner id and order index.
type PublicTaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
	Tags        *string    `json:"tags"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ListRequest represents a task list query.
type ListRequest struct {
	UserID  string      `json:"user_id"`
	Options ListOptions `json:"options"`
}

// ListResponse carries one page of tasks plus the filtered total.
type ListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int64          `json:"total"`
}

// CreateRequest represents a task creation request.
type CreateRequest struct {
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
	// OrderIndex overrides the default append-to-end position when set.
	OrderIndex *int `json:"order_index,omitempty"`
}

// UpdateRequest represents a partial task update. Nil fields are untouched;
// a request with every field nil is rejected.
type UpdateRequest struct {
	UserID      string     `json:"user_id"`
	TaskID      string     `json:"task_id"`
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

// GetRequest fetches a single owned task.
type GetRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteRequest represents a single hard delete.
type DeleteRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteResponse confirms a delete.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ToggleStatusRequest moves a task between incomplete and completed.
type ToggleStatusRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// DuplicateRequest copies a task to the end of the owner's ordering.
type DuplicateRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// BulkRequest names the tasks affected by a bulk operation.
type BulkRequest struct {
	UserID  string   `json:"user_id"`
	TaskIDs []string `json:"task_ids"`
}

// BulkResponse reports how many rows a bulk operation touched.
type BulkResponse struct {
	Count int64 `json:"count"`
}

// ReorderRequest supplies the owner's full desired ordering.
type ReorderRequest struct {
	UserID string   `json:"user_id"`
	Order  []string `json:"order"`
}

// ReorderResponse returns the tasks in their new order.
type ReorderResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// ShareRequest activates (or re-activates) a public share link.
type ShareRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// ShareResponse carries the public URL and its expiry.
type ShareResponse struct {
	ShareURL  string    `json:"share_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PublicGetRequest fetches a publicly shared task without authentication.
type PublicGetRequest struct {
	TaskID string `json:"task_id"`
}

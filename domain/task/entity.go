package task

import (
	"time"
)

// Task statuses. Archived is a status value, not a separate table; archived
// tasks are excluded from default listings but remain owned rows.
const (
	StatusIncomplete = "incomplete"
	StatusCompleted  = "completed"
	StatusArchived   = "archived"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Field length limits enforced at the service layer.
const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 1000
	MaxCategoryLen    = 100
	MaxTagsLen        = 500
)

// ShareDuration is how long a newly activated public share link stays valid.
const ShareDuration = 30 * 24 * time.Hour

// Task represents a single to-do item owned by exactly one user.
// OrderIndex is the ascending display position within the owner's task set;
// it is unique per owner but not guaranteed contiguous (deletes leave gaps).
type Task struct {
	ID          string `gorm:"primaryKey;type:text"`
	UserID      string `gorm:"index;not null;type:text"`
	Title       string `gorm:"not null;size:255"`
	Description *string `gorm:"size:1000"`
	DueDate     *time.Time
	Priority    *string `gorm:"size:10"`
	Category    *string `gorm:"size:100"`
	// Tags is a comma-delimited list, matched by substring in searches.
	Tags           *string `gorm:"size:500"`
	Status         string  `gorm:"not null;default:incomplete;size:16"`
	OrderIndex     int     `gorm:"not null;default:0"`
	ShareExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// ValidStatus reports whether s is a recognized task status.
func ValidStatus(s string) bool {
	return s == StatusIncomplete || s == StatusCompleted || s == StatusArchived
}

// ValidPriority reports whether p is a recognized task priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Shared reports whether the task is publicly visible at time now.
// A nil or past expiry means the share link is inactive.
func (t *Task) Shared(now time.Time) bool {
	return t.ShareExpiresAt != nil && t.ShareExpiresAt.After(now)
}

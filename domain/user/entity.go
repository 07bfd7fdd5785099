package user

import (
	"encoding/json"
	"time"
)

// User represents an account in the system. Emails are stored lowercased so
// the unique index enforces case-insensitive uniqueness.
type User struct {
	ID           string `gorm:"primaryKey;type:text"`
	Email        string `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string `gorm:"not null;type:text"`
	DisplayName  string `gorm:"type:text"`
	// Categories holds the user's predefined task categories as a
	// JSON-encoded ordered list.
	Categories string `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// CategoryList decodes the stored predefined categories.
func (u *User) CategoryList() []string {
	if u.Categories == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(u.Categories), &out); err != nil {
		return nil
	}
	return out
}

// SetCategoryList encodes and stores the predefined categories.
func (u *User) SetCategoryList(categories []string) {
	if len(categories) == 0 {
		u.Categories = ""
		return
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return
	}
	u.Categories = string(data)
}

// PasswordReset is a one-shot token allowing a user to set a new password.
// At most one active token exists per user; issuing a new one deletes any
// prior token, and a successful reset consumes it.
type PasswordReset struct {
	Token     string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"index;not null;type:text"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TableName returns the table name for the PasswordReset entity.
func (PasswordReset) TableName() string {
	return "password_resets"
}

// TokenPair represents access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Claims represents the authenticated identity extracted from a bearer token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/user"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a user with the email already exists.
	ErrUserExists = errors.New("user with this email already exists")
	// ErrResetNotFound is returned when a reset token is unknown or expired.
	ErrResetNotFound = errors.New("reset token not found")
)

// UserRepository handles user and password-reset persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user in the database.
func (r *UserRepository) Create(user *domain.User) error {
	result := r.db.Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return result.Error
	}
	return nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, case-insensitively.
func (r *UserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EmailExists checks if a user with the given email exists.
func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	result := r.db.Model(&domain.User{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(user *domain.User) error {
	result := r.db.Model(&domain.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"password_hash": user.PasswordHash,
		"display_name":  user.DisplayName,
		"categories":    user.Categories,
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ReplaceReset deletes any prior reset token for the user and stores the new
// one, keeping at most one active token per user.
func (r *UserRepository) ReplaceReset(reset *domain.PasswordReset) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.PasswordReset{}, "user_id = ?", reset.UserID).Error; err != nil {
			return fmt.Errorf("failed to clear prior reset tokens: %w", err)
		}
		if err := tx.Create(reset).Error; err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}
		return nil
	})
}

// ConsumeReset looks up an unexpired reset token and deletes it. Expired
// tokens are treated as not found.
func (r *UserRepository) ConsumeReset(token string, now time.Time) (*domain.PasswordReset, error) {
	var reset domain.PasswordReset
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reset, "token = ?", token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResetNotFound
			}
			return err
		}
		if !reset.ExpiresAt.After(now) {
			return ErrResetNotFound
		}
		return tx.Delete(&domain.PasswordReset{}, "token = ?", token).Error
	})
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

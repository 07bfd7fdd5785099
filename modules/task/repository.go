package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"gorm.io/gorm"
)

// sortColumns is the whitelist of sortable fields. Anything else falls back
// silently to order_index.
var sortColumns = map[string]string{
	"title":       "title",
	"due_date":    "due_date",
	"priority":    "priority",
	"status":      "status",
	"order_index": "order_index",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// Repository handles task persistence using GORM. Every query and mutation
// is scoped to the owning user at this layer; callers cannot opt out.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&domain.Task{})
}

// owned returns a query scoped to the given owner.
func (r *Repository) owned(userID string) *gorm.DB {
	return r.db.Where("user_id = ?", userID)
}

// applyFilters builds the WHERE clause for a list query. Filters are
// AND-combined; the search term OR-combines across title/description/tags.
func applyFilters(q *gorm.DB, opts ListOptions) *gorm.DB {
	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		q = q.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	switch opts.Status {
	case StatusAll:
		// No status constraint.
	case "":
		// Default listings exclude archived tasks.
		q = q.Where("status <> ?", domain.StatusArchived)
	default:
		q = q.Where("status = ?", opts.Status)
	}

	if opts.Category != "" {
		q = q.Where("category = ?", opts.Category)
	}
	if opts.Priority != "" {
		q = q.Where("priority = ?", opts.Priority)
	}
	if opts.Tag != "" {
		q = q.Where("LOWER(tags) LIKE ?", "%"+strings.ToLower(opts.Tag)+"%")
	}

	return q
}

// orderClause resolves the sort field and direction.
func orderClause(opts ListOptions) string {
	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "order_index"
	}
	direction := "ASC"
	if opts.SortOrder == "desc" {
		direction = "DESC"
	}
	return column + " " + direction
}

// clampPage normalizes pagination values instead of rejecting them.
func clampPage(opts ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// List returns one page of the owner's tasks plus the total count matching
// the filters regardless of pagination.
func (r *Repository) List(userID string, opts ListOptions) ([]*domain.Task, int64, error) {
	base := applyFilters(r.owned(userID).Model(&domain.Task{}), opts)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	limit, offset := clampPage(opts)

	var tasks []*domain.Task
	err := applyFilters(r.owned(userID), opts).
		Order(orderClause(opts)).
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// FindByID retrieves one of the owner's tasks.
func (r *Repository) FindByID(userID, id string) (*domain.Task, error) {
	var task domain.Task
	if err := r.owned(userID).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// Create saves a new task.
func (r *Repository) Create(task *domain.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Updates applies a partial column update to one of the owner's tasks.
func (r *Repository) Updates(userID, id string, fields map[string]any) error {
	result := r.owned(userID).Model(&domain.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete hard-deletes one of the owner's tasks.
func (r *Repository) Delete(userID, id string) error {
	result := r.owned(userID).Delete(&domain.Task{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// MaxOrderIndex returns the highest order_index among the owner's tasks, or
// -1 when the owner has none, so max+1 yields the append position.
func (r *Repository) MaxOrderIndex(userID string) (int, error) {
	var max *int
	err := r.owned(userID).Model(&domain.Task{}).Select("MAX(order_index)").Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max order index: %w", err)
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// OrderIndexInUse reports whether another of the owner's tasks already sits
// at the given index. excludeID ignores the task being updated.
func (r *Repository) OrderIndexInUse(userID string, index int, excludeID string) (bool, error) {
	q := r.owned(userID).Model(&domain.Task{}).Where("order_index = ?", index)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check order index: %w", err)
	}
	return count > 0, nil
}

// CountOwned returns how many of the given ids belong to the owner.
func (r *Repository) CountOwned(userID string, ids []string) (int64, error) {
	var count int64
	err := r.owned(userID).Model(&domain.Task{}).Where("id IN ?", ids).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count owned tasks: %w", err)
	}
	return count, nil
}

// BulkUpdateStatus transitions every named task in one transaction after the
// caller has verified ownership of the whole batch.
func (r *Repository) BulkUpdateStatus(userID string, ids []string, status string) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Task{}).
			Where("user_id = ? AND id IN ?", userID, ids).
			Updates(map[string]any{"status": status, "updated_at": time.Now()})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update status: %w", err)
	}
	return affected, nil
}

// BulkDelete hard-deletes every named task in one transaction.
func (r *Repository) BulkDelete(userID string, ids []string) (int64, error) {
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&domain.Task{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete: %w", err)
	}
	return affected, nil
}

// Reindex assigns order_index = position for each id, in one transaction.
// Ownership of every id must already be verified by the caller.
func (r *Repository) Reindex(userID string, ids []string) error {
	now := time.Now()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for position, id := range ids {
			result := tx.Model(&domain.Task{}).
				Where("user_id = ? AND id = ?", userID, id).
				Updates(map[string]any{"order_index": position, "updated_at": now})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrOwnershipMismatch
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOwnershipMismatch) {
			return err
		}
		return fmt.Errorf("failed to reindex tasks: %w", err)
	}
	return nil
}

// FindByIDs returns the owner's tasks for the given ids, ordered by
// order_index ascending.
func (r *Repository) FindByIDs(userID string, ids []string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.owned(userID).
		Where("id IN ?", ids).
		Order("order_index ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// FindShared retrieves a task by id regardless of owner, but only when its
// share link is active at time now. Missing, unshared and expired tasks are
// indistinguishable.
func (r *Repository) FindShared(id string, now time.Time) (*domain.Task, error) {
	var task domain.Task
	err := r.db.
		Where("id = ? AND share_expires_at IS NOT NULL AND share_expires_at > ?", id, now).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find shared task: %w", err)
	}
	return &task, nil
}

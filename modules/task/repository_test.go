package task

import (
	"testing"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func strPtr(s string) *string { return &s }

func timePtr(tm time.Time) *time.Time { return &tm }

// seedTask inserts a task with sensible defaults.
func seedTask(t *testing.T, db *gorm.DB, userID, title string, orderIndex int, mutate func(*domain.Task)) *domain.Task {
	t.Helper()

	now := time.Now()
	task := &domain.Task{
		ID:         uuid.New().String(),
		UserID:     userID,
		Title:      title,
		Status:     domain.StatusIncomplete,
		OrderIndex: orderIndex,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mutate != nil {
		mutate(task)
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed task %q: %v", title, err)
	}
	return task
}

func TestRepository_List_OwnerScope(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedTask(t, db, "alice", "Alice task", 0, nil)
	seedTask(t, db, "bob", "Bob task", 0, nil)

	tasks, total, err := repo.List("alice", ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(tasks) != 1 || tasks[0].Title != "Alice task" {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
}

func TestRepository_List_StatusFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedTask(t, db, "u1", "open", 0, nil)
	seedTask(t, db, "u1", "done", 1, func(task *domain.Task) { task.Status = domain.StatusCompleted })
	seedTask(t, db, "u1", "archived", 2, func(task *domain.Task) { task.Status = domain.StatusArchived })

	t.Run("default excludes archived", func(t *testing.T) {
		tasks, total, err := repo.List("u1", ListOptions{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 2 || len(tasks) != 2 {
			t.Errorf("got %d tasks (total %d), want 2", len(tasks), total)
		}
		for _, task := range tasks {
			if task.Status == domain.StatusArchived {
				t.Errorf("archived task leaked into default listing")
			}
		}
	})

	t.Run("all includes archived", func(t *testing.T) {
		_, total, err := repo.List("u1", ListOptions{Status: StatusAll})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
	})

	t.Run("exact match", func(t *testing.T) {
		tasks, total, err := repo.List("u1", ListOptions{Status: domain.StatusArchived})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 1 || len(tasks) != 1 || tasks[0].Title != "archived" {
			t.Errorf("got %+v (total %d), want only the archived task", tasks, total)
		}
	})
}

func TestRepository_List_SearchAndFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedTask(t, db, "u1", "Buy milk", 0, func(task *domain.Task) {
		task.Category = strPtr("errands")
		task.Priority = strPtr(domain.PriorityHigh)
		task.Tags = strPtr("shopping,food")
	})
	seedTask(t, db, "u1", "Write report", 1, func(task *domain.Task) {
		task.Description = strPtr("Quarterly MILK production numbers")
		task.Category = strPtr("work")
		task.Priority = strPtr(domain.PriorityLow)
	})
	seedTask(t, db, "u1", "Call dentist", 2, func(task *domain.Task) {
		task.Category = strPtr("errands")
	})

	t.Run("search is case-insensitive across title description tags", func(t *testing.T) {
		_, total, err := repo.List("u1", ListOptions{Search: "milk"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2 (title match + description match)", total)
		}
	})

	t.Run("filters are AND-combined", func(t *testing.T) {
		tasks, total, err := repo.List("u1", ListOptions{
			Category: "errands",
			Priority: domain.PriorityHigh,
		})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 1 || len(tasks) != 1 || tasks[0].Title != "Buy milk" {
			t.Errorf("got %+v (total %d), want only Buy milk", tasks, total)
		}
	})

	t.Run("tag filter matches substring", func(t *testing.T) {
		_, total, err := repo.List("u1", ListOptions{Tag: "shop"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d, want 1", total)
		}
	})

	t.Run("every result satisfies every filter", func(t *testing.T) {
		tasks, _, err := repo.List("u1", ListOptions{Category: "errands", Status: StatusAll})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		for _, task := range tasks {
			if task.Category == nil || *task.Category != "errands" {
				t.Errorf("task %q does not satisfy category filter", task.Title)
			}
		}
	})
}

func TestRepository_List_Sorting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedTask(t, db, "u1", "banana", 2, nil)
	seedTask(t, db, "u1", "apple", 0, nil)
	seedTask(t, db, "u1", "cherry", 1, nil)

	t.Run("default sorts by order_index ascending", func(t *testing.T) {
		tasks, _, err := repo.List("u1", ListOptions{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []string{"apple", "cherry", "banana"}
		for i, task := range tasks {
			if task.Title != want[i] {
				t.Errorf("position %d = %q, want %q", i, task.Title, want[i])
			}
		}
	})

	t.Run("sort by title descending", func(t *testing.T) {
		tasks, _, err := repo.List("u1", ListOptions{SortBy: "title", SortOrder: "desc"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []string{"cherry", "banana", "apple"}
		for i, task := range tasks {
			if task.Title != want[i] {
				t.Errorf("position %d = %q, want %q", i, task.Title, want[i])
			}
		}
	})

	t.Run("unrecognized sort field falls back to order_index", func(t *testing.T) {
		tasks, _, err := repo.List("u1", ListOptions{SortBy: "nonsense; DROP TABLE tasks"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) == 0 || tasks[0].Title != "apple" {
			t.Errorf("fallback sort not applied, first = %+v", tasks)
		}
	})
}

func TestRepository_List_PaginationClamp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	for i := 0; i < 15; i++ {
		seedTask(t, db, "u1", "task", i, nil)
	}

	t.Run("zero limit defaults", func(t *testing.T) {
		tasks, total, err := repo.List("u1", ListOptions{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != DefaultPageLimit {
			t.Errorf("page size = %d, want %d", len(tasks), DefaultPageLimit)
		}
		if total != 15 {
			t.Errorf("total = %d, want 15 (total ignores pagination)", total)
		}
	})

	t.Run("negative offset floored", func(t *testing.T) {
		tasks, _, err := repo.List("u1", ListOptions{Limit: 5, Offset: -10})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 5 || tasks[0].OrderIndex != 0 {
			t.Errorf("expected first page of 5, got %d starting at %d", len(tasks), tasks[0].OrderIndex)
		}
	})

	t.Run("oversized limit clamped", func(t *testing.T) {
		tasks, _, err := repo.List("u1", ListOptions{Limit: 50000})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 15 {
			t.Errorf("page size = %d, want all 15", len(tasks))
		}
	})

	t.Run("offset pages through", func(t *testing.T) {
		tasks, _, err := repo.List("u1", ListOptions{Limit: 10, Offset: 10})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 5 || tasks[0].OrderIndex != 10 {
			t.Errorf("expected tail page of 5 starting at 10, got %d starting at %d", len(tasks), tasks[0].OrderIndex)
		}
	})
}

func TestRepository_MaxOrderIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	max, err := repo.MaxOrderIndex("u1")
	if err != nil {
		t.Fatalf("MaxOrderIndex() error = %v", err)
	}
	if max != -1 {
		t.Errorf("empty set max = %d, want -1", max)
	}

	seedTask(t, db, "u1", "a", 7, nil)
	seedTask(t, db, "u2", "other owner", 99, nil)

	max, err = repo.MaxOrderIndex("u1")
	if err != nil {
		t.Fatalf("MaxOrderIndex() error = %v", err)
	}
	if max != 7 {
		t.Errorf("max = %d, want 7 (other owners ignored)", max)
	}
}

func TestRepository_FindShared(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	active := seedTask(t, db, "u1", "shared", 0, func(task *domain.Task) {
		task.ShareExpiresAt = timePtr(now.Add(time.Hour))
	})
	expired := seedTask(t, db, "u1", "expired", 1, func(task *domain.Task) {
		task.ShareExpiresAt = timePtr(now.Add(-time.Hour))
	})
	unshared := seedTask(t, db, "u1", "unshared", 2, nil)

	if _, err := repo.FindShared(active.ID, now); err != nil {
		t.Errorf("active share should be visible: %v", err)
	}
	if _, err := repo.FindShared(expired.ID, now); err != ErrTaskNotFound {
		t.Errorf("expired share error = %v, want ErrTaskNotFound", err)
	}
	if _, err := repo.FindShared(unshared.ID, now); err != ErrTaskNotFound {
		t.Errorf("unshared task error = %v, want ErrTaskNotFound", err)
	}
	if _, err := repo.FindShared("no-such-id", now); err != ErrTaskNotFound {
		t.Errorf("unknown id error = %v, want ErrTaskNotFound", err)
	}
}

func TestRepository_DeleteLeavesGaps(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedTask(t, db, "u1", "a", 0, nil)
	b := seedTask(t, db, "u1", "b", 1, nil)
	seedTask(t, db, "u1", "c", 2, nil)

	if err := repo.Delete("u1", b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	tasks, _, err := repo.List("u1", ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	// Indices are not compacted after a delete.
	if len(tasks) != 2 || tasks[0].OrderIndex != 0 || tasks[1].OrderIndex != 2 {
		t.Errorf("indices after delete = %v, want [0 2]", []int{tasks[0].OrderIndex, tasks[1].OrderIndex})
	}
}

func TestRepository_Delete_NotOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	foreign := seedTask(t, db, "bob", "bob's task", 0, nil)

	if err := repo.Delete("alice", foreign.ID); err != ErrTaskNotFound {
		t.Errorf("deleting a foreign task error = %v, want ErrTaskNotFound", err)
	}
}

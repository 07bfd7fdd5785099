package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/example/task-manager/domain/task"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := setupTestDB(t)
	return NewService(NewRepository(db), "http://localhost:3000")
}

func mustCreate(t *testing.T, s *Service, userID, title string) *TaskResponse {
	t.Helper()
	resp, err := s.Create(context.Background(), CreateRequest{UserID: userID, Title: title})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return resp
}

func TestService_Create_Defaults(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	resp, err := s.Create(ctx, CreateRequest{UserID: "u1", Title: "Buy milk"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if resp.Status != domain.StatusIncomplete {
		t.Errorf("status = %q, want incomplete", resp.Status)
	}
	if resp.OrderIndex != 0 {
		t.Errorf("first task order_index = %d, want 0", resp.OrderIndex)
	}
	if resp.Description != nil || resp.DueDate != nil || resp.Priority != nil ||
		resp.Category != nil || resp.Tags != nil {
		t.Errorf("optional fields should all be null: %+v", resp)
	}

	second := mustCreate(t, s, "u1", "Second")
	if second.OrderIndex != 1 {
		t.Errorf("second task order_index = %d, want previous max+1 = 1", second.OrderIndex)
	}
}

func TestService_ExplicitOrderIndex(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, s, "u1", "First")   // index 0
	second := mustCreate(t, s, "u1", "Second") // index 1

	t.Run("create rejects a taken index", func(t *testing.T) {
		idx := first.OrderIndex
		_, err := s.Create(ctx, CreateRequest{UserID: "u1", Title: "Clash", OrderIndex: &idx})
		if !errors.Is(err, ErrOrderIndexTaken) {
			t.Errorf("Create() error = %v, want ErrOrderIndexTaken", err)
		}
	})

	t.Run("create accepts a free index", func(t *testing.T) {
		idx := 5
		resp, err := s.Create(ctx, CreateRequest{UserID: "u1", Title: "Gapped", OrderIndex: &idx})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if resp.OrderIndex != 5 {
			t.Errorf("order_index = %d, want 5", resp.OrderIndex)
		}
	})

	t.Run("another owner may reuse the index", func(t *testing.T) {
		idx := first.OrderIndex
		if _, err := s.Create(ctx, CreateRequest{UserID: "u2", Title: "Elsewhere", OrderIndex: &idx}); err != nil {
			t.Errorf("Create() for other owner: error = %v", err)
		}
	})

	t.Run("update rejects another task's index", func(t *testing.T) {
		idx := first.OrderIndex
		_, err := s.Update(ctx, UpdateRequest{UserID: "u1", TaskID: second.ID, OrderIndex: &idx})
		if !errors.Is(err, ErrOrderIndexTaken) {
			t.Errorf("Update() error = %v, want ErrOrderIndexTaken", err)
		}
	})

	t.Run("update keeps a task's own index", func(t *testing.T) {
		idx := second.OrderIndex
		title := "Renamed"
		resp, err := s.Update(ctx, UpdateRequest{UserID: "u1", TaskID: second.ID, Title: &title, OrderIndex: &idx})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if resp.OrderIndex != second.OrderIndex {
			t.Errorf("order_index = %d, want %d", resp.OrderIndex, second.OrderIndex)
		}
	})
}

func TestService_Create_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{
			name:    "blank title",
			req:     CreateRequest{UserID: "u1", Title: "   "},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "title too long",
			req:     CreateRequest{UserID: "u1", Title: strings.Repeat("x", domain.MaxTitleLen+1)},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "bogus priority",
			req:     CreateRequest{UserID: "u1", Title: "ok", Priority: strPtr("urgent")},
			wantErr: ErrInvalidPriority,
		},
		{
			name:    "description too long",
			req:     CreateRequest{UserID: "u1", Title: "ok", Description: strPtr(strings.Repeat("x", domain.MaxDescriptionLen+1))},
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, s, "u1", "original")

	t.Run("empty field set rejected", func(t *testing.T) {
		_, err := s.Update(ctx, UpdateRequest{UserID: "u1", TaskID: created.ID})
		if !errors.Is(err, ErrEmptyUpdate) {
			t.Errorf("Update() error = %v, want ErrEmptyUpdate", err)
		}
	})

	t.Run("partial update refreshes updated_at", func(t *testing.T) {
		before := created.UpdatedAt
		time.Sleep(10 * time.Millisecond)

		updated, err := s.Update(ctx, UpdateRequest{
			UserID: "u1",
			TaskID: created.ID,
			Title:  strPtr("renamed"),
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Title != "renamed" {
			t.Errorf("title = %q, want renamed", updated.Title)
		}
		if !updated.UpdatedAt.After(before) {
			t.Errorf("updated_at not refreshed: %v <= %v", updated.UpdatedAt, before)
		}
	})

	t.Run("foreign task is 404", func(t *testing.T) {
		_, err := s.Update(ctx, UpdateRequest{
			UserID: "intruder",
			TaskID: created.ID,
			Title:  strPtr("hijacked"),
		})
		if !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("Update() error = %v, want ErrTaskNotFound", err)
		}
	})
}

func TestService_ToggleStatus(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, s, "u1", "toggle me")

	toggled, err := s.ToggleStatus(ctx, "u1", created.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("ToggleStatus() error = %v", err)
	}
	if toggled.Status != domain.StatusCompleted {
		t.Errorf("status = %q, want completed", toggled.Status)
	}

	back, err := s.ToggleStatus(ctx, "u1", created.ID, domain.StatusIncomplete)
	if err != nil {
		t.Fatalf("ToggleStatus() error = %v", err)
	}
	if back.Status != domain.StatusIncomplete {
		t.Errorf("status = %q, want incomplete", back.Status)
	}

	// Archived is an explicit update, never a toggle target.
	if _, err := s.ToggleStatus(ctx, "u1", created.ID, domain.StatusArchived); !errors.Is(err, ErrInvalidToggleTarget) {
		t.Errorf("toggle to archived error = %v, want ErrInvalidToggleTarget", err)
	}
	if _, err := s.ToggleStatus(ctx, "u1", created.ID, "done"); !errors.Is(err, ErrInvalidToggleTarget) {
		t.Errorf("toggle to bogus status error = %v, want ErrInvalidToggleTarget", err)
	}
}

func TestService_Duplicate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	source, err := s.Create(ctx, CreateRequest{
		UserID:      "u1",
		Title:       "Plan trip",
		Description: strPtr("Book flights and hotel"),
		Priority:    strPtr(domain.PriorityHigh),
		Category:    strPtr("travel"),
		Tags:        strPtr("vacation,summer"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.ToggleStatus(ctx, "u1", source.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("ToggleStatus() error = %v", err)
	}
	if _, err := s.Share(ctx, "u1", source.ID); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	dup, err := s.Duplicate(ctx, "u1", source.ID)
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}

	if dup.ID == source.ID {
		t.Error("duplicate must have a distinct id")
	}
	if dup.Title != "Copy of Plan trip" {
		t.Errorf("title = %q, want Copy of Plan trip", dup.Title)
	}
	if dup.Status != domain.StatusIncomplete {
		t.Errorf("status = %q, want incomplete regardless of source", dup.Status)
	}
	if dup.OrderIndex <= source.OrderIndex {
		t.Errorf("order_index = %d, want strictly greater than source %d", dup.OrderIndex, source.OrderIndex)
	}
	if dup.ShareExpiresAt != nil {
		t.Error("share state must not be copied")
	}
	if dup.Description == nil || *dup.Description != "Book flights and hotel" {
		t.Errorf("description not copied: %v", dup.Description)
	}
	if dup.Priority == nil || *dup.Priority != domain.PriorityHigh {
		t.Errorf("priority not copied: %v", dup.Priority)
	}
	if dup.Tags == nil || *dup.Tags != "vacation,summer" {
		t.Errorf("tags not copied: %v", dup.Tags)
	}
}

func TestService_BulkComplete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, s, "u1", "a")
	b := mustCreate(t, s, "u1", "b")
	foreign := mustCreate(t, s, "u2", "not yours")

	t.Run("foreign id rejects whole batch", func(t *testing.T) {
		_, err := s.BulkComplete(ctx, "u1", []string{a.ID, foreign.ID})
		if !errors.Is(err, ErrOwnershipMismatch) {
			t.Fatalf("BulkComplete() error = %v, want ErrOwnershipMismatch", err)
		}

		// No partial writes.
		got, err := s.Get(ctx, "u1", a.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Status != domain.StatusIncomplete {
			t.Errorf("task a status = %q after rejected batch, want incomplete", got.Status)
		}
	})

	t.Run("all-owned batch completes every task", func(t *testing.T) {
		count, err := s.BulkComplete(ctx, "u1", []string{a.ID, b.ID})
		if err != nil {
			t.Fatalf("BulkComplete() error = %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
		for _, id := range []string{a.ID, b.ID} {
			got, err := s.Get(ctx, "u1", id)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Status != domain.StatusCompleted {
				t.Errorf("task %s status = %q, want completed", id, got.Status)
			}
		}
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		if _, err := s.BulkComplete(ctx, "u1", nil); !errors.Is(err, ErrEmptyBatch) {
			t.Errorf("BulkComplete(nil) error = %v, want ErrEmptyBatch", err)
		}
	})

	t.Run("repeated ids rejected", func(t *testing.T) {
		if _, err := s.BulkComplete(ctx, "u1", []string{a.ID, a.ID}); !errors.Is(err, ErrDuplicateIDs) {
			t.Errorf("BulkComplete(dup) error = %v, want ErrDuplicateIDs", err)
		}
	})
}

func TestService_BulkDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, s, "u1", "a")
	b := mustCreate(t, s, "u1", "b")
	foreign := mustCreate(t, s, "u2", "not yours")

	if _, err := s.BulkDelete(ctx, "u1", []string{a.ID, foreign.ID}); !errors.Is(err, ErrOwnershipMismatch) {
		t.Fatalf("BulkDelete() with foreign id error = %v, want ErrOwnershipMismatch", err)
	}

	count, err := s.BulkDelete(ctx, "u1", []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("BulkDelete() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if _, err := s.Get(ctx, "u1", a.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("deleted task still readable: %v", err)
	}

	// The foreign owner's task is untouched.
	if _, err := s.Get(ctx, "u2", foreign.ID); err != nil {
		t.Errorf("foreign task should survive: %v", err)
	}
}

func TestService_Reorder(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, s, "u1", "A") // order 0
	b := mustCreate(t, s, "u1", "B") // order 1
	c := mustCreate(t, s, "u1", "C") // order 2

	t.Run("permutation reassigns 0..N-1", func(t *testing.T) {
		tasks, err := s.Reorder(ctx, "u1", []string{c.ID, a.ID, b.ID})
		if err != nil {
			t.Fatalf("Reorder() error = %v", err)
		}

		want := map[string]int{c.ID: 0, a.ID: 1, b.ID: 2}
		for _, task := range tasks {
			if task.OrderIndex != want[task.ID] {
				t.Errorf("task %s order_index = %d, want %d", task.Title, task.OrderIndex, want[task.ID])
			}
		}
	})

	t.Run("foreign id rejects the whole reorder", func(t *testing.T) {
		foreign := mustCreate(t, s, "u2", "not yours")

		_, err := s.Reorder(ctx, "u1", []string{foreign.ID, a.ID, b.ID, c.ID})
		if !errors.Is(err, ErrOwnershipMismatch) {
			t.Fatalf("Reorder() error = %v, want ErrOwnershipMismatch", err)
		}

		// Prior ordering is intact, no partial writes.
		got, err := s.Get(ctx, "u1", c.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.OrderIndex != 0 {
			t.Errorf("task C order_index = %d after rejected reorder, want 0", got.OrderIndex)
		}
	})

	t.Run("repeated id rejected", func(t *testing.T) {
		if _, err := s.Reorder(ctx, "u1", []string{a.ID, a.ID, b.ID}); !errors.Is(err, ErrDuplicateIDs) {
			t.Errorf("Reorder(dup) error = %v, want ErrDuplicateIDs", err)
		}
	})
}

func TestService_ShareLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, s, "u1", "share me")

	t.Run("unshared task gets ~30 day expiry", func(t *testing.T) {
		resp, err := s.Share(ctx, "u1", created.ID)
		if err != nil {
			t.Fatalf("Share() error = %v", err)
		}

		want := time.Now().Add(domain.ShareDuration)
		if resp.ExpiresAt.Before(want.Add(-time.Minute)) || resp.ExpiresAt.After(want.Add(time.Minute)) {
			t.Errorf("expires_at = %v, want ~%v", resp.ExpiresAt, want)
		}
		if !strings.HasSuffix(resp.ShareURL, "/public/tasks/"+created.ID) {
			t.Errorf("share_url = %q", resp.ShareURL)
		}
	})

	t.Run("active share keeps its expiry", func(t *testing.T) {
		first, err := s.Share(ctx, "u1", created.ID)
		if err != nil {
			t.Fatalf("Share() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		second, err := s.Share(ctx, "u1", created.ID)
		if err != nil {
			t.Fatalf("Share() error = %v", err)
		}
		if !second.ExpiresAt.Equal(first.ExpiresAt) {
			t.Errorf("re-share moved expiry: %v -> %v", first.ExpiresAt, second.ExpiresAt)
		}
	})

	t.Run("expired share is reset", func(t *testing.T) {
		// Force the expiry into the past directly.
		past := time.Now().Add(-time.Hour)
		if err := s.repo.Updates("u1", created.ID, map[string]any{"share_expires_at": past}); err != nil {
			t.Fatalf("failed to expire share: %v", err)
		}

		resp, err := s.Share(ctx, "u1", created.ID)
		if err != nil {
			t.Fatalf("Share() error = %v", err)
		}
		if !resp.ExpiresAt.After(time.Now().Add(29 * 24 * time.Hour)) {
			t.Errorf("expired share not reset: expires_at = %v", resp.ExpiresAt)
		}
	})
}

func TestService_PublicGet(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, s, "u1", "public me")

	t.Run("unshared task is not found", func(t *testing.T) {
		if _, err := s.PublicGet(ctx, created.ID); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("PublicGet() error = %v, want ErrTaskNotFound", err)
		}
	})

	t.Run("shared task returns reduced projection", func(t *testing.T) {
		if _, err := s.Share(ctx, "u1", created.ID); err != nil {
			t.Fatalf("Share() error = %v", err)
		}

		resp, err := s.PublicGet(ctx, created.ID)
		if err != nil {
			t.Fatalf("PublicGet() error = %v", err)
		}
		if resp.ID != created.ID || resp.Title != "public me" {
			t.Errorf("unexpected projection: %+v", resp)
		}
	})

	t.Run("expired share is not found again", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		if err := s.repo.Updates("u1", created.ID, map[string]any{"share_expires_at": past}); err != nil {
			t.Fatalf("failed to expire share: %v", err)
		}
		if _, err := s.PublicGet(ctx, created.ID); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("PublicGet() after expiry error = %v, want ErrTaskNotFound", err)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		if _, err := s.PublicGet(ctx, "no-such-task"); !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("PublicGet() error = %v, want ErrTaskNotFound", err)
		}
	})
}

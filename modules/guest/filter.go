package guest

import (
	"sort"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/task"
)

// Filter applies the standard list semantics to an in-memory task set: the
// same filter, sort and clamped pagination rules the relational query builder
// uses, expressed as a pure function. It returns the page and the filtered
// total.
func Filter(tasks []Task, opts task.ListOptions) ([]Task, int) {
	filtered := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, opts) {
			filtered = append(filtered, t)
		}
	}

	sortTasks(filtered, opts)

	total := len(filtered)
	limit, offset := clampPage(opts)
	if offset >= total {
		return []Task{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total
}

func matches(t Task, opts task.ListOptions) bool {
	if opts.Search != "" {
		needle := strings.ToLower(opts.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(deref(t.Description)), needle) &&
			!strings.Contains(strings.ToLower(deref(t.Tags)), needle) {
			return false
		}
	}

	switch opts.Status {
	case task.StatusAll:
	case "":
		if t.Status == domain.StatusArchived {
			return false
		}
	default:
		if t.Status != opts.Status {
			return false
		}
	}

	if opts.Category != "" && deref(t.Category) != opts.Category {
		return false
	}
	if opts.Priority != "" && deref(t.Priority) != opts.Priority {
		return false
	}
	if opts.Tag != "" && !strings.Contains(strings.ToLower(deref(t.Tags)), strings.ToLower(opts.Tag)) {
		return false
	}

	return true
}

func sortTasks(tasks []Task, opts task.ListOptions) {
	desc := opts.SortOrder == "desc"

	less := func(a, b Task) bool { return a.OrderIndex < b.OrderIndex }
	switch opts.SortBy {
	case "title":
		less = func(a, b Task) bool { return a.Title < b.Title }
	case "due_date":
		less = func(a, b Task) bool { return timeLess(a.DueDate, b.DueDate) }
	case "priority":
		less = func(a, b Task) bool { return deref(a.Priority) < deref(b.Priority) }
	case "status":
		less = func(a, b Task) bool { return a.Status < b.Status }
	case "created_at":
		less = func(a, b Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updated_at":
		less = func(a, b Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if desc {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

func clampPage(opts task.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = task.DefaultPageLimit
	}
	if limit > task.MaxPageLimit {
		limit = task.MaxPageLimit
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// timeLess orders nil due dates first, matching SQLite's NULL ordering in
// ascending scans.
func timeLess(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

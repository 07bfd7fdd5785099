package task

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/cache"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// publicCacheTTL caps how long a public share projection may be cached; the
// effective TTL never extends past the share expiry itself.
const publicCacheTTL = 5 * time.Minute

// Service implements the task lifecycle, ordering and share rules.
type Service struct {
	repo    *Repository
	cache   *cache.Cache // nil disables public-read caching
	sfGroup singleflight.Group
	baseURL string
}

// NewService creates a new task service. baseURL is the externally reachable
// origin used to build share links.
func NewService(repo *Repository, baseURL string) *Service {
	return &Service{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetCache enables cache-aside reads on the public share path.
func (s *Service) SetCache(c *cache.Cache) {
	s.cache = c
}

// List returns one page of the owner's tasks and the filtered total.
func (s *Service) List(_ context.Context, userID string, opts ListOptions) ([]TaskResponse, int64, error) {
	tasks, total, err := s.repo.List(userID, opts)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(tasks), total, nil
}

// Get returns one of the owner's tasks.
func (s *Service) Get(_ context.Context, userID, taskID string) (*TaskResponse, error) {
	t, err := s.repo.FindByID(userID, taskID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(t)
	return &resp, nil
}

// Create adds a task at the end of the owner's ordering, unless the request
// pins an explicit order index.
func (s *Service) Create(_ context.Context, req CreateRequest) (*TaskResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := validateFields(title, req.Description, req.Priority, req.Category, req.Tags); err != nil {
		return nil, err
	}

	orderIndex := 0
	if req.OrderIndex != nil && *req.OrderIndex >= 0 {
		taken, err := s.repo.OrderIndexInUse(req.UserID, *req.OrderIndex, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrOrderIndexTaken
		}
		orderIndex = *req.OrderIndex
	} else {
		max, err := s.repo.MaxOrderIndex(req.UserID)
		if err != nil {
			return nil, err
		}
		orderIndex = max + 1
	}

	now := time.Now()
	t := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Title:       title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Category:    req.Category,
		Tags:        req.Tags,
		Status:      domain.StatusIncomplete,
		OrderIndex:  orderIndex,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(t); err != nil {
		return nil, err
	}

	resp := toResponse(t)
	return &resp, nil
}

// Update applies a partial update. A request with no fields set is rejected;
// updated_at is always refreshed.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*TaskResponse, error) {
	fields := map[string]any{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		if len(title) > domain.MaxTitleLen {
			return nil, ErrFieldTooLong
		}
		fields["title"] = title
	}
	if req.Description != nil {
		if len(*req.Description) > domain.MaxDescriptionLen {
			return nil, ErrFieldTooLong
		}
		fields["description"] = *req.Description
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	} else if req.ClearDue {
		fields["due_date"] = nil
	}
	if req.Priority != nil {
		if !domain.ValidPriority(*req.Priority) {
			return nil, ErrInvalidPriority
		}
		fields["priority"] = *req.Priority
	}
	if req.Category != nil {
		if len(*req.Category) > domain.MaxCategoryLen {
			return nil, ErrFieldTooLong
		}
		fields["category"] = *req.Category
	}
	if req.Tags != nil {
		if len(*req.Tags) > domain.MaxTagsLen {
			return nil, ErrFieldTooLong
		}
		fields["tags"] = *req.Tags
	}
	if req.Status != nil {
		if !domain.ValidStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		fields["status"] = *req.Status
	}
	if req.OrderIndex != nil && *req.OrderIndex >= 0 {
		taken, err := s.repo.OrderIndexInUse(req.UserID, *req.OrderIndex, req.TaskID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrOrderIndexTaken
		}
		fields["order_index"] = *req.OrderIndex
	}

	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	fields["updated_at"] = time.Now()

	if err := s.repo.Updates(req.UserID, req.TaskID, fields); err != nil {
		return nil, err
	}
	s.invalidatePublic(ctx, req.TaskID)

	return s.Get(ctx, req.UserID, req.TaskID)
}

// Delete hard-deletes one of the owner's tasks. Order indices of the
// remaining tasks are left alone; gaps are never compacted.
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.repo.Delete(userID, taskID); err != nil {
		return err
	}
	s.invalidatePublic(ctx, taskID)
	return nil
}

// ToggleStatus moves a task between incomplete and completed. Archiving is a
// separate explicit update, never a toggle target.
func (s *Service) ToggleStatus(ctx context.Context, userID, taskID, status string) (*TaskResponse, error) {
	if status != domain.StatusIncomplete && status != domain.StatusCompleted {
		return nil, ErrInvalidToggleTarget
	}

	fields := map[string]any{"status": status, "updated_at": time.Now()}
	if err := s.repo.Updates(userID, taskID, fields); err != nil {
		return nil, err
	}
	s.invalidatePublic(ctx, taskID)

	return s.Get(ctx, userID, taskID)
}

// Duplicate copies a task to the end of the owner's ordering with a fresh id,
// a "Copy of " title prefix, incomplete status and no share state.
func (s *Service) Duplicate(ctx context.Context, userID, taskID string) (*TaskResponse, error) {
	source, err := s.repo.FindByID(userID, taskID)
	if err != nil {
		return nil, err
	}

	max, err := s.repo.MaxOrderIndex(userID)
	if err != nil {
		return nil, err
	}

	title := "Copy of " + source.Title
	if len(title) > domain.MaxTitleLen {
		title = title[:domain.MaxTitleLen]
	}

	now := time.Now()
	copyTask := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: source.Description,
		DueDate:     source.DueDate,
		Priority:    source.Priority,
		Category:    source.Category,
		Tags:        source.Tags,
		Status:      domain.StatusIncomplete,
		OrderIndex:  max + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(copyTask); err != nil {
		return nil, err
	}

	resp := toResponse(copyTask)
	return &resp, nil
}

// BulkComplete marks every named task completed, all-or-nothing.
func (s *Service) BulkComplete(ctx context.Context, userID string, ids []string) (int64, error) {
	if err := s.verifyBatch(userID, ids); err != nil {
		return 0, err
	}

	count, err := s.repo.BulkUpdateStatus(userID, ids, domain.StatusCompleted)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.invalidatePublic(ctx, id)
	}
	return count, nil
}

// BulkDelete hard-deletes every named task, all-or-nothing.
func (s *Service) BulkDelete(ctx context.Context, userID string, ids []string) (int64, error) {
	if err := s.verifyBatch(userID, ids); err != nil {
		return 0, err
	}

	count, err := s.repo.BulkDelete(userID, ids)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.invalidatePublic(ctx, id)
	}
	return count, nil
}

// Reorder reassigns order_index to each task as its 0-based position in the
// supplied sequence. Any foreign or repeated id rejects the whole request
// before a single write is issued.
func (s *Service) Reorder(_ context.Context, userID string, order []string) ([]TaskResponse, error) {
	if err := s.verifyBatch(userID, order); err != nil {
		return nil, err
	}

	if err := s.repo.Reindex(userID, order); err != nil {
		return nil, err
	}

	tasks, err := s.repo.FindByIDs(userID, order)
	if err != nil {
		return nil, err
	}
	return toResponses(tasks), nil
}

// Share activates the task's public link for 30 days if it is unset or
// expired; an already-active link keeps its current expiry.
func (s *Service) Share(ctx context.Context, userID, taskID string) (*ShareResponse, error) {
	t, err := s.repo.FindByID(userID, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(domain.ShareDuration)
	if t.Shared(now) {
		expiresAt = *t.ShareExpiresAt
	} else {
		fields := map[string]any{"share_expires_at": expiresAt, "updated_at": now}
		if err := s.repo.Updates(userID, taskID, fields); err != nil {
			return nil, err
		}
		s.invalidatePublic(ctx, taskID)
	}

	return &ShareResponse{
		ShareURL:  fmt.Sprintf("%s/public/tasks/%s", s.baseURL, taskID),
		ExpiresAt: expiresAt,
	}, nil
}

// PublicGet serves the reduced projection of a shared task without
// authentication. Unknown, unshared and expired ids all yield ErrTaskNotFound.
func (s *Service) PublicGet(ctx context.Context, taskID string) (*PublicTaskResponse, error) {
	if s.cache != nil {
		var cached PublicTaskResponse
		found, err := s.cache.Get(ctx, publicCacheKey(taskID), &cached)
		if err != nil {
			log.Printf("[task] Cache error for public task %s: %v", taskID, err)
		}
		if found {
			return &cached, nil
		}
	}

	// Suppress stampedes on concurrent misses for the same task.
	val, err, _ := s.sfGroup.Do("public:"+taskID, func() (any, error) {
		return s.repo.FindShared(taskID, time.Now())
	})
	if err != nil {
		return nil, err
	}
	t := val.(*domain.Task)
	resp := toPublicResponse(t)

	if s.cache != nil && t.ShareExpiresAt != nil {
		// The cached entry must never outlive the share expiry.
		ttl := publicCacheTTL
		if remaining := time.Until(*t.ShareExpiresAt); remaining < ttl {
			ttl = remaining
		}
		if ttl > 0 {
			if err := s.cache.SetWithTTL(ctx, publicCacheKey(taskID), resp, ttl); err != nil {
				log.Printf("[task] Failed to cache public task %s: %v", taskID, err)
			}
		}
	}

	return resp, nil
}

// verifyBatch enforces the all-or-nothing ownership discipline shared by
// bulk operations and reorder: the id list must be non-empty, free of
// repeats, and owned in full by the caller.
func (s *Service) verifyBatch(userID string, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyBatch
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicateIDs
		}
		seen[id] = struct{}{}
	}

	owned, err := s.repo.CountOwned(userID, ids)
	if err != nil {
		return err
	}
	if owned != int64(len(ids)) {
		return ErrOwnershipMismatch
	}
	return nil
}

func (s *Service) invalidatePublic(ctx context.Context, taskID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, publicCacheKey(taskID)); err != nil {
		log.Printf("[task] Failed to invalidate public cache for %s: %v", taskID, err)
	}
}

func publicCacheKey(taskID string) string {
	return "public:" + taskID
}

func validateFields(title string, description, priority, category, tags *string) error {
	if len(title) > domain.MaxTitleLen {
		return ErrFieldTooLong
	}
	if description != nil && len(*description) > domain.MaxDescriptionLen {
		return ErrFieldTooLong
	}
	if priority != nil && !domain.ValidPriority(*priority) {
		return ErrInvalidPriority
	}
	if category != nil && len(*category) > domain.MaxCategoryLen {
		return ErrFieldTooLong
	}
	if tags != nil && len(*tags) > domain.MaxTagsLen {
		return ErrFieldTooLong
	}
	return nil
}

func toResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		DueDate:        t.DueDate,
		Priority:       t.Priority,
		Category:       t.Category,
		Tags:           t.Tags,
		Status:         t.Status,
		OrderIndex:     t.OrderIndex,
		ShareExpiresAt: t.ShareExpiresAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toResponses(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toResponse(t))
	}
	return out
}

func toPublicResponse(t *domain.Task) *PublicTaskResponse {
	return &PublicTaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Category:    t.Category,
		Tags:        t.Tags,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}

package guest

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "guest:sess:"

const sessionIDChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
const sessionIDLength = 32

// Store keeps guest sessions and their tasks in Redis. Each session is one
// JSON-encoded task list under a TTL'd key; reading or writing a session
// slides its expiry.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a guest store over the given Redis client.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// CreateSession allocates a fresh, empty guest session.
func (s *Store) CreateSession(ctx context.Context) (string, time.Time, error) {
	id, err := newSessionID()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	if err := s.save(ctx, id, []Task{}); err != nil {
		return "", time.Time{}, err
	}
	return id, time.Now().Add(s.ttl), nil
}

// Tasks loads the full task set of a session and refreshes its TTL.
func (s *Store) Tasks(ctx context.Context, sessionID string) ([]Task, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load guest session: %w", err)
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode guest session: %w", err)
	}

	// Sliding expiry: activity keeps the session alive.
	s.client.Expire(ctx, sessionKeyPrefix+sessionID, s.ttl)

	return tasks, nil
}

// Add appends a new task to the session, enforcing the per-session cap and
// the append-to-end ordering rule.
func (s *Store) Add(ctx context.Context, sessionID string, req CreateRequest) (*Task, error) {
	tasks, err := s.Tasks(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(tasks) >= MaxTasksPerSession {
		return nil, ErrLimitReached
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	maxIndex := -1
	for _, t := range tasks {
		if t.OrderIndex > maxIndex {
			maxIndex = t.OrderIndex
		}
	}

	now := time.Now()
	task := Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Category:    req.Category,
		Tags:        req.Tags,
		Status:      domain.StatusIncomplete,
		OrderIndex:  maxIndex + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tasks = append(tasks, task)
	if err := s.save(ctx, sessionID, tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial update to one of the session's tasks.
func (s *Store) Update(ctx context.Context, req UpdateRequest) (*Task, error) {
	tasks, err := s.Tasks(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if tasks[i].ID != req.TaskID {
			continue
		}

		t := &tasks[i]
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return nil, fmt.Errorf("title is required")
			}
			t.Title = title
		}
		if req.Description != nil {
			t.Description = req.Description
		}
		if req.DueDate != nil {
			t.DueDate = req.DueDate
		}
		if req.Priority != nil {
			if !domain.ValidPriority(*req.Priority) {
				return nil, fmt.Errorf("invalid priority")
			}
			t.Priority = req.Priority
		}
		if req.Category != nil {
			t.Category = req.Category
		}
		if req.Tags != nil {
			t.Tags = req.Tags
		}
		if req.Status != nil {
			if !domain.ValidStatus(*req.Status) {
				return nil, fmt.Errorf("invalid status")
			}
			t.Status = *req.Status
		}
		t.UpdatedAt = time.Now()

		if err := s.save(ctx, req.SessionID, tasks); err != nil {
			return nil, err
		}
		updated := *t
		return &updated, nil
	}

	return nil, ErrTaskNotFound
}

// Toggle moves a session task between incomplete and completed.
func (s *Store) Toggle(ctx context.Context, sessionID, taskID, status string) (*Task, error) {
	if status != domain.StatusIncomplete && status != domain.StatusCompleted {
		return nil, fmt.Errorf("toggle target must be incomplete or completed")
	}
	return s.Update(ctx, UpdateRequest{
		SessionID: sessionID,
		TaskID:    taskID,
		Status:    &status,
	})
}

// Delete removes a task from the session.
func (s *Store) Delete(ctx context.Context, sessionID, taskID string) error {
	tasks, err := s.Tasks(ctx, sessionID)
	if err != nil {
		return err
	}

	for i := range tasks {
		if tasks[i].ID == taskID {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return s.save(ctx, sessionID, tasks)
		}
	}
	return ErrTaskNotFound
}

func (s *Store) save(ctx context.Context, sessionID string, tasks []Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode guest session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store guest session: %w", err)
	}
	return nil
}

func newSessionID() (string, error) {
	id := make([]byte, sessionIDLength)
	max := big.NewInt(int64(len(sessionIDChars)))
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		id[i] = sessionIDChars[n.Int64()]
	}
	return string(id), nil
}

package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/example/task-manager/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskModule provides task query, lifecycle, ordering and share services.
type TaskModule struct {
	db      *gorm.DB
	repo    *Repository
	service *Service
	dbPath  string
	baseURL string
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule() *TaskModule {
	dbPath := os.Getenv("TASKS_DB_PATH")
	if dbPath == "" {
		dbPath = "tasks.db"
	}
	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &TaskModule{
		dbPath:  dbPath,
		baseURL: baseURL,
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetCache wires the Redis cache into the public share path. Called after
// application start; the module works uncached until then.
func (m *TaskModule) SetCache(c *cache.Cache) {
	if m.service != nil && c != nil {
		m.service.SetCache(c)
	}
}

// Start initializes the task module.
func (m *TaskModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	m.repo = NewRepository(db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewService(m.repo, m.baseURL)

	log.Printf("[task] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func(mono.ServiceContainer) error{
		"list": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "list", json.Unmarshal, json.Marshal, m.handleList)
		},
		"get": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "get", json.Unmarshal, json.Marshal, m.handleGet)
		},
		"create": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "create", json.Unmarshal, json.Marshal, m.handleCreate)
		},
		"update": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "update", json.Unmarshal, json.Marshal, m.handleUpdate)
		},
		"delete": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "delete", json.Unmarshal, json.Marshal, m.handleDelete)
		},
		"toggle-status": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "toggle-status", json.Unmarshal, json.Marshal, m.handleToggleStatus)
		},
		"duplicate": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "duplicate", json.Unmarshal, json.Marshal, m.handleDuplicate)
		},
		"bulk-complete": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "bulk-complete", json.Unmarshal, json.Marshal, m.handleBulkComplete)
		},
		"bulk-delete": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "bulk-delete", json.Unmarshal, json.Marshal, m.handleBulkDelete)
		},
		"reorder": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "reorder", json.Unmarshal, json.Marshal, m.handleReorder)
		},
		"share": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "share", json.Unmarshal, json.Marshal, m.handleShare)
		},
		"public-get": func(c mono.ServiceContainer) error {
			return helper.RegisterTypedRequestReplyService(c, "public-get", json.Unmarshal, json.Marshal, m.handlePublicGet)
		},
	}

	for name, register := range services {
		if err := register(container); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[task] Registered %d services", len(services))
	return nil
}

func (m *TaskModule) handleList(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	tasks, total, err := m.service.List(ctx, req.UserID, req.Options)
	if err != nil {
		return ListResponse{}, err
	}
	return ListResponse{Tasks: tasks, Total: total}, nil
}

func (m *TaskModule) handleGet(ctx context.Context, req GetRequest, _ *mono.Msg) (TaskResponse, error) {
	resp, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return *resp, nil
}

func (m *TaskModule) handleCreate(ctx context.Context, req CreateRequest, _ *mono.Msg) (TaskResponse, error) {
	resp, err := m.service.Create(ctx, req)
	if err != nil {
		return TaskResponse{}, err
	}
	return *resp, nil
}

func (m *TaskModule) handleUpdate(ctx context.Context, req UpdateRequest, _ *mono.Msg) (TaskResponse, error) {
	resp, err := m.service.Update(ctx, req)
	if err != nil {
		return TaskResponse{}, err
	}
	return *resp, nil
}

func (m *TaskModule) handleDelete(ctx context.Context, req DeleteRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.service.Delete(ctx, req.UserID, req.TaskID); err != nil {
		return DeleteResponse{}, err
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *TaskModule) handleToggleStatus(ctx context.Context, req ToggleStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	resp, err := m.service.ToggleStatus(ctx, req.UserID, req.TaskID, req.Status)
	if err != nil {
		return TaskResponse{}, err
	}
	return *resp, nil
}

func (m *TaskModule) handleDuplicate(ctx context.Context, req DuplicateRequest, _ *mono.Msg) (TaskResponse, error) {
	resp, err := m.service.Duplicate(ctx, req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return *resp, nil
}

func (m *TaskModule) handleBulkComplete(ctx context.Context, req BulkRequest, _ *mono.Msg) (BulkResponse, error) {
	count, err := m.service.BulkComplete(ctx, req.UserID, req.TaskIDs)
	if err != nil {
		return BulkResponse{}, err
	}
	return BulkResponse{Count: count}, nil
}

func (m *TaskModule) handleBulkDelete(ctx context.Context, req BulkRequest, _ *mono.Msg) (BulkResponse, error) {
	count, err := m.service.BulkDelete(ctx, req.UserID, req.TaskIDs)
	if err != nil {
		return BulkResponse{}, err
	}
	return BulkResponse{Count: count}, nil
}

func (m *TaskModule) handleReorder(ctx context.Context, req ReorderRequest, _ *mono.Msg) (ReorderResponse, error) {
	tasks, err := m.service.Reorder(ctx, req.UserID, req.Order)
	if err != nil {
		return ReorderResponse{}, err
	}
	return ReorderResponse{Tasks: tasks}, nil
}

func (m *TaskModule) handleShare(ctx context.Context, req ShareRequest, _ *mono.Msg) (ShareResponse, error) {
	resp, err := m.service.Share(ctx, req.UserID, req.TaskID)
	if err != nil {
		return ShareResponse{}, err
	}
	return *resp, nil
}

func (m *TaskModule) handlePublicGet(ctx context.Context, req PublicGetRequest, _ *mono.Msg) (PublicTaskResponse, error) {
	resp, err := m.service.PublicGet(ctx, req.TaskID)
	if err != nil {
		return PublicTaskResponse{}, err
	}
	return *resp, nil
}

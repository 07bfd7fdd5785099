package api

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/guest"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP API module.
type APIModule struct {
	app           *fiber.App
	addr          string
	authContainer mono.ServiceContainer
	taskContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	guestStore    *guest.Store
	handlers      *Handlers
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule() *APIModule {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	return &APIModule{addr: addr}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskContainer = container
	}
}

// SetGuestStore wires the guest session store in. Called after application
// start; guest routes 503 until then.
func (m *APIModule) SetGuestStore(store *guest.Store) {
	m.guestStore = store
	if m.handlers != nil {
		m.handlers.guestStore = store
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authContainer == nil || m.taskContainer == nil {
		return fmt.Errorf("auth and task dependencies must be set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes() {
	m.handlers = NewHandlers(m.authContainer, m.taskContainer, m.authAdapter, m.guestStore)
	handlers := m.handlers

	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	v1 := m.app.Group("/api/v1")

	// Public auth routes.
	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)
	authRoutes.Post("/refresh", handlers.Refresh)
	authRoutes.Post("/forgot-password", handlers.ForgotPassword)
	authRoutes.Post("/reset-password", handlers.ResetPassword)

	// Public share route: no authentication, reduced projection.
	v1.Get("/public/tasks/:id", handlers.PublicTask)

	// Guest routes: session header instead of bearer auth.
	guestRoutes := v1.Group("/guest")
	guestRoutes.Post("/sessions", handlers.CreateGuestSession)
	guestTasks := guestRoutes.Group("/tasks", GuestMiddleware())
	guestTasks.Get("", handlers.ListGuestTasks)
	guestTasks.Post("", handlers.CreateGuestTask)
	guestTasks.Patch("/:id", handlers.UpdateGuestTask)
	guestTasks.Delete("/:id", handlers.DeleteGuestTask)
	guestTasks.Patch("/:id/toggle-status", handlers.ToggleGuestTask)

	// Protected routes.
	protected := v1.Group("", AuthMiddleware(m.authAdapter))
	protected.Get("/profile", handlers.Profile)
	protected.Patch("/profile", handlers.UpdateProfile)

	tasks := protected.Group("/tasks")
	tasks.Get("", handlers.ListTasks)
	tasks.Post("", handlers.CreateTask)
	tasks.Post("/bulk-complete", handlers.BulkComplete)
	tasks.Delete("/bulk-delete", handlers.BulkDelete)
	tasks.Patch("/reorder", handlers.ReorderTasks)
	tasks.Get("/:id", handlers.GetTask)
	tasks.Patch("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)
	tasks.Post("/:id/duplicate", handlers.DuplicateTask)
	tasks.Patch("/:id/toggle-status", handlers.ToggleTaskStatus)
	tasks.Post("/:id/share", handlers.ShareTask)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

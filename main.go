package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/task-manager/modules/api"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/guest"
	"github.com/example/task-manager/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")

	log.Println("=== Task Manager ===")

	cacheModule := cache.NewModule(redisAddr)
	authModule := auth.NewModule()
	taskModule := task.NewModule()
	guestModule := guest.NewModule()
	apiModule := api.NewModule()

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Independent modules first, then dependents.
	app.Register(cacheModule)
	app.Register(authModule)
	app.Register(taskModule)
	app.Register(guestModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Post-start wiring of the shared Redis resources.
	taskModule.SetCache(cacheModule.GetCache())
	guestModule.SetRedis(cacheModule.GetClient())
	apiModule.SetGuestStore(guestModule.GetStore())

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("REST API Endpoints (default http://localhost:3000):")
	log.Println("")
	log.Println("  Public:")
	log.Println("  POST   /api/v1/auth/register         - Register a new user")
	log.Println("  POST   /api/v1/auth/login            - Login and get tokens")
	log.Println("  POST   /api/v1/auth/refresh          - Refresh access token")
	log.Println("  POST   /api/v1/auth/forgot-password  - Request a password reset")
	log.Println("  POST   /api/v1/auth/reset-password   - Complete a password reset")
	log.Println("  GET    /api/v1/public/tasks/:id      - View a shared task")
	log.Println("  POST   /api/v1/guest/sessions        - Start a guest session")
	log.Println("  GET    /health                       - Health check")
	log.Println("")
	log.Println("  Protected (Bearer token):")
	log.Println("  GET    /api/v1/profile               - Current user profile")
	log.Println("  PATCH  /api/v1/profile               - Update profile/categories")
	log.Println("  GET    /api/v1/tasks                 - List tasks (filter/sort/page)")
	log.Println("  POST   /api/v1/tasks                 - Create a task")
	log.Println("  PATCH  /api/v1/tasks/:id             - Update a task")
	log.Println("  DELETE /api/v1/tasks/:id             - Delete a task")
	log.Println("  POST   /api/v1/tasks/:id/duplicate   - Duplicate a task")
	log.Println("  PATCH  /api/v1/tasks/:id/toggle-status - Toggle completion")
	log.Println("  POST   /api/v1/tasks/:id/share       - Activate public link")
	log.Println("  POST   /api/v1/tasks/bulk-complete   - Complete a batch")
	log.Println("  DELETE /api/v1/tasks/bulk-delete     - Delete a batch")
	log.Println("  PATCH  /api/v1/tasks/reorder         - Reorder all tasks")
	log.Println("")
	log.Println("  Guest (X-Guest-Session header):")
	log.Println("  GET/POST /api/v1/guest/tasks         - List/create guest tasks (max 5)")
	log.Println("  PATCH/DELETE /api/v1/guest/tasks/:id - Update/delete guest tasks")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

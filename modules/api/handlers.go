package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/guest"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authContainer mono.ServiceContainer
	taskContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	guestStore    *guest.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer, taskContainer mono.ServiceContainer, authAdapter auth.AuthPort, guestStore *guest.Store) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		taskContainer: taskContainer,
		authAdapter:   authAdapter,
		guestStore:    guestStore,
	}
}

// callAuth invokes an auth module service with JSON marshalling.
func (h *Handlers) callAuth(ctx context.Context, service string, req, resp any) error {
	return helper.CallRequestReplyService[any, any](ctx, h.authContainer, service, json.Marshal, json.Unmarshal, req, &resp)
}

// callTask invokes a task module service with JSON marshalling.
func (h *Handlers) callTask(ctx context.Context, service string, req, resp any) error {
	return helper.CallRequestReplyService[any, any](ctx, h.taskContainer, service, json.Marshal, json.Unmarshal, req, &resp)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

func internalError(c *fiber.Ctx, err error) error {
	log.Printf("[api] Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// handleAuthError maps auth service errors to responses. Errors cross the
// service container as strings, so they are matched by message.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid email or password"):
		return unauthorized(c, "Invalid email or password")
	case strings.Contains(errStr, "user with this email already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(errStr, "invalid email format"):
		return badRequest(c, "Invalid email format")
	case strings.Contains(errStr, "password must be at least"):
		return badRequest(c, "Password must be at least 8 characters")
	case strings.Contains(errStr, "password must be at most"):
		return badRequest(c, "Password must be at most 72 characters")
	case strings.Contains(errStr, "invalid or expired reset token"):
		return badRequest(c, "Invalid or expired reset token")
	case strings.Contains(errStr, "user not found"):
		return notFound(c, "User not found")
	default:
		return internalError(c, err)
	}
}

// handleTaskError maps task service errors to responses. Ownership failures
// and missing tasks share one 404 so existence never leaks.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"),
		strings.Contains(errStr, "not owned by the caller"):
		return notFound(c, "Task not found")
	case strings.Contains(errStr, "title is required"):
		return badRequest(c, "Title is required")
	case strings.Contains(errStr, "exceeds maximum length"):
		return badRequest(c, "A field exceeds its maximum length")
	case strings.Contains(errStr, "invalid priority"):
		return badRequest(c, "Priority must be low, medium or high")
	case strings.Contains(errStr, "invalid status"):
		return badRequest(c, "Invalid status value")
	case strings.Contains(errStr, "toggle target"):
		return badRequest(c, "Toggle target must be incomplete or completed")
	case strings.Contains(errStr, "no fields to update"):
		return badRequest(c, "No fields to update")
	case strings.Contains(errStr, "no task ids supplied"):
		return badRequest(c, "At least one task id is required")
	case strings.Contains(errStr, "duplicate task ids"):
		return badRequest(c, "Task ids must not repeat")
	case strings.Contains(errStr, "order index already in use"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Order index already in use",
		})
	default:
		return internalError(c, err)
	}
}

// handleGuestError maps guest store errors to responses. Guest errors keep
// their types since the store is wired directly, not through the container.
func (h *Handlers) handleGuestError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, guest.ErrSessionNotFound):
		return notFound(c, "Guest session not found or expired")
	case errors.Is(err, guest.ErrTaskNotFound):
		return notFound(c, "Task not found")
	case errors.Is(err, guest.ErrLimitReached):
		return badRequest(c, "Guest sessions are limited to 5 tasks")
	case strings.Contains(err.Error(), "title is required"),
		strings.Contains(err.Error(), "invalid priority"),
		strings.Contains(err.Error(), "invalid status"),
		strings.Contains(err.Error(), "toggle target"):
		return badRequest(c, err.Error())
	default:
		return internalError(c, err)
	}
}

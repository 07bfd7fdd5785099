package api

import (
	"strconv"

	"github.com/example/task-manager/modules/guest"
	"github.com/example/task-manager/modules/task"
	"github.com/gofiber/fiber/v2"
)

// guestSession extracts the session id set by GuestMiddleware.
func guestSession(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(GuestContextKey).(string)
	return id, ok && id != ""
}

// guestReady guards guest routes until the store has been wired in.
func (h *Handlers) guestReady(c *fiber.Ctx) (*guest.Store, error) {
	if h.guestStore == nil {
		return nil, c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "unavailable",
			Message: "Guest mode is not available",
		})
	}
	return h.guestStore, nil
}

// CreateGuestSession issues a fresh guest session id.
func (h *Handlers) CreateGuestSession(c *fiber.Ctx) error {
	store, err := h.guestReady(c)
	if store == nil {
		return err
	}

	id, expiresAt, err := store.CreateSession(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(GuestSessionResponse{
		SessionID: id,
		ExpiresAt: expiresAt,
	})
}

// ListGuestTasks lists the session's tasks with the standard query options,
// filtered in memory.
func (h *Handlers) ListGuestTasks(c *fiber.Ctx) error {
	store, err := h.guestReady(c)
	if store == nil {
		return err
	}
	sessionID, ok := guestSession(c)
	if !ok {
		return unauthorized(c, "Guest session required")
	}

	tasks, err := store.Tasks(c.UserContext(), sessionID)
	if err != nil {
		return h.handleGuestError(c, err)
	}

	opts := task.ListOptions{
		Search:    c.Query("search_query"),
		Status:    c.Query("filter_status"),
		Category:  c.Query("filter_category"),
		Priority:  c.Query("filter_priority"),
		Tag:       c.Query("filter_tags"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		opts.Offset = v
	}

	page, total := guest.Filter(tasks, opts)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tasks": page,
		"total": total,
	})
}

// CreateGuestTask adds a task to the session, subject to the 5-task cap.
func (h *Handlers) CreateGuestTask(c *fiber.Ctx) error {
	store, err := h.guestReady(c)
	if store == nil {
		return err
	}
	sessionID, ok := guestSession(c)
	if !ok {
		return unauthorized(c, "Guest session required")
	}

	var body CreateTaskRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := store.Add(c.UserContext(), sessionID, guest.CreateRequest{
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		Priority:    body.Priority,
		Category:    body.Category,
		Tags:        body.Tags,
	})
	if err != nil {
		return h.handleGuestError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateGuestTask partially updates a guest task.
func (h *Handlers) UpdateGuestTask(c *fiber.Ctx) error {
	store, err := h.guestReady(c)
	if store == nil {
		return err
	}
	sessionID, ok := guestSession(c)
	if !ok {
		return unauthorized(c, "Guest session required")
	}

	var body UpdateTaskRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := store.Update(c.UserContext(), guest.UpdateRequest{
		SessionID:   sessionID,
		TaskID:      c.Params("id"),
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		Priority:    body.Priority,
		Category:    body.Category,
		Tags:        body.Tags,
		Status:      body.Status,
	})
	if err != nil {
		return h.handleGuestError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteGuestTask removes a task from the session.
func (h *Handlers) DeleteGuestTask(c *fiber.Ctx) error {
	store, err := h.guestReady(c)
	if store == nil {
		return err
	}
	sessionID, ok := guestSession(c)
	if !ok {
		return unauthorized(c, "Guest session required")
	}

	if err := store.Delete(c.UserContext(), sessionID, c.Params("id")); err != nil {
		return h.handleGuestError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(MessageResponse{Message: "Task deleted"})
}

// ToggleGuestTask moves a guest task between incomplete and completed.
func (h *Handlers) ToggleGuestTask(c *fiber.Ctx) error {
	store, err := h.guestReady(c)
	if store == nil {
		return err
	}
	sessionID, ok := guestSession(c)
	if !ok {
		return unauthorized(c, "Guest session required")
	}

	var body ToggleStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	toggled, err := store.Toggle(c.UserContext(), sessionID, c.Params("id"), body.Status)
	if err != nil {
		return h.handleGuestError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toggled)
}

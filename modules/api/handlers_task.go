package api

import (
	"strconv"
	"strings"

	domain "github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/task"
	"github.com/gofiber/fiber/v2"
)

// claims extracts the authenticated identity set by AuthMiddleware.
func claims(c *fiber.Ctx) (*domain.Claims, bool) {
	cl, ok := c.Locals(UserContextKey).(*domain.Claims)
	return cl, ok
}

// ListTasks handles the filtered, sorted, paginated task listing.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
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
	// Malformed numbers fall back to defaults; the service clamps ranges.
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		opts.Offset = v
	}

	req := task.ListRequest{UserID: cl.UserID, Options: opts}
	var resp task.ListResponse
	if err := h.callTask(c.UserContext(), "list", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tasks": resp.Tasks,
		"total": resp.Total,
	})
}

// CreateTask handles task creation.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var body CreateTaskRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := task.CreateRequest{
		UserID:      cl.UserID,
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		Priority:    body.Priority,
		Category:    body.Category,
		Tags:        body.Tags,
		OrderIndex:  body.OrderIndex,
	}
	var resp task.TaskResponse
	if err := h.callTask(c.UserContext(), "create", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetTask returns a single owned task.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	req := task.GetRequest{UserID: cl.UserID, TaskID: c.Params("id")}
	var resp task.TaskResponse
	if err := h.callTask(c.UserContext(), "get", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// UpdateTask handles a partial task update.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var body UpdateTaskRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := task.UpdateRequest{
		UserID:      cl.UserID,
		TaskID:      c.Params("id"),
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		ClearDue:    body.ClearDue,
		Priority:    body.Priority,
		Category:    body.Category,
		Tags:        body.Tags,
		Status:      body.Status,
		OrderIndex:  body.OrderIndex,
	}
	var resp task.TaskResponse
	if err := h.callTask(c.UserContext(), "update", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// DeleteTask hard-deletes an owned task.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	req := task.DeleteRequest{UserID: cl.UserID, TaskID: c.Params("id")}
	var resp task.DeleteResponse
	if err := h.callTask(c.UserContext(), "delete", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(MessageResponse{Message: "Task deleted"})
}

// DuplicateTask copies a task to the end of the owner's ordering.
func (h *Handlers) DuplicateTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	req := task.DuplicateRequest{UserID: cl.UserID, TaskID: c.Params("id")}
	var resp task.TaskResponse
	if err := h.callTask(c.UserContext(), "duplicate", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ToggleTaskStatus moves a task between incomplete and completed.
func (h *Handlers) ToggleTaskStatus(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var body ToggleStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := task.ToggleStatusRequest{UserID: cl.UserID, TaskID: c.Params("id"), Status: body.Status}
	var resp task.TaskResponse
	if err := h.callTask(c.UserContext(), "toggle-status", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// ShareTask activates (or reports) the task's public share link.
func (h *Handlers) ShareTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	req := task.ShareRequest{UserID: cl.UserID, TaskID: c.Params("id")}
	var resp task.ShareResponse
	if err := h.callTask(c.UserContext(), "share", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(ShareTaskResponse{
		ShareURL:  resp.ShareURL,
		ExpiresAt: resp.ExpiresAt,
	})
}

// BulkComplete marks a batch of owned tasks completed, all-or-nothing.
func (h *Handlers) BulkComplete(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var body BulkTasksRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := task.BulkRequest{UserID: cl.UserID, TaskIDs: body.TaskIDs}
	var resp task.BulkResponse
	if err := h.callTask(c.UserContext(), "bulk-complete", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(BulkCompleteResponse{UpdatedCount: resp.Count})
}

// BulkDelete hard-deletes a batch of owned tasks, all-or-nothing.
func (h *Handlers) BulkDelete(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var body BulkTasksRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := task.BulkRequest{UserID: cl.UserID, TaskIDs: body.TaskIDs}
	var resp task.BulkResponse
	if err := h.callTask(c.UserContext(), "bulk-delete", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(BulkDeleteResponse{DeletedCount: resp.Count})
}

// ReorderTasks applies the owner's full desired ordering.
func (h *Handlers) ReorderTasks(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var body ReorderTasksRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := task.ReorderRequest{UserID: cl.UserID, Order: body.Order}
	var resp task.ReorderResponse
	if err := h.callTask(c.UserContext(), "reorder", &req, &resp); err != nil {
		return h.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tasks": resp.Tasks})
}

// PublicTask serves the reduced projection of a shared task. No
// authentication; unknown, unshared and expired ids are one 404.
func (h *Handlers) PublicTask(c *fiber.Ctx) error {
	req := task.PublicGetRequest{TaskID: c.Params("id")}
	var resp task.PublicTaskResponse
	if err := h.callTask(c.UserContext(), "public-get", &req, &resp); err != nil {
		return h.handlePublicError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// handlePublicError collapses missing, unshared and expired tasks into one
// 404. Anything else is a storage or transport failure and must surface as
// a logged 500, not masquerade as a missing task.
func (h *Handlers) handlePublicError(c *fiber.Ctx, err error) error {
	if strings.Contains(err.Error(), "task not found") {
		return notFound(c, "Task not found")
	}
	return internalError(c, err)
}

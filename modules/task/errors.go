package task

import "errors"

// Sentinel errors for task operations.
var (
	// ErrTaskNotFound is returned when a task does not exist or is not
	// owned by the caller. The two cases are deliberately indistinguishable.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTitleRequired is returned when a task title is missing or blank.
	ErrTitleRequired = errors.New("title is required")

	// ErrFieldTooLong is returned when a field exceeds its length limit.
	ErrFieldTooLong = errors.New("field exceeds maximum length")

	// ErrInvalidPriority is returned when priority is not low/medium/high.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidStatus is returned when status is not a recognized value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidToggleTarget is returned when toggle-status is asked to move
	// to anything other than incomplete or completed.
	ErrInvalidToggleTarget = errors.New("toggle target must be incomplete or completed")

	// ErrEmptyUpdate is returned when a partial update carries no fields.
	ErrEmptyUpdate = errors.New("no fields to update")

	// ErrEmptyBatch is returned when a bulk operation names no tasks.
	ErrEmptyBatch = errors.New("no task ids supplied")

	// ErrDuplicateIDs is returned when a bulk or reorder request repeats ids.
	ErrDuplicateIDs = errors.New("duplicate task ids supplied")

	// ErrOwnershipMismatch is returned when a bulk or reorder request names
	// any task the caller does not own; the whole batch is rejected.
	ErrOwnershipMismatch = errors.New("one or more tasks are not owned by the caller")

	// ErrOrderIndexTaken is returned when an explicit order index collides
	// with another of the owner's tasks. Indices stay unique per owner.
	ErrOrderIndexTaken = errors.New("order index already in use")
)

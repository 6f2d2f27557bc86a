package domain

import "fmt"

// ValidationError indicates the caller supplied invalid input.
type ValidationError struct {
	Message string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates a requested entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidStateError indicates a lifecycle event is not legal from the
// entity's current state. It is a caller bug and is never retried.
type InvalidStateError struct {
	From  string
	Event string
}

// NewInvalidStateError creates a new InvalidStateError.
func NewInvalidStateError(from, event string) *InvalidStateError {
	return &InvalidStateError{From: from, Event: event}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("event %q is not allowed from state %q", e.Event, e.From)
}

// ConflictError indicates an optimistic-concurrency mismatch: the
// entity was modified by another actor between read and write. Callers
// should re-read and retry a bounded number of times.
type ConflictError struct {
	Message string
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ForbiddenError indicates the acting user may not perform the operation.
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a new ForbiddenError.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

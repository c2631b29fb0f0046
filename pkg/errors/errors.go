package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`

	// Details carries kind-specific payloads (conflicting ids,
	// opening hours, state names) for callers that can act on them.
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrValidation
	ErrInternal
	ErrOutsideOpeningHours
	ErrSchedulingConflict
	ErrInvalidTransition
	ErrImmutable
	ErrPersistenceConflict
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewValidation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewOutsideOpeningHours reports a window that falls outside a store's
// opening hours. hours holds the store's actual hours for that day so the
// caller can suggest alternatives ("closed" when the store is shut).
func NewOutsideOpeningHours(weekday, hours string) *AppError {
	return &AppError{
		Code:    ErrOutsideOpeningHours,
		Message: fmt.Sprintf("requested window is outside opening hours (%s: %s)", weekday, hours),
		Details: map[string]interface{}{
			"weekday": weekday,
			"hours":   hours,
		},
	}
}

// NewSchedulingConflict carries the full set of conflicting appointment ids.
func NewSchedulingConflict(conflictIDs []uuid.UUID) *AppError {
	return &AppError{
		Code:    ErrSchedulingConflict,
		Message: fmt.Sprintf("requested window conflicts with %d existing appointment(s)", len(conflictIDs)),
		Details: map[string]interface{}{
			"conflicting_appointment_ids": conflictIDs,
		},
	}
}

func NewInvalidTransition(current, target string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %s to %s", current, target),
		Details: map[string]interface{}{
			"current_status": current,
			"target_status":  target,
		},
	}
}

// NewImmutable reports a mutation attempted on an appointment in a
// terminal status.
func NewImmutable(status string) *AppError {
	return &AppError{
		Code:    ErrImmutable,
		Message: fmt.Sprintf("appointment in terminal status %s cannot be modified", status),
		Details: map[string]interface{}{
			"status": status,
		},
	}
}

// NewPersistenceConflict wraps a storage-layer constraint or serialization
// failure raised by the atomic check-and-insert. The orchestrator maps it
// to a scheduling conflict before it reaches callers.
func NewPersistenceConflict(err error) *AppError {
	return &AppError{
		Code:    ErrPersistenceConflict,
		Message: "concurrent booking detected",
		Err:     err,
	}
}

// NewPersistenceConflictWithIDs is raised when the transactional re-check
// itself finds the overlapping rows and can name them.
func NewPersistenceConflictWithIDs(ids []uuid.UUID) *AppError {
	return &AppError{
		Code:    ErrPersistenceConflict,
		Message: "concurrent booking detected",
		Details: map[string]interface{}{
			"conflicting_appointment_ids": ids,
		},
	}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

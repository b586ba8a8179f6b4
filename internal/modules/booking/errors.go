package booking

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("capacity conflict")
	ErrRetryExhausted = errors.New("transaction retry exhausted")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports that the requested interval would push the resource
// past its capacity. PeakCount excludes the rejected request.
type ConflictError struct {
	PeakCount                int    `json:"peak_count"`
	Capacity                 int    `json:"capacity"`
	ConflictingOwnerID       string `json:"conflicting_owner"`
	ConflictingReservationID string `json:"conflicting_reservation_id,omitempty"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d of %d already booked", e.PeakCount, e.Capacity)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

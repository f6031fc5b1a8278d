package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the admission and workflow taxonomy. Handlers map
// these to HTTP status codes; everything else is treated as an
// infrastructure failure.
var (
	// ErrSlotFull is returned when a slot's capacity is exhausted or the
	// slot has been closed by an admin.
	ErrSlotFull = errors.New("slot is full")

	// ErrStoreClosed is returned when the store-open gate rejects new
	// admissions.
	ErrStoreClosed = errors.New("store is closed")

	// ErrAdmissionConflict is returned when transient contention exhausted
	// the retry budget. The whole admission may be retried from scratch.
	ErrAdmissionConflict = errors.New("admission conflict, retry")

	// ErrNotFound is returned when a referenced order or slot does not exist.
	ErrNotFound = errors.New("not found")
)

// InvalidTransitionError reports a status transition requested from a state
// that does not permit it.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ValidationError reports malformed input rejected before any store
// interaction.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidTransition reports whether err is a rejected status transition.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

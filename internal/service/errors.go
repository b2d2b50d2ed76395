package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the actor does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition: the order's current status does not permit the
	// requested target.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation: malformed or unacceptable input. Wrap with detail via
	// fmt.Errorf("...: %w", ErrValidation).
	ErrValidation = errors.New("invalid input")
)

// GenerationExhaustedError reports that the menu generator ran out of
// attempts for one (date, slot) pair. It carries the last raw model output
// for operator diagnosis and aborts the whole batch.
type GenerationExhaustedError struct {
	Date       string
	Slot       int
	Attempts   int
	LastOutput string
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("menu generation exhausted after %d attempts for %s slot %d",
		e.Attempts, e.Date, e.Slot)
}

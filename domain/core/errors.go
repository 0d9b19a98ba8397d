package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyMatrix  = fmt.Errorf("%w: empty matrix", ErrInvalidInput)
	ErrRaggedMatrix = fmt.Errorf("%w: rows have differing lengths", ErrInvalidInput)

	// Statistical degeneracies
	ErrDegenerateRow    = errors.New("zero-variance row cannot be standardized")
	ErrDegenerateMatrix = errors.New("score matrix has zero variance")
	ErrEmptyAnnotation  = errors.New("no annotation group survives filtering")

	// Clustering errors
	ErrUnknownMethod = errors.New("unknown clustering method")
	ErrNotConverged  = errors.New("clustering hit iteration cap without converging")
	ErrTooFewRows    = errors.New("fewer rows than requested clusters")

	// Run errors
	ErrRunNotFound = errors.New("run not found")
)

// Error constructors with context
func NewDegenerateRowError(entity EntityID) error {
	return fmt.Errorf("%w: %s", ErrDegenerateRow, entity)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDegenerateRow) ||
		errors.Is(err, ErrTooFewRows)
}

// IsRecoverable reports whether an error is one of the warning-grade
// conditions a run is allowed to proceed past.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrNotConverged) ||
		errors.Is(err, ErrEmptyAnnotation)
}

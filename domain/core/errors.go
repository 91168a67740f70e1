package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound             = errors.New("resource not found")
	ErrDatasetNotFound      = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrModelNotFound        = fmt.Errorf("%w: model", ErrNotFound)
	ErrConversationNotFound = fmt.Errorf("%w: conversation", ErrNotFound)
	ErrColumnNotFound       = fmt.Errorf("%w: column", ErrNotFound)

	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoModels         = errors.New("no models to compare")
	ErrEmptyDataset     = errors.New("dataset has no rows")
	ErrNonNumericColumn = errors.New("column is not numeric")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrUnknownModelType = errors.New("unknown model type")

	// Store errors
	ErrStoreClosed    = errors.New("store is closed")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrCorruptedState = errors.New("corrupted state file")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

func NewColumnError(column string, err error) error {
	return fmt.Errorf("%w: column %s", err, column)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoModels) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrNonNumericColumn) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrUnknownModelType)
}

func IsStoreError(err error) bool {
	return errors.Is(err, ErrStoreClosed) ||
		errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrCorruptedState)
}

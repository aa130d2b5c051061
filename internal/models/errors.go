package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSourceUnavailable = errors.New("reference data source unavailable")
)

// ValidationError rejects a request before any calculation runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

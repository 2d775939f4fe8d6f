package book

import "errors"

var ErrNotFound = errors.New("book not found")

// ValidationError carries field -> message problems found by the service.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "invalid book data" }

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

package favorite

import "errors"

var ErrNotFound = errors.New("favorite not found")

// ValidationError carries field -> message problems found by the service.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "invalid favorite data" }

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

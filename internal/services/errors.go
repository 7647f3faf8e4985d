package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the requested entity does not exist (404)
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input is malformed or missing required fields (400)
	ErrValidation = errors.New("validation failed")

	// ErrConflict means a unique key is already taken, e.g. a slug collision
	// or a duplicate like (409)
	ErrConflict = errors.New("conflict")
)

// NotFoundf wraps ErrNotFound with a formatted message
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// Validationf wraps ErrValidation with a formatted message
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// Conflictf wraps ErrConflict with a formatted message
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConflict}, args...)...)
}

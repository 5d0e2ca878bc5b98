package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

// ConflictError is a conflict that names the existing resource, so handlers
// can surface resource_type and resource_id alongside the problem detail.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, comment, template)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status for this conflict
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

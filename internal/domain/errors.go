package domain

import (
	"fmt"
	"strings"
)

// Error types shared by the workflows. The HTTP layer maps each one to a
// status code with errors.As.

// ErrValidation indicates malformed or missing input (400).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnprocessable indicates input that is well formed but cannot produce a
// valid contract (422). Missing lists the absent legal profile fields, if any.
type ErrUnprocessable struct {
	Message string
	Missing []string
}

func (e *ErrUnprocessable) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
}

// ErrForbidden indicates the principal may not perform the action (403).
type ErrForbidden struct {
	Action string
	Reason string
}

func (e *ErrForbidden) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("forbidden: %s", e.Action)
	}
	return fmt.Sprintf("forbidden: %s: %s", e.Action, e.Reason)
}

// ErrNotFound indicates a resource was not found (404).
type ErrNotFound struct {
	Resource string
	ID       int32
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Resource, e.ID)
}

// ErrConflict indicates the resource is not in the state the operation
// requires, or the requested dates clash with another rental (409).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUnauthorized indicates a missing or invalid bearer token (401).
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

package errorz

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxInValues is the largest number of values a single membership query accepts.
// Longer id lists are split by the caller.
const MaxInValues = 10

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	ErrClubNotFound  = fmt.Errorf("club %w", ErrNotFound)
	ErrEventNotFound = fmt.Errorf("event %w", ErrNotFound)

	// ErrTooManyValues is returned by membership queries given more values than the store accepts.
	ErrTooManyValues = errors.New("too many values for membership query")

	ErrInvalidCode  = fmt.Errorf("invalid or expired code: %w", ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrRevokedToken = fmt.Errorf("revoked token: %w", ErrUnauthorized)
	ErrNoRunDays    = errors.New("club has no run days")

	ErrTooManyRequests = errors.New("too many requests")
)

// ValidationError carries one message per rejected field, keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

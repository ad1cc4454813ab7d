package domain

import (
	"errors"
	"fmt"
	"strings"
)

type NotFoundError struct {
	Resource string
	Key      string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource != "" && e.Key != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
	case e.Resource != "":
		return fmt.Sprintf("%s not found", e.Resource)
	default:
		return "not found"
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" && !strings.Contains(e.Msg, e.Field) {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// MissingField reports the first required intake field that was absent or empty.
func MissingField(field string) ValidationError {
	return ValidationError{Field: field, Msg: "Missing required field: " + field}
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// AuthError is returned by the admin session gate. Forbidden distinguishes an
// authenticated non-admin caller from an anonymous one.
type AuthError struct {
	Msg       string
	Forbidden bool
	Err       error
}

func (e AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Forbidden {
		return "Admin access required"
	}
	return "Authentication required"
}

func (e AuthError) Unwrap() error { return e.Err }

// PersistenceError wraps any storage read/write failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	if e.Op == "" {
		return "persistence error"
	}
	return fmt.Sprintf("failed to %s", e.Op)
}

func (e PersistenceError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target AuthError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target AuthError
	return errors.As(err, &target) && target.Forbidden
}

func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}

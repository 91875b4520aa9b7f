package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation               = errors.New("validation failed")
	ErrReferentialInconsistency = errors.New("referential inconsistency")
	ErrDivisionByZero           = errors.New("division by zero")
)

// FieldError names one field and the constraint it failed.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every offending field of a rejected input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add records a failure for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field failed at least one constraint.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Message returns the first message recorded for field.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Err returns e when it holds failures, nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ReferenceError reports a referenced record that is missing, owned by
// another user, or of the wrong type.
type ReferenceError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrReferentialInconsistency
}

// ComputationError is returned by derived-state rules instead of Inf or NaN.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

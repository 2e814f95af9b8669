package core

import (
	"errors"
	"strings"
)

var (
	ErrMissingAmount   = errors.New("amount is required")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingCategory = errors.New("category is required")
	ErrInvalidType     = errors.New("type must be income or expense")
	ErrInvalidMethod   = errors.New("method must be cash, bank or mobile")
	ErrInvalidPeriod   = errors.New("period must be monthly or weekly")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD or RFC 3339")

	// ErrPersistence matches every PersistenceError via errors.Is.
	ErrPersistence = errors.New("persistence failure")
)

// FieldError ties a validation failure to the offending field.
type FieldError struct {
	Field string
	Err   error
}

// ValidationError rejects an operation before anything is changed.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError rejects a single field.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Err: err}}}
}

func (e *ValidationError) add(field string, err error) {
	e.Fields = append(e.Fields, FieldError{Field: field, Err: err})
}

func (e ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return &e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Err.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the field errors so errors.Is(err, ErrMissingAmount) works.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f.Err
	}
	return errs
}

// PersistenceError reports a failed read or write against the storage port.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

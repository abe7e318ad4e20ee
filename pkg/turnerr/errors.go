// Package turnerr defines the error taxonomy shared by the turn pipeline.
// Every error here is scoped to a single turn: it fails that turn's batch
// and is reported in the TurnResult, but never stops the worker.
package turnerr

import (
	"errors"
	"fmt"
)

// FormatError reports a malformed hidden segment in a generated reply.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "format error: " + e.Msg
}

// DecodingError reports an unknown or missing discriminator, or a directive
// whose shape does not match its variant schema.
type DecodingError struct {
	Tag string // offending discriminator value, if any
	Msg string
	Err error
}

func (e *DecodingError) Error() string {
	s := "decoding error: " + e.Msg
	if e.Tag != "" {
		s += fmt.Sprintf(" (type %q)", e.Tag)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *DecodingError) Unwrap() error { return e.Err }

// ValidationError reports a directive that references invalid state, such
// as an unknown time unit or a creation missing required fields.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Msg
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Msg)
}

// StoreError wraps a load or save failure from the entity store.
type StoreError struct {
	Op       string // "load", "save", "save_batch"
	OwnerID  string
	RecordID string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s/%s: %v", e.Op, e.OwnerID, e.RecordID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// BackendError wraps a failure from the generation backend.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (%s): %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Format returns a FormatError with a formatted message.
func Format(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// Validation returns a ValidationError for field.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Kind names the taxonomy class of err, or "internal" when err is not one
// of the turn-scoped error types.
func Kind(err error) string {
	var (
		fe *FormatError
		de *DecodingError
		ve *ValidationError
		se *StoreError
		be *BackendError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe):
		return "format"
	case errors.As(err, &de):
		return "decoding"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &se):
		return "store"
	case errors.As(err, &be):
		return "backend"
	default:
		return "internal"
	}
}

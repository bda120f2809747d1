package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/taskremind/internal/timeutil"
)

var (
	ErrInvalidTimestamp  = timeutil.ErrInvalidTimestamp
	ErrValidation        = errors.New("model: validation failed")
	ErrInvalidRecurrence = errors.New("model: invalid recurrence")
	ErrNotFound          = errors.New("model: not found")
	ErrStorage           = errors.New("model: storage failure")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TimestampError names the input field that failed to parse. It matches
// ErrInvalidTimestamp through Unwrap.
type TimestampError struct {
	Field string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

// ParseTimestampField parses s as an instant, interpreting offset-less values
// in loc, and attributes failures to field.
func ParseTimestampField(field, s string, loc *time.Location) (time.Time, error) {
	t, err := timeutil.ParseLocalTimestamp(s, loc)
	if err != nil {
		return time.Time{}, &TimestampError{Field: field, Err: err}
	}
	return t, nil
}

type InvalidRecurrenceError struct {
	Reason string
}

func (e *InvalidRecurrenceError) Error() string {
	return fmt.Sprintf("invalid recurrence: %s", e.Reason)
}

func (e *InvalidRecurrenceError) Is(target error) bool { return target == ErrInvalidRecurrence }

type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError wraps a failure reported by a persistence backend.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage error: %s", e.Op)
	}
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Kind classifies err into the names printed by the command line.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTimestamp):
		return "InvalidTimestamp"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrInvalidRecurrence):
		return "InvalidRecurrence"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrStorage):
		return "StorageError"
	default:
		return "Error"
	}
}

// Field returns the offending field of a validation error, or "".
func Field(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	var te *TimestampError
	if errors.As(err, &te) {
		return te.Field
	}
	var re *InvalidRecurrenceError
	if errors.As(err, &re) {
		return "frequency_minutes"
	}
	return ""
}

package model

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestKindAndField(t *testing.T) {
	cause := errors.New("disk full")
	cases := []struct {
		err   error
		kind  string
		field string
	}{
		{fmt.Errorf("add: %w", &ValidationError{Field: FieldEndTime, Reason: "x"}), "ValidationError", FieldEndTime},
		{&InvalidRecurrenceError{Reason: "zero"}, "InvalidRecurrence", FieldFrequencyMinutes},
		{&NotFoundError{ID: 4}, "NotFound", ""},
		{NewStorageError("save", cause), "StorageError", ""},
		{fmt.Errorf("start: %w", ErrInvalidTimestamp), "InvalidTimestamp", ""},
		{errors.New("other"), "Error", ""},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.kind {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.kind)
		}
		if got := Field(tc.err); got != tc.field {
			t.Fatalf("Field(%v) = %q, want %q", tc.err, got, tc.field)
		}
	}
}

func TestStorageErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("locked")
	err := NewStorageError("delete", cause)
	if !errors.Is(err, cause) || !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error wrapping cause, got %v", err)
	}
	if again := NewStorageError("outer", err); again != err {
		t.Fatalf("expected existing storage error to be kept, got %v", again)
	}
	if NewStorageError("noop", nil) != nil {
		t.Fatal("nil cause must stay nil")
	}
}

func TestParseTimestampField(t *testing.T) {
	_, err := ParseTimestampField(FieldStartTime, "tomorrow", nil)
	if Kind(err) != "InvalidTimestamp" || Field(err) != FieldStartTime {
		t.Fatalf("unexpected classification kind=%q field=%q", Kind(err), Field(err))
	}
	loc := time.FixedZone("CET", 3600)
	got, err := ParseTimestampField(FieldEndTime, "2024-01-01 10:00", loc)
	if err != nil {
		t.Fatalf("parse local: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected instant %v", got)
	}
}

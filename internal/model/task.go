package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	FieldTitle            = "title"
	FieldStartTime        = "start_time"
	FieldEndTime          = "end_time"
	FieldFrequencyMinutes = "frequency_minutes"
)

// MaxFrequencyMinutes is one hundred years of minutes. Larger intervals would
// overflow the second offsets of later occurrences.
const MaxFrequencyMinutes = 100 * 366 * 24 * 60

type Task struct {
	ID               int64
	Title            string
	Details          string
	StartTime        time.Time
	EndTime          time.Time
	Recurring        bool
	FrequencyMinutes int
	CreatedAt        time.Time
}

// Normalize returns a copy with instants in UTC, a trimmed title and the
// frequency cleared for non-recurring tasks.
func (t Task) Normalize() Task {
	t.Title = strings.TrimSpace(t.Title)
	t.StartTime = t.StartTime.UTC()
	t.EndTime = t.EndTime.UTC()
	if !t.CreatedAt.IsZero() {
		t.CreatedAt = t.CreatedAt.UTC()
	}
	if !t.Recurring {
		t.FrequencyMinutes = 0
	}
	return t
}

func (t Task) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

func (t Task) Frequency() time.Duration {
	return time.Duration(t.FrequencyMinutes) * time.Minute
}

// Validate checks the field invariants. Identity is assigned by the
// repository and is not checked here.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: FieldTitle, Reason: "title is required"}
	}
	if t.StartTime.IsZero() {
		return &ValidationError{Field: FieldStartTime, Reason: "start_time is required"}
	}
	if t.EndTime.IsZero() {
		return &ValidationError{Field: FieldEndTime, Reason: "end_time is required"}
	}
	if t.EndTime.Before(t.StartTime) {
		return &ValidationError{Field: FieldEndTime, Reason: "end_time must not be earlier than start_time"}
	}
	return t.ValidateRecurrence()
}

func (t Task) ValidateRecurrence() error {
	if !t.Recurring {
		return nil
	}
	if t.FrequencyMinutes <= 0 {
		return &InvalidRecurrenceError{Reason: "frequency_minutes must be a positive number of minutes for a recurring task"}
	}
	if t.FrequencyMinutes > MaxFrequencyMinutes {
		return &InvalidRecurrenceError{Reason: fmt.Sprintf("frequency_minutes must be at most %d", MaxFrequencyMinutes)}
	}
	return nil
}

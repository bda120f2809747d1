package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidReminderKind = errors.New("model: invalid reminder kind")

const (
	PreStartLead = 5 * time.Minute
	PreEndLead   = 2 * time.Minute
)

type ReminderKind string

const (
	ReminderPreStart ReminderKind = "PreStart"
	ReminderPreEnd   ReminderKind = "PreEnd"
)

func (k ReminderKind) IsValid() bool {
	switch k {
	case ReminderPreStart, ReminderPreEnd:
		return true
	default:
		return false
	}
}

// Rank orders kinds that fire at the same instant: PreStart first.
func (k ReminderKind) Rank() int {
	switch k {
	case ReminderPreStart:
		return 0
	case ReminderPreEnd:
		return 1
	default:
		return 2
	}
}

func ParseReminderKind(s string) (ReminderKind, error) {
	k := ReminderKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidReminderKind, s)
	}
	return k, nil
}

// ReminderKey identifies one delivery: at most one event per key is emitted.
type ReminderKey struct {
	TaskID          int64
	OccurrenceStart time.Time
	Kind            ReminderKind
}

type ReminderEvent struct {
	TaskID          int64
	Title           string
	OccurrenceStart time.Time
	OccurrenceEnd   time.Time
	Kind            ReminderKind
	FireAt          time.Time
}

func (e ReminderEvent) Key() ReminderKey {
	return ReminderKey{TaskID: e.TaskID, OccurrenceStart: e.OccurrenceStart.UTC(), Kind: e.Kind}
}

func (e ReminderEvent) Message() string {
	switch e.Kind {
	case ReminderPreStart:
		return fmt.Sprintf("'%s' starts in %d minutes", e.Title, int(PreStartLead/time.Minute))
	case ReminderPreEnd:
		return fmt.Sprintf("'%s' ends in %d minutes", e.Title, int(PreEndLead/time.Minute))
	default:
		return fmt.Sprintf("'%s' reminder", e.Title)
	}
}

// RemindersFor builds the PreStart and PreEnd events of an occurrence.
func RemindersFor(title string, occ Occurrence) [2]ReminderEvent {
	return [2]ReminderEvent{
		{
			TaskID:          occ.TaskID,
			Title:           title,
			OccurrenceStart: occ.Start,
			OccurrenceEnd:   occ.End,
			Kind:            ReminderPreStart,
			FireAt:          occ.Start.Add(-PreStartLead),
		},
		{
			TaskID:          occ.TaskID,
			Title:           title,
			OccurrenceStart: occ.Start,
			OccurrenceEnd:   occ.End,
			Kind:            ReminderPreEnd,
			FireAt:          occ.End.Add(-PreEndLead),
		},
	}
}

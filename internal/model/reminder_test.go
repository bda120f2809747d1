package model

import (
	"errors"
	"testing"
	"time"
)

func TestRemindersForLeadTimes(t *testing.T) {
	occ := Occurrence{
		TaskID: 7,
		Start:  time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC),
	}
	events := RemindersFor("Standup", occ)
	if events[0].Kind != ReminderPreStart || !events[0].FireAt.Equal(occ.Start.Add(-5*time.Minute)) {
		t.Fatalf("unexpected PreStart event: %+v", events[0])
	}
	if events[1].Kind != ReminderPreEnd || !events[1].FireAt.Equal(occ.End.Add(-2*time.Minute)) {
		t.Fatalf("unexpected PreEnd event: %+v", events[1])
	}
	if events[0].Message() != "'Standup' starts in 5 minutes" {
		t.Fatalf("unexpected message: %q", events[0].Message())
	}
	if events[1].Message() != "'Standup' ends in 2 minutes" {
		t.Fatalf("unexpected message: %q", events[1].Message())
	}
}

func TestReminderKeyNormalizesZone(t *testing.T) {
	start := time.Date(2024, 1, 2, 11, 0, 0, 0, time.FixedZone("UTC+2", 7200))
	ev := ReminderEvent{TaskID: 1, OccurrenceStart: start, Kind: ReminderPreEnd}
	key := ev.Key()
	if key.OccurrenceStart.Location() != time.UTC || key.OccurrenceStart.Hour() != 9 {
		t.Fatalf("expected key in UTC, got %v", key.OccurrenceStart)
	}
}

func TestReminderKindParseAndRank(t *testing.T) {
	for _, item := range []ReminderKind{ReminderPreStart, ReminderPreEnd} {
		got, err := ParseReminderKind(string(item))
		if err != nil || got != item {
			t.Fatalf("parse %q: got %q err %v", item, got, err)
		}
	}
	if _, err := ParseReminderKind("Hard"); !errors.Is(err, ErrInvalidReminderKind) {
		t.Fatalf("expected ErrInvalidReminderKind, got %v", err)
	}
	if ReminderPreStart.Rank() >= ReminderPreEnd.Rank() {
		t.Fatal("PreStart must rank before PreEnd")
	}
}

package scheduler

import (
	"testing"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

func TestFiredSetMarkIsIdempotent(t *testing.T) {
	fs := NewFiredSet()
	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	key := model.ReminderKey{TaskID: 1, OccurrenceStart: start, Kind: model.ReminderPreStart}
	if !fs.Mark(key) {
		t.Fatalf("first mark should insert")
	}
	if fs.Mark(key) {
		t.Fatalf("second mark should be a no-op")
	}
	ny := time.FixedZone("EST", -5*3600)
	if !fs.Has(model.ReminderKey{TaskID: 1, OccurrenceStart: start.In(ny), Kind: model.ReminderPreStart}) {
		t.Fatalf("same instant in another zone should match")
	}
	if fs.Has(model.ReminderKey{TaskID: 1, OccurrenceStart: start, Kind: model.ReminderPreEnd}) {
		t.Fatalf("kind is part of the key")
	}
}

func TestFiredSetKeysPruneForget(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	fs := NewFiredSet(
		model.ReminderKey{TaskID: 2, OccurrenceStart: base.Add(48 * time.Hour), Kind: model.ReminderPreEnd},
		model.ReminderKey{TaskID: 2, OccurrenceStart: base.Add(48 * time.Hour), Kind: model.ReminderPreStart},
		model.ReminderKey{TaskID: 1, OccurrenceStart: base, Kind: model.ReminderPreStart},
		model.ReminderKey{TaskID: 3, OccurrenceStart: base.Add(24 * time.Hour), Kind: model.ReminderPreStart},
	)
	keys := fs.Keys()
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %d", len(keys))
	}
	if keys[0].TaskID != 1 || keys[1].TaskID != 3 || keys[2].Kind != model.ReminderPreStart || keys[3].Kind != model.ReminderPreEnd {
		t.Fatalf("unexpected key order: %+v", keys)
	}
	if keys[0].OccurrenceStart.Location() != time.UTC {
		t.Fatalf("keys should be returned in UTC")
	}

	pruned := fs.Prune(func(k model.ReminderKey) bool { return k.OccurrenceStart.Before(base.Add(12 * time.Hour)) })
	if len(pruned) != 1 || pruned[0].TaskID != 1 {
		t.Fatalf("expected task 1 pruned, got %+v", pruned)
	}
	if fs.Has(pruned[0]) {
		t.Fatalf("pruned key still present")
	}
	if n := fs.ForgetTask(2); n != 2 {
		t.Fatalf("expected 2 forgotten, got %d", n)
	}
	if fs.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", fs.Len())
	}
}

package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(t.Context(), db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(t.Context(), db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}
	if err := MigrateDown(t.Context(), db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if err := MigrateUp(t.Context(), db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if err := store.Save(t.Context(), model.Task{
		ID:        1,
		Title:     "Roundtrip task",
		Details:   "migration compatibility",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		CreatedAt: start,
	}); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := store.LoadAll(t.Context())
	if err != nil {
		t.Fatalf("load after roundtrip failed: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Roundtrip task" {
		t.Fatalf("unexpected tasks after roundtrip: %#v", got)
	}
}

func TestMigrationsAreRecorded(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "recorded.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := MigrateUp(t.Context(), db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	applied, err := appliedMigrations(t.Context(), db)
	if err != nil {
		t.Fatalf("applied migrations: %v", err)
	}
	for _, name := range []string{"0001_tasks", "0002_fired_reminders"} {
		if !applied[name] {
			t.Fatalf("expected migration %s to be recorded, got %v", name, applied)
		}
	}
}

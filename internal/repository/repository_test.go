package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/storage"
	"github.com/sandeepkv93/taskremind/internal/timeutil"
)

var created = time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)

type failingStore struct {
	*storage.MemoryStore
	saveErr   error
	deleteErr error
}

func (s *failingStore) Save(ctx context.Context, t model.Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.Save(ctx, t)
}

func (s *failingStore) Delete(ctx context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryStore.Delete(ctx, id)
}

func newRepo(t *testing.T) (*Repository, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	repo, err := Load(t.Context(), store, timeutil.FixedClock{At: created})
	if err != nil {
		t.Fatalf("load repo: %v", err)
	}
	return repo, store
}

func draft(title string, start time.Time) model.Task {
	return model.Task{Title: title, StartTime: start, EndTime: start.Add(30 * time.Minute)}
}

func TestAddAssignsMonotonicIDsAndPersists(t *testing.T) {
	repo, store := newRepo(t)
	ctx := t.Context()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	first, err := repo.Add(ctx, draft("one", start))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	in := draft("two", start)
	in.ID = 42
	second, err := repo.Add(ctx, in)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("unexpected ids: %d, %d", first, second)
	}

	persisted, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("expected 2 persisted tasks, got %d", len(persisted))
	}
	got, err := repo.Get(first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at from clock, got %v", got.CreatedAt)
	}
}

func TestLoadContinuesIDSequence(t *testing.T) {
	store := storage.NewMemoryStore()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range []int64{3, 7} {
		task := draft("x", start)
		task.ID = id
		if err := store.Save(t.Context(), task); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	repo, err := Load(t.Context(), store, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	id, err := repo.Add(t.Context(), draft("next", start))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id != 8 {
		t.Fatalf("expected id 8 after max 7, got %d", id)
	}
}

func TestAddValidation(t *testing.T) {
	repo, _ := newRepo(t)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	bad := draft("backwards", start)
	bad.EndTime = start.Add(-time.Minute)
	_, err := repo.Add(t.Context(), bad)
	var ve *model.ValidationError
	if !errors.As(err, &ve) || ve.Field != model.FieldEndTime {
		t.Fatalf("expected ValidationError{end_time}, got %v", err)
	}

	_, err = repo.Add(t.Context(), draft("", start))
	if !errors.As(err, &ve) || ve.Field != model.FieldTitle {
		t.Fatalf("expected ValidationError{title}, got %v", err)
	}

	rec := draft("recurring", start)
	rec.Recurring = true
	rec.FrequencyMinutes = 0
	_, err = repo.Add(t.Context(), rec)
	if !errors.Is(err, model.ErrInvalidRecurrence) {
		t.Fatalf("expected InvalidRecurrence, got %v", err)
	}
	if repo.Len() != 0 {
		t.Fatalf("rejected tasks must not be stored, have %d", repo.Len())
	}
}

func TestListOrderingIsDeterministic(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := t.Context()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	inputs := []time.Time{base.Add(2 * time.Hour), base, base.Add(2 * time.Hour), base.Add(-time.Hour), base}
	for i, start := range inputs {
		if _, err := repo.Add(ctx, draft(string(rune('a'+i)), start)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	list := repo.List()
	wantIDs := []int64{4, 2, 5, 1, 3}
	for i, id := range wantIDs {
		if list[i].ID != id {
			t.Fatalf("list[%d].ID = %d, want %d", i, list[i].ID, id)
		}
	}
}

func TestGetRemoveNotFound(t *testing.T) {
	repo, store := newRepo(t)
	ctx := t.Context()
	id, err := repo.Add(ctx, draft("x", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	var nf *model.NotFoundError
	if _, err := repo.Get(id); !errors.As(err, &nf) || nf.ID != id {
		t.Fatalf("expected NotFound for %d, got %v", id, err)
	}
	if err := repo.Remove(ctx, id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected NotFound on second remove, got %v", err)
	}
	persisted, _ := store.LoadAll(ctx)
	if len(persisted) != 0 {
		t.Fatalf("expected store to be empty, got %d", len(persisted))
	}
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := t.Context()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	id, err := repo.Add(ctx, draft("x", start))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	task, _ := repo.Get(id)
	task.Title = "renamed"
	task.CreatedAt = time.Time{}
	task.Recurring = true
	task.FrequencyMinutes = 60
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.Get(id)
	if got.Title != "renamed" || got.FrequencyMinutes != 60 || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected updated task: %+v", got)
	}

	task.EndTime = task.StartTime.Add(-time.Hour)
	if err := repo.Update(ctx, task); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := repo.Update(ctx, model.Task{ID: 99, Title: "ghost"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	repo := New(store, timeutil.FixedClock{At: created})
	ctx := t.Context()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	id, err := repo.Add(ctx, draft("kept", start))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	cause := errors.New("disk full")
	store.saveErr = cause
	_, err = repo.Add(ctx, draft("lost", start))
	if !errors.Is(err, model.ErrStorage) || !errors.Is(err, cause) {
		t.Fatalf("expected StorageError wrapping cause, got %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("failed add must not be visible, have %d tasks", repo.Len())
	}

	store.saveErr = nil
	next, err := repo.Add(ctx, draft("after", start))
	if err != nil {
		t.Fatalf("add after failure: %v", err)
	}
	if next != id+1 {
		t.Fatalf("id must not be consumed by failed add: got %d", next)
	}

	store.deleteErr = cause
	if err := repo.Remove(ctx, id); !errors.Is(err, model.ErrStorage) {
		t.Fatalf("expected StorageError on delete, got %v", err)
	}
	if _, err := repo.Get(id); err != nil {
		t.Fatalf("failed delete must keep task: %v", err)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store := dupStore{tasks: []model.Task{{ID: 1, Title: "a", StartTime: start, EndTime: start}, {ID: 1, Title: "b", StartTime: start, EndTime: start}}}
	if _, err := Load(t.Context(), store, nil); !errors.Is(err, model.ErrStorage) {
		t.Fatalf("expected StorageError for duplicate ids, got %v", err)
	}
}

type dupStore struct {
	tasks []model.Task
}

func (s dupStore) LoadAll(context.Context) ([]model.Task, error) { return s.tasks, nil }
func (dupStore) Save(context.Context, model.Task) error          { return nil }
func (dupStore) Delete(context.Context, int64) error             { return nil }

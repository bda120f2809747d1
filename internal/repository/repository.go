// Package repository holds the canonical in-memory collection of tasks and
// writes every mutation through to a storage.TaskStore before acknowledging it.
//
// A Repository is not safe for concurrent use; app.Service serialises access.
package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/storage"
	"github.com/sandeepkv93/taskremind/internal/timeutil"
)

type Repository struct {
	store  storage.TaskStore
	clock  timeutil.Clock
	tasks  map[int64]model.Task
	nextID int64
}

func New(store storage.TaskStore, clock timeutil.Clock) *Repository {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &Repository{
		store:  store,
		clock:  clock,
		tasks:  make(map[int64]model.Task),
		nextID: 1,
	}
}

// Load builds a repository from everything the store holds. Tasks that
// violate recurrence invariants are kept so reminder evaluation can report
// them individually.
func Load(ctx context.Context, store storage.TaskStore, clock timeutil.Clock) (*Repository, error) {
	r := New(store, clock)
	tasks, err := store.LoadAll(ctx)
	if err != nil {
		return nil, model.NewStorageError("load tasks", err)
	}
	for _, t := range tasks {
		if t.ID <= 0 {
			return nil, model.NewStorageError("load tasks", fmt.Errorf("task with invalid id %d", t.ID))
		}
		if _, dup := r.tasks[t.ID]; dup {
			return nil, model.NewStorageError("load tasks", fmt.Errorf("duplicate task id %d", t.ID))
		}
		r.tasks[t.ID] = t.Normalize()
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}
	return r, nil
}

// Add validates draft, assigns the next id and persists it. The draft's ID
// is ignored.
func (r *Repository) Add(ctx context.Context, draft model.Task) (int64, error) {
	task := draft.Normalize()
	if err := task.Validate(); err != nil {
		return 0, err
	}
	task.ID = r.nextID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = r.clock.Now().UTC()
	}
	if err := r.store.Save(ctx, task); err != nil {
		return 0, model.NewStorageError("save task", err)
	}
	r.tasks[task.ID] = task
	r.nextID++
	return task.ID, nil
}

// Update replaces an existing task. CreatedAt is preserved.
func (r *Repository) Update(ctx context.Context, task model.Task) error {
	prev, ok := r.tasks[task.ID]
	if !ok {
		return &model.NotFoundError{ID: task.ID}
	}
	task = task.Normalize()
	if err := task.Validate(); err != nil {
		return err
	}
	task.CreatedAt = prev.CreatedAt
	if err := r.store.Save(ctx, task); err != nil {
		return model.NewStorageError("save task", err)
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *Repository) Remove(ctx context.Context, id int64) error {
	if _, ok := r.tasks[id]; !ok {
		return &model.NotFoundError{ID: id}
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return model.NewStorageError("delete task", err)
	}
	delete(r.tasks, id)
	return nil
}

func (r *Repository) Get(id int64) (model.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, &model.NotFoundError{ID: id}
	}
	return t, nil
}

// List returns the tasks ordered by start time, ties broken by id.
func (r *Repository) List() []model.Task {
	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Repository) Len() int {
	return len(r.tasks)
}

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// TaskStore is the durable home of tasks. Every call must be durable before
// it returns nil.
type TaskStore interface {
	LoadAll(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, task model.Task) error
	Delete(ctx context.Context, id int64) error
}

// FiredStore persists delivered reminder keys across runs. Deleting a task
// drops its keys.
type FiredStore interface {
	LoadFired(ctx context.Context) ([]model.ReminderKey, error)
	MarkFired(ctx context.Context, firedAt time.Time, keys ...model.ReminderKey) error
	// ForgetFired removes exactly the given keys and reports how many existed.
	ForgetFired(ctx context.Context, keys ...model.ReminderKey) (int64, error)
}

type Store interface {
	TaskStore
	FiredStore
	Close() error
}

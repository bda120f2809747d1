package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

// MemoryStore keeps everything in process memory. It backs ephemeral
// sessions, where nothing outlives the process.
type MemoryStore struct {
	mu    sync.Mutex
	tasks map[int64]model.Task
	fired map[model.ReminderKey]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[int64]model.Task),
		fired: make(map[model.ReminderKey]time.Time),
	}
}

func (s *MemoryStore) LoadAll(context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task = task.Normalize()
	if prev, ok := s.tasks[task.ID]; ok {
		task.CreatedAt = prev.CreatedAt
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return model.NewStorageError("delete task", ErrNotFound)
	}
	delete(s.tasks, id)
	for key := range s.fired {
		if key.TaskID == id {
			delete(s.fired, key)
		}
	}
	return nil
}

func (s *MemoryStore) LoadFired(context.Context) ([]model.ReminderKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ReminderKey, 0, len(s.fired))
	for key := range s.fired {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurrenceStart.Equal(out[j].OccurrenceStart) {
			return out[i].OccurrenceStart.Before(out[j].OccurrenceStart)
		}
		if out[i].TaskID != out[j].TaskID {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].Kind.Rank() < out[j].Kind.Rank()
	})
	return out, nil
}

func (s *MemoryStore) MarkFired(_ context.Context, firedAt time.Time, keys ...model.ReminderKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if _, ok := s.tasks[key.TaskID]; !ok {
			continue
		}
		key.OccurrenceStart = key.OccurrenceStart.UTC()
		if _, ok := s.fired[key]; !ok {
			s.fired[key] = firedAt.UTC()
		}
	}
	return nil
}

func (s *MemoryStore) ForgetFired(_ context.Context, keys ...model.ReminderKey) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, key := range keys {
		for stored := range s.fired {
			if stored.TaskID == key.TaskID && stored.Kind == key.Kind && stored.OccurrenceStart.Equal(key.OccurrenceStart) {
				delete(s.fired, stored)
				n++
				break
			}
		}
	}
	return n, nil
}

func (s *MemoryStore) Close() error { return nil }

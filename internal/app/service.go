// Package app is the process-wide entry point to the task core. Service owns
// the single lock that serialises every read and mutation of the repository
// and the fired set, so a polling loop and user commands can share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/taskremind/internal/calendar"
	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/notify"
	"github.com/sandeepkv93/taskremind/internal/repository"
	"github.com/sandeepkv93/taskremind/internal/scheduler"
	"github.com/sandeepkv93/taskremind/internal/storage"
	"github.com/sandeepkv93/taskremind/internal/timeutil"
)

type Options struct {
	Lookback        time.Duration
	FiredRetention  time.Duration
	CalendarTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Lookback:        scheduler.DefaultLookback,
		FiredRetention:  7 * 24 * time.Hour,
		CalendarTimeout: 10 * time.Second,
	}
}

type Deps struct {
	Store      storage.Store
	Calendar   calendar.Sync
	Dispatcher notify.Dispatcher
	Clock      timeutil.Clock
	Logger     *slog.Logger
}

type Service struct {
	mu         sync.Mutex
	repo       *repository.Repository
	fired      *scheduler.FiredSet
	firedStore storage.FiredStore
	calendar   calendar.Sync
	dispatcher notify.Dispatcher
	clock      timeutil.Clock
	logger     *slog.Logger
	opts       Options
}

// New loads tasks and already delivered reminders from the store.
func New(ctx context.Context, deps Deps, opts Options) (*Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("app: store is required")
	}
	if deps.Clock == nil {
		deps.Clock = timeutil.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Calendar == nil {
		deps.Calendar = calendar.Noop{}
	}
	defaults := DefaultOptions()
	if opts.Lookback <= 0 {
		opts.Lookback = defaults.Lookback
	}
	if opts.FiredRetention <= 0 {
		opts.FiredRetention = defaults.FiredRetention
	}
	if opts.CalendarTimeout <= 0 {
		opts.CalendarTimeout = defaults.CalendarTimeout
	}

	repo, err := repository.Load(ctx, deps.Store, deps.Clock)
	if err != nil {
		return nil, err
	}
	keys, err := deps.Store.LoadFired(ctx)
	if err != nil {
		return nil, model.NewStorageError("load fired reminders", err)
	}
	deps.Logger.Debug("service loaded", "tasks", repo.Len(), "fired", len(keys))

	return &Service{
		repo:       repo,
		fired:      scheduler.NewFiredSet(keys...),
		firedStore: deps.Store,
		calendar:   deps.Calendar,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
		opts:       opts,
	}, nil
}

func (s *Service) Now() time.Time {
	return s.clock.Now()
}

type AddOptions struct {
	// AllowPast accepts a start time before the current clock.
	AllowPast bool
}

// Add validates and stores a new task, then mirrors it to the calendar.
func (s *Service) Add(ctx context.Context, draft model.Task, opts AddOptions) (model.Task, error) {
	task := draft.Normalize()
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if !opts.AllowPast && task.StartTime.Before(s.clock.Now()) {
		return model.Task{}, &model.ValidationError{Field: model.FieldStartTime, Reason: "must not be in the past"}
	}

	s.mu.Lock()
	id, err := s.repo.Add(ctx, task)
	if err == nil {
		task, err = s.repo.Get(id)
	}
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Info("task added", "task_id", task.ID, "title", task.Title)
	s.pushCalendar(ctx, task)
	return task, nil
}

// Update replaces the task with the same id. Reminders already delivered for
// unchanged occurrence starts stay suppressed.
func (s *Service) Update(ctx context.Context, task model.Task) (model.Task, error) {
	s.mu.Lock()
	err := s.repo.Update(ctx, task)
	if err == nil {
		task, err = s.repo.Get(task.ID)
	}
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Info("task updated", "task_id", task.ID)
	s.pushCalendar(ctx, task)
	return task, nil
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	err := s.repo.Remove(ctx, id)
	if err == nil {
		s.fired.ForgetTask(id)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info("task removed", "task_id", id)
	if remover, ok := s.calendar.(calendar.Remover); ok {
		cctx, cancel := context.WithTimeout(ctx, s.opts.CalendarTimeout)
		defer cancel()
		if err := remover.Remove(cctx, id); err != nil {
			s.logger.Warn("calendar remove failed", "task_id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) Get(id int64) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Get(id)
}

func (s *Service) List() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.List()
}

type OccurrenceResult struct {
	Occurrences []model.Occurrence
	Titles      map[int64]string
	Failures    []scheduler.TaskFailure
	// Truncated lists tasks whose expansion stopped at
	// model.MaxWindowOccurrences before reaching the end of the window.
	Truncated []int64
}

// ListOccurrences expands every task inside [from, to], ordered by start
// then task id.
func (s *Service) ListOccurrences(from, to time.Time) OccurrenceResult {
	s.mu.Lock()
	tasks := s.repo.List()
	s.mu.Unlock()

	res := OccurrenceResult{Titles: make(map[int64]string, len(tasks))}
	for _, task := range tasks {
		res.Titles[task.ID] = task.Title
		seq, err := model.OccurrencesInWindow(task, from, to)
		if err != nil {
			res.Failures = append(res.Failures, scheduler.TaskFailure{TaskID: task.ID, Err: err})
			continue
		}
		var n int
		var last model.Occurrence
		for occ := range seq {
			res.Occurrences = append(res.Occurrences, occ)
			last = occ
			n++
		}
		if n >= model.MaxWindowOccurrences && !task.OccurrenceAt(last.Index+1).Start.After(to) {
			res.Truncated = append(res.Truncated, task.ID)
			s.logger.Warn("occurrence listing truncated", "task_id", task.ID, "limit", model.MaxWindowOccurrences)
		}
	}
	sort.SliceStable(res.Occurrences, func(i, j int) bool {
		a, b := res.Occurrences[i], res.Occurrences[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		return a.Index < b.Index
	})
	return res
}

// Preview returns the task together with its next count occurrences.
func (s *Service) Preview(id int64, count int) (model.Task, []model.Occurrence, error) {
	task, err := s.Get(id)
	if err != nil {
		return model.Task{}, nil, err
	}
	occs, err := model.Preview(task, s.clock.Now(), count)
	if err != nil {
		return task, nil, err
	}
	return task, occs, nil
}

// CheckReminders evaluates due reminders at the current clock, records them
// as fired and hands each one to the dispatcher.
func (s *Service) CheckReminders(ctx context.Context) scheduler.Result {
	s.mu.Lock()
	now := s.clock.Now()
	res := scheduler.DueReminders(s.repo.List(), now, s.fired, scheduler.Options{Lookback: s.opts.Lookback})
	if len(res.Events) > 0 {
		keys := make([]model.ReminderKey, 0, len(res.Events))
		for _, ev := range res.Events {
			keys = append(keys, ev.Key())
		}
		if err := s.firedStore.MarkFired(ctx, now, keys...); err != nil {
			s.logger.Error("persist fired reminders failed", "count", len(keys), "error", err)
		}
	}
	s.prune(ctx, now)
	s.mu.Unlock()

	for _, f := range res.Failures {
		s.logger.Warn("reminder evaluation skipped task", "task_id", f.TaskID, "kind", model.Kind(f.Err), "error", f.Err)
	}
	if s.dispatcher != nil {
		for _, ev := range res.Events {
			if err := s.dispatcher.Deliver(ctx, ev); err != nil {
				s.logger.Warn("reminder delivery failed", "task_id", ev.TaskID, "kind", ev.Kind, "error", err)
			}
		}
	}
	return res
}

// Upcoming lists reminders firing within horizon without marking them.
func (s *Service) Upcoming(horizon time.Duration) scheduler.Result {
	s.mu.Lock()
	now := s.clock.Now()
	tasks := s.repo.List()
	s.mu.Unlock()
	return scheduler.Upcoming(tasks, now, horizon)
}

func (s *Service) FiredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired.Len()
}

// prune drops fired keys whose occurrence can never be evaluated again: the
// occurrence ended before the lookback window, plus the retention margin, or
// the task is gone. Occurrence end is measured with the task's current
// duration, since that is what future evaluations will use. Caller holds mu.
func (s *Service) prune(ctx context.Context, now time.Time) {
	cutoff := now.Add(-s.opts.Lookback - s.opts.FiredRetention)
	removed := s.fired.Prune(func(key model.ReminderKey) bool {
		task, err := s.repo.Get(key.TaskID)
		if err != nil {
			return true
		}
		end := key.OccurrenceStart.Add(task.EndTime.Sub(task.StartTime))
		return end.Before(cutoff)
	})
	if len(removed) == 0 {
		return
	}
	if _, err := s.firedStore.ForgetFired(ctx, removed...); err != nil {
		s.logger.Warn("prune fired reminders failed", "count", len(removed), "error", err)
	}
}

func (s *Service) pushCalendar(ctx context.Context, task model.Task) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.CalendarTimeout)
	defer cancel()
	if err := s.calendar.Push(cctx, task); err != nil {
		s.logger.Warn("calendar sync failed", "task_id", task.ID, "error", err)
	}
}

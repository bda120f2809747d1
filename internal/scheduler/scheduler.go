// Package scheduler decides which reminders are due at a given instant.
// Evaluation is synchronous; periodic polling belongs to the caller.
package scheduler

import (
	"container/heap"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

// DefaultLookback is how far before now an occurrence may end and still have
// its reminders delivered.
const DefaultLookback = model.PreStartLead

type Options struct {
	Lookback time.Duration
}

func (o Options) lookback() time.Duration {
	if o.Lookback <= 0 {
		return DefaultLookback
	}
	return o.Lookback
}

type TaskFailure struct {
	TaskID int64
	Err    error
}

type Result struct {
	Events   []model.ReminderEvent
	Failures []TaskFailure
}

// DueReminders returns every reminder with FireAt <= now that is not yet in
// fired, and marks the returned ones. Tasks with invalid recurrence are
// reported in Failures and skipped.
func DueReminders(tasks []model.Task, now time.Time, fired *FiredSet, opts Options) Result {
	if fired == nil {
		fired = NewFiredSet()
	}
	now = now.UTC()
	windowStart := now.Add(-opts.lookback())
	windowEnd := now.Add(model.PreStartLead)

	var res Result
	pq := make(priorityQueue, 0)
	heap.Init(&pq)
	for _, task := range tasks {
		seq, err := model.OccurrencesInWindow(task, windowStart, windowEnd)
		if err != nil {
			res.Failures = append(res.Failures, TaskFailure{TaskID: task.ID, Err: err})
			continue
		}
		for occ := range seq {
			for _, ev := range model.RemindersFor(task.Title, occ) {
				if ev.FireAt.After(now) {
					continue
				}
				if !fired.Mark(ev.Key()) {
					continue
				}
				heap.Push(&pq, queueItem{event: ev})
			}
		}
	}
	res.Events = pq.drain()
	return res
}

// Upcoming lists reminders firing in (now, now+horizon] without marking them.
func Upcoming(tasks []model.Task, now time.Time, horizon time.Duration) Result {
	now = now.UTC()
	var res Result
	if horizon <= 0 {
		return res
	}
	until := now.Add(horizon)
	pq := make(priorityQueue, 0)
	heap.Init(&pq)
	for _, task := range tasks {
		seq, err := model.OccurrencesInWindow(task, now, until.Add(model.PreStartLead))
		if err != nil {
			res.Failures = append(res.Failures, TaskFailure{TaskID: task.ID, Err: err})
			continue
		}
		for occ := range seq {
			for _, ev := range model.RemindersFor(task.Title, occ) {
				if !ev.FireAt.After(now) || ev.FireAt.After(until) {
					continue
				}
				heap.Push(&pq, queueItem{event: ev})
			}
		}
	}
	res.Events = pq.drain()
	return res
}

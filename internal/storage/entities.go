package storage

import (
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

type taskRecord struct {
	ID               int64
	Title            string
	Details          string
	StartTime        time.Time
	EndTime          time.Time
	Recurring        bool
	FrequencyMinutes int
	CreatedAt        time.Time
}

type firedRecord struct {
	TaskID          int64
	OccurrenceStart time.Time
	Kind            string
	FiredAt         time.Time
}

func recordFromTask(t model.Task) taskRecord {
	t = t.Normalize()
	return taskRecord{
		ID:               t.ID,
		Title:            t.Title,
		Details:          t.Details,
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		Recurring:        t.Recurring,
		FrequencyMinutes: t.FrequencyMinutes,
		CreatedAt:        t.CreatedAt,
	}
}

func (r taskRecord) toTask() model.Task {
	return model.Task{
		ID:               r.ID,
		Title:            r.Title,
		Details:          r.Details,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Recurring:        r.Recurring,
		FrequencyMinutes: r.FrequencyMinutes,
		CreatedAt:        r.CreatedAt,
	}
}

func (r firedRecord) toKey() (model.ReminderKey, error) {
	kind, err := model.ParseReminderKind(r.Kind)
	if err != nil {
		return model.ReminderKey{}, err
	}
	return model.ReminderKey{TaskID: r.TaskID, OccurrenceStart: r.OccurrenceStart, Kind: kind}, nil
}

package scheduler

import (
	"sort"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

type firedKey struct {
	taskID int64
	sec    int64
	nsec   int
	kind   model.ReminderKind
}

func keyOf(k model.ReminderKey) firedKey {
	start := k.OccurrenceStart.UTC()
	return firedKey{taskID: k.TaskID, sec: start.Unix(), nsec: start.Nanosecond(), kind: k.Kind}
}

func (k firedKey) reminderKey() model.ReminderKey {
	return model.ReminderKey{
		TaskID:          k.taskID,
		OccurrenceStart: time.Unix(k.sec, int64(k.nsec)).UTC(),
		Kind:            k.kind,
	}
}

// FiredSet remembers which reminders were already delivered. Keys compare by
// instant, so the location of OccurrenceStart does not matter.
type FiredSet struct {
	keys map[firedKey]struct{}
}

func NewFiredSet(keys ...model.ReminderKey) *FiredSet {
	fs := &FiredSet{keys: make(map[firedKey]struct{}, len(keys))}
	for _, k := range keys {
		fs.Mark(k)
	}
	return fs
}

func (fs *FiredSet) Has(k model.ReminderKey) bool {
	_, ok := fs.keys[keyOf(k)]
	return ok
}

// Mark records k and reports whether it was not present before.
func (fs *FiredSet) Mark(k model.ReminderKey) bool {
	fk := keyOf(k)
	if _, ok := fs.keys[fk]; ok {
		return false
	}
	fs.keys[fk] = struct{}{}
	return true
}

func (fs *FiredSet) Len() int {
	return len(fs.keys)
}

// Keys returns the keys ordered by occurrence start, task id and kind.
func (fs *FiredSet) Keys() []model.ReminderKey {
	out := make([]model.ReminderKey, 0, len(fs.keys))
	for k := range fs.keys {
		out = append(out, k.reminderKey())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.OccurrenceStart.Equal(b.OccurrenceStart) {
			return a.OccurrenceStart.Before(b.OccurrenceStart)
		}
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		return a.Kind.Rank() < b.Kind.Rank()
	})
	return out
}

// Prune drops every key for which expired returns true and returns the
// dropped keys.
func (fs *FiredSet) Prune(expired func(model.ReminderKey) bool) []model.ReminderKey {
	var removed []model.ReminderKey
	for k := range fs.keys {
		if rk := k.reminderKey(); expired(rk) {
			delete(fs.keys, k)
			removed = append(removed, rk)
		}
	}
	return removed
}

func (fs *FiredSet) ForgetTask(id int64) int {
	removed := 0
	for k := range fs.keys {
		if k.taskID == id {
			delete(fs.keys, k)
			removed++
		}
	}
	return removed
}

package model

import (
	"iter"
	"time"

	"github.com/sandeepkv93/taskremind/internal/timeutil"
)

// MaxWindowOccurrences caps a single window enumeration. With a one minute
// minimum frequency this covers roughly ten weeks of back-to-back occurrences.
const MaxWindowOccurrences = 100_000

// Occurrence is one concrete instance of a task. Index is the k of
// start_time + k*frequency and is always 0 for non-recurring tasks.
type Occurrence struct {
	TaskID int64
	Index  int64
	Start  time.Time
	End    time.Time
}

// OccurrenceAt returns the k-th occurrence of the task. For non-recurring
// tasks every k maps to the base occurrence.
func (t Task) OccurrenceAt(k int64) Occurrence {
	if !t.Recurring || k <= 0 {
		return Occurrence{TaskID: t.ID, Start: t.StartTime.UTC(), End: t.EndTime.UTC()}
	}
	step := k * int64(t.FrequencyMinutes) * 60
	return Occurrence{
		TaskID: t.ID,
		Index:  k,
		Start:  shiftSeconds(t.StartTime, step),
		End:    shiftSeconds(t.EndTime, step),
	}
}

// KMin returns the smallest k >= 0 whose occurrence interval reaches
// windowStart, i.e. max(0, ceil((windowStart - end_time) / frequency)).
// Measuring against end_time keeps occurrences that started before the
// window but are still running inside it.
func KMin(t Task, windowStart time.Time) (int64, error) {
	if err := t.ValidateRecurrence(); err != nil {
		return 0, err
	}
	if !t.Recurring {
		return 0, nil
	}
	return kMin(t, windowStart), nil
}

func kMin(t Task, windowStart time.Time) int64 {
	ws := windowStart.UTC()
	end := t.EndTime.UTC()
	if !ws.After(end) {
		return 0
	}
	secs := ws.Unix() - end.Unix()
	nanos := ws.Nanosecond() - end.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += int(time.Second)
	}
	freq := int64(t.FrequencyMinutes) * 60
	k := secs / freq
	if secs%freq != 0 || nanos > 0 {
		k++
	}
	return k
}

// OccurrencesInWindow lazily yields every occurrence whose closed interval
// [start, end] intersects [windowStart, windowEnd], in increasing k. Overlapping
// occurrences are yielded as they are.
func OccurrencesInWindow(t Task, windowStart, windowEnd time.Time) (iter.Seq[Occurrence], error) {
	if err := t.ValidateRecurrence(); err != nil {
		return nil, err
	}
	ws, we := windowStart.UTC(), windowEnd.UTC()
	if !t.Recurring {
		return func(yield func(Occurrence) bool) {
			if we.Before(ws) {
				return
			}
			base := t.OccurrenceAt(0)
			if timeutil.Overlaps(base.Start, base.End, ws, we) {
				yield(base)
			}
		}, nil
	}
	first := kMin(t, ws)
	return func(yield func(Occurrence) bool) {
		if we.Before(ws) {
			return
		}
		for i, k := 0, first; i < MaxWindowOccurrences; i, k = i+1, k+1 {
			occ := t.OccurrenceAt(k)
			if occ.Start.After(we) {
				return
			}
			if !yield(occ) {
				return
			}
		}
	}, nil
}

// Occurrences yields the series starting at the first occurrence that ends
// at or after from. For recurring tasks the sequence never ends on its own;
// callers stop it by returning false from yield (or breaking a range loop).
func Occurrences(t Task, from time.Time) (iter.Seq[Occurrence], error) {
	if err := t.ValidateRecurrence(); err != nil {
		return nil, err
	}
	f := from.UTC()
	if !t.Recurring {
		return func(yield func(Occurrence) bool) {
			base := t.OccurrenceAt(0)
			if !base.End.Before(f) {
				yield(base)
			}
		}, nil
	}
	first := kMin(t, f)
	return func(yield func(Occurrence) bool) {
		for k := first; ; k++ {
			if !yield(t.OccurrenceAt(k)) {
				return
			}
		}
	}, nil
}

// NextOccurrence returns the first occurrence starting at or after from.
func NextOccurrence(t Task, from time.Time) (Occurrence, bool, error) {
	list, err := Preview(t, from, 1)
	if err != nil || len(list) == 0 {
		return Occurrence{}, false, err
	}
	return list[0], true, nil
}

// Preview returns up to count occurrences starting at or after from.
func Preview(t Task, from time.Time, count int) ([]Occurrence, error) {
	if count <= 0 {
		return []Occurrence{}, t.ValidateRecurrence()
	}
	seq, err := Occurrences(t, from)
	if err != nil {
		return nil, err
	}
	f := from.UTC()
	out := make([]Occurrence, 0, count)
	for occ := range seq {
		if occ.Start.Before(f) {
			continue
		}
		out = append(out, occ)
		if len(out) == count {
			break
		}
	}
	return out, nil
}

func shiftSeconds(t time.Time, secs int64) time.Time {
	u := t.UTC()
	return time.Unix(u.Unix()+secs, int64(u.Nanosecond())).UTC()
}

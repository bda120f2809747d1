package model

import (
	"errors"
	"testing"
	"time"
)

func collect(t *testing.T, task Task, from, to time.Time) []Occurrence {
	t.Helper()
	seq, err := OccurrencesInWindow(task, from, to)
	if err != nil {
		t.Fatalf("occurrences in window: %v", err)
	}
	out := make([]Occurrence, 0)
	for occ := range seq {
		out = append(out, occ)
	}
	return out
}

func TestNonRecurringYieldsOnlyWhenWindowIntersects(t *testing.T) {
	task := validTask()
	task.ID = 1
	start, end := task.StartTime, task.EndTime
	cases := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"covers", start.Add(-time.Hour), end.Add(time.Hour), 1},
		{"inside", start.Add(time.Minute), start.Add(2 * time.Minute), 1},
		{"touches start", start.Add(-time.Hour), start, 1},
		{"touches end", end, end.Add(time.Hour), 1},
		{"before", start.Add(-2 * time.Hour), start.Add(-time.Nanosecond), 0},
		{"after", end.Add(time.Nanosecond), end.Add(time.Hour), 0},
		{"inverted", end.Add(time.Hour), start.Add(-time.Hour), 0},
	}
	for _, tc := range cases {
		got := collect(t, task, tc.from, tc.to)
		if len(got) != tc.want {
			t.Fatalf("%s: got %d occurrences, want %d", tc.name, len(got), tc.want)
		}
		if tc.want == 1 && (!got[0].Start.Equal(start) || !got[0].End.Equal(end) || got[0].TaskID != 1) {
			t.Fatalf("%s: unexpected occurrence %+v", tc.name, got[0])
		}
	}
}

func TestNonRecurringIgnoresFrequency(t *testing.T) {
	task := validTask()
	task.FrequencyMinutes = 1
	got := collect(t, task, task.StartTime, task.StartTime.Add(48*time.Hour))
	if len(got) != 1 {
		t.Fatalf("expected single occurrence, got %d", len(got))
	}
}

func TestRecurringOccurrenceStartsAreExact(t *testing.T) {
	task := validTask()
	task.Recurring = true
	task.FrequencyMinutes = 90
	from := task.StartTime.Add(30 * 24 * time.Hour)
	to := from.Add(12 * time.Hour)
	got := collect(t, task, from, to)
	if len(got) == 0 {
		t.Fatal("expected occurrences in window")
	}
	for _, occ := range got {
		wantStart := task.StartTime.Add(time.Duration(occ.Index) * 90 * time.Minute)
		if !occ.Start.Equal(wantStart) {
			t.Fatalf("k=%d start = %s, want %s", occ.Index, occ.Start, wantStart)
		}
		if occ.End.Sub(occ.Start) != task.Duration() {
			t.Fatalf("k=%d duration changed: %s", occ.Index, occ.End.Sub(occ.Start))
		}
		if occ.End.Before(from) || occ.Start.After(to) {
			t.Fatalf("k=%d does not intersect window", occ.Index)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Index != got[i-1].Index+1 {
			t.Fatalf("indices not consecutive: %d then %d", got[i-1].Index, got[i].Index)
		}
	}
}

func TestKMinMatchesLinearScan(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	durations := []time.Duration{0, 15 * time.Minute, 3 * time.Hour}
	freqs := []int{1, 7, 60, 1440}
	offsets := []time.Duration{
		-time.Hour, 0, time.Nanosecond, 59 * time.Second, time.Minute,
		17*time.Hour + 3*time.Second, 72 * time.Hour, 1000*time.Hour + 500*time.Millisecond,
	}
	for _, d := range durations {
		for _, f := range freqs {
			task := Task{Title: "x", StartTime: base, EndTime: base.Add(d), Recurring: true, FrequencyMinutes: f}
			for _, off := range offsets {
				ws := base.Add(off)
				got, err := KMin(task, ws)
				if err != nil {
					t.Fatalf("kmin: %v", err)
				}
				var scan int64
				for task.OccurrenceAt(scan).End.Before(ws) {
					scan++
				}
				if got != scan {
					t.Fatalf("d=%s f=%d off=%s: kmin=%d, linear scan=%d", d, f, off, got, scan)
				}
			}
		}
	}
}

func TestKMinZeroDurationMatchesStartFormula(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	task := Task{Title: "ping", StartTime: base, EndTime: base, Recurring: true, FrequencyMinutes: 10}
	k, err := KMin(task, base.Add(25*time.Minute))
	if err != nil {
		t.Fatalf("kmin: %v", err)
	}
	if k != 3 {
		t.Fatalf("expected ceil(25/10)=3, got %d", k)
	}
}

func TestFarFutureWindowDoesNotScanFromZero(t *testing.T) {
	task := validTask()
	task.Recurring = true
	task.FrequencyMinutes = 1
	from := time.Date(2224, 1, 1, 0, 0, 0, 0, time.UTC)
	got := collect(t, task, from, from.Add(3*time.Minute))
	if len(got) == 0 {
		t.Fatal("expected occurrences two centuries out")
	}
	if got[0].Start.After(from) && got[0].Start.Sub(from) > time.Minute {
		t.Fatalf("first occurrence too late: %s", got[0].Start)
	}
	if got[len(got)-1].Start.After(from.Add(3 * time.Minute)) {
		t.Fatalf("occurrence after window end: %s", got[len(got)-1].Start)
	}
}

func TestOverlappingOccurrencesAreAllowed(t *testing.T) {
	task := validTask()
	task.EndTime = task.StartTime.Add(time.Hour)
	task.Recurring = true
	task.FrequencyMinutes = 20
	if err := task.Validate(); err != nil {
		t.Fatalf("overlapping recurrence must validate: %v", err)
	}
	instant := task.StartTime.Add(50 * time.Minute)
	got := collect(t, task, instant, instant)
	if len(got) != 3 {
		t.Fatalf("expected 3 overlapping occurrences at %s, got %d", instant, len(got))
	}
}

func TestRecurrenceRejectsNonPositiveFrequency(t *testing.T) {
	task := validTask()
	task.Recurring = true
	_, err := OccurrencesInWindow(task, task.StartTime, task.EndTime)
	var re *InvalidRecurrenceError
	if !errors.As(err, &re) {
		t.Fatalf("expected InvalidRecurrenceError, got %v", err)
	}
	if _, err := Occurrences(task, task.StartTime); !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("expected ErrInvalidRecurrence from Occurrences, got %v", err)
	}
}

func TestOccurrencesIsRestartable(t *testing.T) {
	task := validTask()
	task.Recurring = true
	task.FrequencyMinutes = 1440
	seq, err := Occurrences(task, task.StartTime)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	take := func() []time.Time {
		out := make([]time.Time, 0, 3)
		for occ := range seq {
			out = append(out, occ.Start)
			if len(out) == 3 {
				break
			}
		}
		return out
	}
	first, second := take(), take()
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("restart mismatch at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestPreviewAndNextOccurrence(t *testing.T) {
	task := validTask()
	task.Recurring = true
	task.FrequencyMinutes = 3 * 1440
	list, err := Preview(task, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 3)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	want := []string{"2024-01-07 09:00", "2024-01-10 09:00", "2024-01-13 09:00"}
	if len(list) != len(want) {
		t.Fatalf("expected %d preview items, got %d", len(want), len(list))
	}
	for i := range list {
		if got := list[i].Start.Format("2006-01-02 15:04"); got != want[i] {
			t.Fatalf("preview[%d] got %s want %s", i, got, want[i])
		}
	}

	once := validTask()
	next, ok, err := NextOccurrence(once, once.StartTime.Add(time.Minute))
	if err != nil || ok {
		t.Fatalf("expected no next occurrence after start, got %+v ok=%v err=%v", next, ok, err)
	}
	next, ok, err = NextOccurrence(once, once.StartTime.Add(-time.Minute))
	if err != nil || !ok || !next.Start.Equal(once.StartTime) {
		t.Fatalf("expected base occurrence, got %+v ok=%v err=%v", next, ok, err)
	}
}

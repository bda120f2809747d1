package views

import (
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

func sampleTask() model.Task {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return model.Task{
		ID:               3,
		Title:            "Standup",
		Details:          "Talk about **blockers**",
		StartTime:        start,
		EndTime:          start.Add(15 * time.Minute),
		Recurring:        true,
		FrequencyMinutes: 1440,
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{
		1:     "1 minute",
		45:    "45 minutes",
		60:    "1 hour",
		180:   "3 hours",
		1440:  "1 day",
		2880:  "2 days",
		10080: "1 week",
	}
	for in, want := range cases {
		if got := FormatMinutes(in); got != want {
			t.Fatalf("FormatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderTaskTableContainsRows(t *testing.T) {
	out := RenderTaskTable([]model.Task{sampleTask()}, time.UTC)
	for _, want := range []string{"Standup", "2024-01-01 09:00 UTC", "every 1 day"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
	if !strings.Contains(RenderTaskTable(nil, nil), "no tasks") {
		t.Fatalf("expected empty marker")
	}
}

func TestRenderTaskDetail(t *testing.T) {
	task := sampleTask()
	preview := []model.Occurrence{task.OccurrenceAt(1), task.OccurrenceAt(2)}
	out := RenderTaskDetail(task, preview, time.UTC)
	for _, want := range []string{"#3 Standup", "blockers", "2024-01-02 09:00 UTC", "2024-01-03 09:00 UTC"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in detail:\n%s", want, out)
		}
	}
}

func TestRenderReminderUsesLocation(t *testing.T) {
	task := sampleTask()
	events := model.RemindersFor(task.Title, task.OccurrenceAt(0))
	loc := time.FixedZone("IST", 5*3600+1800)
	out := RenderReminder(events[0], loc)
	if !strings.Contains(out, "'Standup' starts in 5 minutes") || !strings.Contains(out, "14:30 IST") {
		t.Fatalf("unexpected reminder line: %s", out)
	}
	if !strings.Contains(RenderReminder(events[1], nil), "ends in 2 minutes") {
		t.Fatalf("expected PreEnd message")
	}
}

func TestRenderAgendaGroupsByDay(t *testing.T) {
	task := sampleTask()
	other := model.Task{ID: 1, Title: "Lunch", StartTime: task.StartTime.Add(3 * time.Hour), EndTime: task.StartTime.Add(4 * time.Hour)}
	occs := []model.Occurrence{task.OccurrenceAt(1), other.OccurrenceAt(0), task.OccurrenceAt(0)}
	items := AgendaItems(occs, map[int64]string{3: "Standup", 1: "Lunch"})
	out := RenderAgenda(items, time.UTC)

	first := strings.Index(out, "2024-01-01")
	second := strings.Index(out, "2024-01-02")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("days not ordered:\n%s", out)
	}
	standup := strings.Index(out, "09:00-09:15 #3 Standup")
	lunch := strings.Index(out, "12:00-13:00 #1 Lunch")
	if standup < 0 || lunch < 0 || standup > lunch {
		t.Fatalf("items not ordered within day:\n%s", out)
	}
	if RenderAgenda(nil, nil) != "(agenda empty)" {
		t.Fatalf("expected empty agenda marker")
	}
}

func TestRenderWatchPanelTrimsReminderLog(t *testing.T) {
	data := RenderWatchPanel(WatchPanelData{
		TableView:    "table",
		Reminders:    []string{"one", "two", "three"},
		MaxReminders: 2,
	})
	if strings.Contains(data.RightPane, "one") || !strings.Contains(data.RightPane, "three") {
		t.Fatalf("expected only the newest reminders, got:\n%s", data.RightPane)
	}
	if data.StatusLine != "waiting for first check" {
		t.Fatalf("unexpected status %q", data.StatusLine)
	}
}

func TestRenderError(t *testing.T) {
	if got := RenderError("ValidationError", "end_time", "bad"); got != "error kind=ValidationError field=end_time: bad" {
		t.Fatalf("unexpected error line %q", got)
	}
	if got := RenderError("NotFound", "", "task 9 not found"); got != "error kind=NotFound: task 9 not found" {
		t.Fatalf("unexpected error line %q", got)
	}
}

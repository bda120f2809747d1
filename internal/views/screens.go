package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

type AgendaItemData struct {
	TaskID int64
	Title  string
	Start  time.Time
	End    time.Time
	Index  int64
}

type WatchPanelData struct {
	TableView    string
	Reminders    []string
	Upcoming     []model.ReminderEvent
	LastChecked  time.Time
	Location     *time.Location
	Spinner      string
	HelpView     string
	MaxReminders int
}

// AgendaItems pairs occurrences with their task titles.
func AgendaItems(occs []model.Occurrence, titles map[int64]string) []AgendaItemData {
	items := make([]AgendaItemData, 0, len(occs))
	for _, occ := range occs {
		items = append(items, AgendaItemData{
			TaskID: occ.TaskID,
			Title:  titles[occ.TaskID],
			Start:  occ.Start,
			End:    occ.End,
			Index:  occ.Index,
		})
	}
	return items
}

// RenderAgenda groups occurrences by local day.
func RenderAgenda(items []AgendaItemData, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	if len(items) == 0 {
		return "(agenda empty)"
	}
	grouped := make(map[string][]AgendaItemData)
	keys := make([]string, 0)
	for _, item := range items {
		day := item.Start.In(loc).Format("2006-01-02 Mon")
		if _, ok := grouped[day]; !ok {
			keys = append(keys, day)
		}
		grouped[day] = append(grouped[day], item)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, day := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headerStyle.Render(day) + "\n")
		dayItems := grouped[day]
		sort.SliceStable(dayItems, func(i, j int) bool {
			if !dayItems[i].Start.Equal(dayItems[j].Start) {
				return dayItems[i].Start.Before(dayItems[j].Start)
			}
			return dayItems[i].TaskID < dayItems[j].TaskID
		})
		for _, item := range dayItems {
			fmt.Fprintf(&b, "  %s-%s #%d %s\n",
				item.Start.In(loc).Format("15:04"),
				item.End.In(loc).Format("15:04"),
				item.TaskID,
				item.Title,
			)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderWatchPanel(data WatchPanelData) AppData {
	var right strings.Builder
	right.WriteString("reminders:\n")
	reminders := data.Reminders
	if data.MaxReminders > 0 && len(reminders) > data.MaxReminders {
		reminders = reminders[len(reminders)-data.MaxReminders:]
	}
	if len(reminders) == 0 {
		right.WriteString("  (none yet)\n")
	}
	for _, line := range reminders {
		right.WriteString(line + "\n")
	}
	right.WriteString("\nupcoming:\n")
	right.WriteString(RenderUpcoming(data.Upcoming, data.Location))

	status := "waiting for first check"
	if !data.LastChecked.IsZero() {
		status = "last checked " + FormatTime(data.LastChecked, data.Location)
	}
	return AppData{
		Header:     strings.TrimSpace(data.Spinner + " taskremind watch"),
		LeftPane:   data.TableView,
		RightPane:  strings.TrimSuffix(right.String(), "\n"),
		StatusLine: status,
		Footer:     data.HelpView,
	}
}

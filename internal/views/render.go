package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sandeepkv93/taskremind/internal/model"
)

type AppData struct {
	Header     string
	LeftPane   string
	RightPane  string
	StatusLine string
	IsError    bool
	Footer     string
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	preStartStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	preEndStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const clockLayout = "2006-01-02 15:04 MST"

func RenderApp(data AppData) string {
	left := panelStyle.Width(64).Render(data.LeftPane)
	right := panelStyle.Width(52).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := statusStyle.Render(data.StatusLine)
	if data.IsError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
		status,
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// FormatTime renders t in loc, falling back to UTC.
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(clockLayout)
}

func Repeat(task model.Task) string {
	if !task.Recurring {
		return "once"
	}
	return "every " + FormatMinutes(task.FrequencyMinutes)
}

// FormatMinutes prints a minute count in the largest whole unit.
func FormatMinutes(m int) string {
	switch {
	case m > 0 && m%(7*1440) == 0:
		return plural(m/(7*1440), "week")
	case m > 0 && m%1440 == 0:
		return plural(m/1440, "day")
	case m > 0 && m%60 == 0:
		return plural(m/60, "hour")
	default:
		return plural(m, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func RenderTaskTable(tasks []model.Task, loc *time.Location) string {
	if len(tasks) == 0 {
		return labelStyle.Render("(no tasks)")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "TITLE", "START", "END", "REPEAT")
	for _, task := range tasks {
		t.Row(
			strconv.FormatInt(task.ID, 10),
			task.Title,
			FormatTime(task.StartTime, loc),
			FormatTime(task.EndTime, loc),
			Repeat(task),
		)
	}
	return t.Render()
}

func RenderTaskDetail(task model.Task, preview []model.Occurrence, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("#%d %s", task.ID, task.Title)) + "\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("start:  "), FormatTime(task.StartTime, loc))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("end:    "), FormatTime(task.EndTime, loc))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("repeat: "), Repeat(task))
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("created:"), FormatTime(task.CreatedAt, loc))
	}
	if details := RenderMarkdown(task.Details); details != "" {
		b.WriteString("\n" + details + "\n")
	}
	if len(preview) > 0 {
		b.WriteString("\n" + labelStyle.Render("next occurrences:") + "\n")
		for _, occ := range preview {
			fmt.Fprintf(&b, "- %s -> %s\n", FormatTime(occ.Start, loc), FormatTime(occ.End, loc))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func kindStyle(kind model.ReminderKind) lipgloss.Style {
	if kind == model.ReminderPreEnd {
		return preEndStyle
	}
	return preStartStyle
}

// RenderReminder is the one-line form of a delivered reminder.
func RenderReminder(ev model.ReminderEvent, loc *time.Location) string {
	badge := kindStyle(ev.Kind).Render("[" + string(ev.Kind) + "]")
	return fmt.Sprintf("%s %s %s", badge, ev.Message(), labelStyle.Render("("+FormatTime(ev.OccurrenceStart, loc)+")"))
}

// RenderUpcoming lists future reminders with their fire time.
func RenderUpcoming(events []model.ReminderEvent, loc *time.Location) string {
	if len(events) == 0 {
		return labelStyle.Render("(no upcoming reminders)")
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, fmt.Sprintf("%s  %s", FormatTime(ev.FireAt, loc), RenderReminder(ev, loc)))
	}
	return strings.Join(lines, "\n")
}

func RenderError(kind, field, msg string) string {
	if field != "" {
		return fmt.Sprintf("error kind=%s field=%s: %s", kind, field, msg)
	}
	return fmt.Sprintf("error kind=%s: %s", kind, msg)
}

package update

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/scheduler"
	"github.com/sandeepkv93/taskremind/internal/views"
)

type TickMsg struct {
	At time.Time
}

// CheckedMsg carries the outcome of one reminder evaluation.
type CheckedMsg struct {
	At       time.Time
	Result   scheduler.Result
	Upcoming []model.ReminderEvent
	Tasks    []model.Task
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollSpinner.Tick, m.checkCmd())
}

func (m Model) checkCmd() tea.Cmd {
	src, ctx, horizon := m.source, m.ctx, m.opts.UpcomingHorizon
	return func() tea.Msg {
		res := src.CheckReminders(ctx)
		return CheckedMsg{
			At:       src.Now(),
			Result:   res,
			Upcoming: src.Upcoming(horizon).Events,
			Tasks:    src.List(),
		}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg { return TickMsg{At: t} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		switch {
		case key.Matches(typed, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(typed, m.keys.Refresh):
			m.Status = StatusBar{Text: "checking reminders"}
			return m, m.checkCmd()
		case key.Matches(typed, m.keys.Palette):
			m.Palette = PaletteState{Active: true}
			m.commandInput.SetValue("")
			m.commandInput.Focus()
			m.Status = StatusBar{Text: "command prompt active"}
			return m, nil
		case key.Matches(typed, m.keys.Help):
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		var cmd tea.Cmd
		m.taskTable, cmd = m.taskTable.Update(typed)
		return m, cmd

	case TickMsg:
		return m, m.checkCmd()

	case CheckedMsg:
		m = m.applyCheck(typed)
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.pollSpinner, cmd = m.pollSpinner.Update(typed)
		return m, cmd
	}
	return m, nil
}

func (m Model) applyCheck(msg CheckedMsg) Model {
	m.LastChecked = msg.At
	m.Upcoming = msg.Upcoming
	m.Failures = msg.Result.Failures
	for _, ev := range msg.Result.Events {
		m.ReminderLog = append(m.ReminderLog, views.RenderReminder(ev, m.opts.Location))
	}
	if len(m.ReminderLog) > maxReminderLog {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-maxReminderLog:]
	}
	m.taskTable.SetRows(taskRows(msg.Tasks, msg.At, m.opts.Location))

	switch {
	case len(msg.Result.Failures) > 0:
		m.Status = StatusBar{Text: failureSummary(msg.Result.Failures), IsError: true}
	case len(msg.Result.Events) > 0:
		m.Status = StatusBar{Text: msg.Result.Events[len(msg.Result.Events)-1].Message()}
	}
	return m
}

func failureSummary(failures []scheduler.TaskFailure) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, model.Kind(f.Err)+" on task #"+strconv.FormatInt(f.TaskID, 10))
	}
	return "skipped: " + strings.Join(parts, ", ")
}

func (m Model) View() string {
	data := views.RenderWatchPanel(views.WatchPanelData{
		TableView:    m.taskTable.View(),
		Reminders:    m.ReminderLog,
		Upcoming:     m.Upcoming,
		LastChecked:  m.LastChecked,
		Location:     m.opts.Location,
		Spinner:      m.pollSpinner.View(),
		HelpView:     m.renderHelpView(),
		MaxReminders: 10,
	})
	if m.Status.Text != "" {
		data.StatusLine = m.Status.Text
		data.IsError = m.Status.IsError
	}
	if m.Palette.Active {
		data.StatusLine = m.commandInput.View()
		data.IsError = false
	}
	return views.RenderApp(data)
}

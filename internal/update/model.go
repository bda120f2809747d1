// Package update holds the bubbletea model behind the watch command: a
// polling shell that asks the service for due reminders on every tick.
package update

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/taskremind/internal/commands"
	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/scheduler"
	"github.com/sandeepkv93/taskremind/internal/views"
)

// Source is the part of app.Service the watch view needs.
type Source interface {
	CheckReminders(ctx context.Context) scheduler.Result
	Upcoming(horizon time.Duration) scheduler.Result
	List() []model.Task
	Now() time.Time
}

type Options struct {
	Interval        time.Duration
	UpcomingHorizon time.Duration
	Location        *time.Location
	// Handlers serve commands typed into the prompt. Watch is ignored.
	Handlers commands.Handlers
}

type StatusBar struct {
	Text    string
	IsError bool
}

type PaletteState struct {
	Active bool
	Input  string
}

const maxReminderLog = 40

type Model struct {
	Status      StatusBar
	Palette     PaletteState
	HelpVisible bool
	ReminderLog []string
	Upcoming    []model.ReminderEvent
	LastChecked time.Time
	Failures    []scheduler.TaskFailure

	ctx          context.Context
	source       Source
	opts         Options
	keys         keyMap
	taskTable    table.Model
	commandInput textinput.Model
	pollSpinner  spinner.Model
	helpModel    help.Model
}

func NewModel(ctx context.Context, source Source, opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.UpcomingHorizon <= 0 {
		opts.UpcomingHorizon = 24 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	opts.Handlers.Watch = nil
	m := Model{
		ctx:    ctx,
		source: source,
		opts:   opts,
		keys:   defaultKeyMap(),
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Title", Width: 22},
		{Title: "Next", Width: 20},
		{Title: "Repeat", Width: 14},
	}
	m.taskTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 60

	m.pollSpinner = spinner.New()
	m.pollSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

// taskRows renders the table rows with each task's next occurrence.
func taskRows(tasks []model.Task, now time.Time, loc *time.Location) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, task := range tasks {
		next := "-"
		if occ, ok, err := model.NextOccurrence(task, now); err == nil && ok {
			next = views.FormatTime(occ.Start, loc)
		} else if err != nil {
			next = "invalid"
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(task.ID, 10),
			task.Title,
			next,
			views.Repeat(task),
		})
	}
	return rows
}

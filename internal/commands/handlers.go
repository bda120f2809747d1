package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/taskremind/internal/app"
	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/scheduler"
	"github.com/sandeepkv93/taskremind/internal/views"
)

const (
	DefaultPreview     = 3
	DefaultAgendaRange = 7 * 24 * time.Hour
)

type HandlerOptions struct {
	Location        *time.Location
	UpcomingHorizon time.Duration
}

// ServiceHandlers wires every command except watch to svc. Results carry the
// rendered output.
func ServiceHandlers(ctx context.Context, svc *app.Service, opts HandlerOptions) Handlers {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return Handlers{
		Add: func(a AddArgs) (Result, error) {
			draft, err := a.Draft(loc)
			if err != nil {
				return Result{}, err
			}
			task, err := svc.Add(ctx, draft, app.AddOptions{AllowPast: a.AllowPast})
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("added task #%d %q (%s)", task.ID, task.Title, views.Repeat(task))}, nil
		},
		List: func(a ListArgs) (Result, error) {
			if !a.Occurrences {
				return Result{Message: views.RenderTaskTable(svc.List(), loc)}, nil
			}
			from := svc.Now()
			if a.From != "" {
				t, err := model.ParseTimestampField("from", a.From, loc)
				if err != nil {
					return Result{}, err
				}
				from = t
			}
			to := from.Add(DefaultAgendaRange)
			if a.To != "" {
				t, err := model.ParseTimestampField("to", a.To, loc)
				if err != nil {
					return Result{}, err
				}
				to = t
			}
			if to.Before(from) {
				return Result{}, &model.ValidationError{Field: "to", Reason: "must not be before from"}
			}
			res := svc.ListOccurrences(from, to)
			msg := views.RenderAgenda(views.AgendaItems(res.Occurrences, res.Titles), loc)
			for _, id := range res.Truncated {
				msg += fmt.Sprintf("\ntask #%d: listing stopped after %d occurrences; narrow --from/--to", id, model.MaxWindowOccurrences)
			}
			return Result{Message: withFailures(msg, res.Failures)}, nil
		},
		Show: func(a ShowArgs) (Result, error) {
			n := a.Preview
			if n <= 0 {
				n = DefaultPreview
			}
			task, occs, err := svc.Preview(a.ID, n)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: views.RenderTaskDetail(task, occs, loc)}, nil
		},
		Edit: func(a EditArgs) (Result, error) {
			current, err := svc.Get(a.ID)
			if err != nil {
				return Result{}, err
			}
			next, err := a.Apply(current, loc)
			if err != nil {
				return Result{}, err
			}
			task, err := svc.Update(ctx, next)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("updated task #%d %q", task.ID, task.Title)}, nil
		},
		Remove: func(a RemoveArgs) (Result, error) {
			if err := svc.Remove(ctx, a.ID); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("removed task #%d", a.ID)}, nil
		},
		Remind: func(a RemindArgs) (Result, error) {
			if a.Upcoming > 0 {
				res := svc.Upcoming(a.Upcoming)
				return Result{Message: withFailures(views.RenderUpcoming(res.Events, loc), res.Failures)}, nil
			}
			res := svc.CheckReminders(ctx)
			msg := ""
			if len(res.Events) == 0 {
				msg = "no reminders due"
			}
			return Result{Message: withFailures(msg, res.Failures)}, nil
		},
	}
}

func withFailures(msg string, failures []scheduler.TaskFailure) string {
	if len(failures) == 0 {
		return msg
	}
	lines := []string{msg}
	for _, f := range failures {
		lines = append(lines, fmt.Sprintf("skipped task #%d: %v", f.TaskID, f.Err))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Package notify delivers reminder events to the user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/views"
)

type Dispatcher interface {
	Deliver(ctx context.Context, ev model.ReminderEvent) error
}

// Terminal prints one styled line per reminder.
type Terminal struct {
	mu       sync.Mutex
	w        io.Writer
	location *time.Location
}

func NewTerminal(w io.Writer, loc *time.Location) *Terminal {
	return &Terminal{w: w, location: loc}
}

func (t *Terminal) Deliver(_ context.Context, ev model.ReminderEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, views.RenderReminder(ev, t.location))
	return err
}

// Runner runs an external command.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Desktop raises a native notification through notify-send or osascript.
// Other platforms are silently ignored.
type Desktop struct {
	goos string
	run  Runner
}

func NewDesktop() *Desktop {
	return &Desktop{goos: runtime.GOOS, run: execRunner}
}

func (d *Desktop) Deliver(ctx context.Context, ev model.ReminderEvent) error {
	title := "taskremind: " + ev.Title
	body := ev.Message()
	switch d.goos {
	case "linux":
		return d.run(ctx, "notify-send", title, body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return d.run(ctx, "osascript", "-e", script)
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Multi delivers to every dispatcher and joins their errors.
type Multi []Dispatcher

func (m Multi) Deliver(ctx context.Context, ev model.ReminderEvent) error {
	var errs []error
	for _, d := range m {
		if err := d.Deliver(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a function to Dispatcher.
type Func func(ctx context.Context, ev model.ReminderEvent) error

func (f Func) Deliver(ctx context.Context, ev model.ReminderEvent) error {
	return f(ctx, ev)
}

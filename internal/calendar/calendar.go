// Package calendar pushes finalized tasks to external calendars. Every
// backend is best effort: the caller logs failures and carries on.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sandeepkv93/taskremind/internal/model"
)

const (
	BackendNone   = "none"
	BackendCalDAV = "caldav"
	BackendGoogle = "google"
	BackendICS    = "ics"
)

// Sync creates or replaces the calendar entry for a task.
type Sync interface {
	Push(ctx context.Context, task model.Task) error
}

// Remover is implemented by backends that can delete an entry again.
type Remover interface {
	Remove(ctx context.Context, taskID int64) error
}

type Noop struct{}

func (Noop) Push(context.Context, model.Task) error { return nil }

type Options struct {
	Backend string
	CalDAV  CalDAVConfig
	Google  GoogleConfig
	ICSDir  string
}

// New builds the backend selected by opts.Backend.
func New(ctx context.Context, logger *slog.Logger, opts Options) (Sync, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendNone:
		return Noop{}, nil
	case BackendICS:
		return NewICSFileSync(opts.ICSDir)
	case BackendCalDAV:
		return NewCalDAVSync(ctx, logger, opts.CalDAV)
	case BackendGoogle:
		return NewGoogleSync(ctx, logger, opts.Google)
	default:
		return nil, fmt.Errorf("calendar: unknown backend %q", opts.Backend)
	}
}

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/sandeepkv93/taskremind"))

// EventUID is the stable calendar UID of a task.
func EventUID(taskID int64) string {
	return uuid.NewSHA1(uidNamespace, fmt.Appendf(nil, "task/%d", taskID)).String()
}

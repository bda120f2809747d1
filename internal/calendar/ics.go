package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-ical"

	"github.com/sandeepkv93/taskremind/internal/model"
)

// ICSFileSync writes one .ics file per task into a directory that calendar
// applications can subscribe to or import.
type ICSFileSync struct {
	dir string
	now func() time.Time
}

func NewICSFileSync(dir string) (*ICSFileSync, error) {
	if dir == "" {
		return nil, errors.New("calendar: ics output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("calendar: create ics dir: %w", err)
	}
	return &ICSFileSync{dir: dir, now: time.Now}, nil
}

func (s *ICSFileSync) Path(taskID int64) string {
	return filepath.Join(s.dir, EventUID(taskID)+".ics")
}

func (s *ICSFileSync) Push(_ context.Context, task model.Task) error {
	target := s.Path(task.ID)
	tmp := target + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("calendar: create ics file: %w", err)
	}
	if err := ical.NewEncoder(f).Encode(newCalendar(task, s.now())); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("calendar: encode ics: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("calendar: close ics file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("calendar: replace ics file: %w", err)
	}
	return nil
}

func (s *ICSFileSync) Remove(_ context.Context, taskID int64) error {
	if err := os.Remove(s.Path(taskID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("calendar: remove ics file: %w", err)
	}
	return nil
}

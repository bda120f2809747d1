package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/sandeepkv93/taskremind/internal/model"
)

const DefaultCalDAVEndpoint = "https://caldav.icloud.com/"

type CalDAVConfig struct {
	Endpoint     string
	Username     string
	Password     string
	CalendarName string
}

// basicAuthTransport adds credentials and a user agent to each request.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "taskremind/1.0")
	return t.Transport.RoundTrip(req)
}

type CalDAVSync struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	calendarPath string
}

// NewCalDAVSync connects to the server and resolves the named calendar.
func NewCalDAVSync(ctx context.Context, logger *slog.Logger, cfg CalDAVConfig) (*CalDAVSync, error) {
	if cfg.Username == "" || cfg.Password == "" || cfg.CalendarName == "" {
		return nil, errors.New("calendar: caldav username, password and calendar name are required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultCalDAVEndpoint
	}
	httpClient := &http.Client{Transport: &basicAuthTransport{
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: http.DefaultTransport,
	}}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("calendar: create caldav client: %w", err)
	}
	webdavClient, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("calendar: create webdav client: %w", err)
	}

	s := &CalDAVSync{caldavClient: caldavClient, webdavClient: webdavClient, logger: logger}
	logger.Info("finding caldav calendar", "calendar", cfg.CalendarName)
	calendarPath, err := s.findCalendar(ctx, cfg.CalendarName)
	if err != nil {
		return nil, fmt.Errorf("calendar: find %q: %w", cfg.CalendarName, err)
	}
	s.calendarPath = calendarPath
	logger.Debug("resolved caldav calendar", "path", calendarPath)
	return s, nil
}

func (s *CalDAVSync) objectPath(taskID int64) string {
	return path.Join(s.calendarPath, EventUID(taskID)+".ics")
}

func (s *CalDAVSync) Push(ctx context.Context, task model.Task) error {
	writer, err := s.webdavClient.Create(ctx, s.objectPath(task.ID))
	if err != nil {
		return fmt.Errorf("calendar: create caldav object: %w", err)
	}
	if err := ical.NewEncoder(writer).Encode(newCalendar(task, time.Now())); err != nil {
		writer.Close()
		return fmt.Errorf("calendar: encode caldav object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("calendar: upload caldav object: %w", err)
	}
	s.logger.Debug("pushed task to caldav", "task_id", task.ID)
	return nil
}

func (s *CalDAVSync) Remove(ctx context.Context, taskID int64) error {
	if err := s.webdavClient.RemoveAll(ctx, s.objectPath(taskID)); err != nil {
		return fmt.Errorf("calendar: remove caldav object: %w", err)
	}
	return nil
}

func (s *CalDAVSync) findCalendar(ctx context.Context, name string) (string, error) {
	principal, err := s.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := s.caldavClient.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("find calendar home set: %w", err)
	}
	calendars, err := s.caldavClient.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("list calendars: %w", err)
	}
	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar named %q", name)
}

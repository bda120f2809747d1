package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/sandeepkv93/taskremind/internal/model"
)

type GoogleConfig struct {
	ClientID        string
	ClientSecret    string
	CredentialsFile string
	TokenFile       string
	CalendarID      string
}

type GoogleSync struct {
	service    *gcal.Service
	logger     *slog.Logger
	calendarID string
}

func NewGoogleSync(ctx context.Context, logger *slog.Logger, cfg GoogleConfig) (*GoogleSync, error) {
	oauthCfg, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("calendar: load google token %q: %w (run calendar-auth first)", cfg.TokenFile, err)
	}
	service, err := gcal.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("calendar: create google service: %w", err)
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleSync{service: service, logger: logger, calendarID: calendarID}, nil
}

// googleEventID derives an event id from the task UID. Google accepts
// lowercase hex, which is a subset of its base32hex alphabet.
func googleEventID(taskID int64) string {
	return strings.ReplaceAll(EventUID(taskID), "-", "")
}

func toGoogleEvent(task model.Task) *gcal.Event {
	ev := &gcal.Event{
		Id:          googleEventID(task.ID),
		ICalUID:     EventUID(task.ID),
		Summary:     task.Title,
		Description: task.Details,
		Start:       &gcal.EventDateTime{DateTime: task.StartTime.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: task.EndTime.UTC().Format(time.RFC3339), TimeZone: "UTC"},
	}
	if rule := recurrenceRule(task); rule != "" {
		ev.Recurrence = []string{"RRULE:" + rule}
	}
	return ev
}

// Push updates the event, inserting it when Google does not know it yet.
func (s *GoogleSync) Push(ctx context.Context, task model.Task) error {
	ev := toGoogleEvent(task)
	_, err := s.service.Events.Update(s.calendarID, ev.Id, ev).Context(ctx).Do()
	if err == nil {
		return nil
	}
	if !isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("calendar: update google event: %w", err)
	}
	if _, err := s.service.Events.Insert(s.calendarID, ev).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: insert google event: %w", err)
	}
	s.logger.Debug("inserted google event", "task_id", task.ID, "event_id", ev.Id)
	return nil
}

func (s *GoogleSync) Remove(ctx context.Context, taskID int64) error {
	err := s.service.Events.Delete(s.calendarID, googleEventID(taskID)).Context(ctx).Do()
	if err != nil && !isStatus(err, http.StatusNotFound) && !isStatus(err, http.StatusGone) {
		return fmt.Errorf("calendar: delete google event: %w", err)
	}
	return nil
}

func isStatus(err error, code int) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == code
}

// OAuthConfig prefers an explicit client id and secret over a credentials
// file downloaded from the Google console.
func OAuthConfig(cfg GoogleConfig) (*oauth2.Config, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		return &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{gcal.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		}, nil
	}
	if cfg.CredentialsFile == "" {
		return nil, errors.New("calendar: google client id/secret or credentials file required")
	}
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("calendar: read credentials: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(b, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("calendar: parse credentials: %w", err)
	}
	oauthCfg.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	return oauthCfg, nil
}

// AuthURL is the consent page the user visits to obtain an auth code.
func AuthURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("taskremind", oauth2.AccessTypeOffline)
}

// ExchangeAndSave trades an auth code for a token and writes it to path.
func ExchangeAndSave(ctx context.Context, cfg *oauth2.Config, code, path string) error {
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("calendar: exchange auth code: %w", err)
	}
	return SaveToken(path, token)
}

func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("calendar: create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

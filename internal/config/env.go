package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FromEnv overrides cfg from TASKREMIND_* variables. Unparseable durations
// are reported; other malformed values are ignored.
func FromEnv(cfg *Config) error {
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	setString("TASKREMIND_DB", &cfg.DBPath)
	setString("TASKREMIND_LOG_LEVEL", &cfg.LogLevel)
	setString("TASKREMIND_TIMEZONE", &cfg.Timezone)
	setString("TASKREMIND_CALENDAR_BACKEND", &cfg.CalendarBackend)
	setString("TASKREMIND_ICS_DIR", &cfg.ICSDir)
	setString("TASKREMIND_CALDAV_ENDPOINT", &cfg.CalDAV.Endpoint)
	setString("TASKREMIND_CALDAV_USERNAME", &cfg.CalDAV.Username)
	setString("TASKREMIND_CALDAV_PASSWORD", &cfg.CalDAV.Password)
	setString("TASKREMIND_CALDAV_CALENDAR", &cfg.CalDAV.CalendarName)
	setString("GOOGLE_CLIENT_ID", &cfg.Google.ClientID)
	setString("GOOGLE_CLIENT_SECRET", &cfg.Google.ClientSecret)
	setString("TASKREMIND_GOOGLE_CREDENTIALS", &cfg.Google.CredentialsFile)
	setString("TASKREMIND_GOOGLE_TOKEN_FILE", &cfg.Google.TokenFile)
	setString("TASKREMIND_GOOGLE_CALENDAR_ID", &cfg.Google.CalendarID)

	if v, ok := getEnvBool("TASKREMIND_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"TASKREMIND_REMINDER_LOOKBACK", &cfg.ReminderLookback},
		{"TASKREMIND_FIRED_RETENTION", &cfg.FiredRetention},
		{"TASKREMIND_WATCH_INTERVAL", &cfg.WatchInterval},
		{"TASKREMIND_UPCOMING_HORIZON", &cfg.UpcomingHorizon},
		{"TASKREMIND_CALENDAR_TIMEOUT", &cfg.CalendarTimeout},
	}
	for _, d := range durations {
		v, ok, err := getEnvDuration(d.name)
		if err != nil {
			return err
		}
		if ok {
			*d.dst = v
		}
	}
	return nil
}

// getEnvDuration accepts Go durations ("90s") or a bare number of minutes.
func getEnvDuration(name string) (time.Duration, bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false, nil
	}
	if mins, err := strconv.Atoi(raw); err == nil {
		return time.Duration(mins) * time.Minute, true, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("config: %s: %w", name, err)
	}
	return d, true, nil
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

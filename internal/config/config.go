// Package config resolves runtime settings from defaults, a TOML file, .env
// and TASKREMIND_* environment variables, in that order. CLI flags are
// applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sandeepkv93/taskremind/internal/calendar"
)

// MemoryDB selects the in-memory store instead of SQLite.
const MemoryDB = ":memory:"

type CalDAV struct {
	Endpoint     string `toml:"endpoint"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	CalendarName string `toml:"calendar_name"`
}

type Google struct {
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	CredentialsFile string `toml:"credentials_file"`
	TokenFile       string `toml:"token_file"`
	CalendarID      string `toml:"calendar_id"`
}

type Config struct {
	DBPath               string        `toml:"db_path"`
	LogLevel             string        `toml:"log_level"`
	Timezone             string        `toml:"timezone"`
	ReminderLookback     time.Duration `toml:"reminder_lookback"`
	FiredRetention       time.Duration `toml:"fired_retention"`
	DesktopNotifications bool          `toml:"desktop_notifications"`
	WatchInterval        time.Duration `toml:"watch_interval"`
	UpcomingHorizon      time.Duration `toml:"upcoming_horizon"`
	CalendarBackend      string        `toml:"calendar_backend"`
	CalendarTimeout      time.Duration `toml:"calendar_timeout"`
	ICSDir               string        `toml:"ics_dir"`
	CalDAV               CalDAV        `toml:"caldav"`
	Google               Google        `toml:"google"`
}

func Default() Config {
	return Config{
		DBPath:           "taskremind.db",
		LogLevel:         "info",
		Timezone:         "Local",
		ReminderLookback: 5 * time.Minute,
		FiredRetention:   7 * 24 * time.Hour,
		WatchInterval:    30 * time.Second,
		UpcomingHorizon:  24 * time.Hour,
		CalendarBackend:  calendar.BackendNone,
		CalendarTimeout:  10 * time.Second,
		ICSDir:           "calendar",
		CalDAV:           CalDAV{Endpoint: calendar.DefaultCalDAVEndpoint},
		Google:           Google{TokenFile: "token-google.json", CalendarID: "primary"},
	}
}

// Load applies every layer except CLI flags. An explicit path must exist;
// the default location is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("TASKREMIND_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = defaultConfigFile()
	}
	if path != "" {
		if err := loadFile(&cfg, path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	if err := FromEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "taskremind", "config.toml")
}

func loadFile(cfg *Config, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadDotEnv exports the variables of the given files without overriding
// anything already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	positive := map[string]time.Duration{
		"reminder_lookback": c.ReminderLookback,
		"fired_retention":   c.FiredRetention,
		"watch_interval":    c.WatchInterval,
		"upcoming_horizon":  c.UpcomingHorizon,
		"calendar_timeout":  c.CalendarTimeout,
	}
	for name, d := range positive {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", name, d)
		}
	}
	switch strings.ToLower(c.CalendarBackend) {
	case calendar.BackendNone, calendar.BackendCalDAV, calendar.BackendGoogle, calendar.BackendICS:
	default:
		return fmt.Errorf("config: unknown calendar_backend %q", c.CalendarBackend)
	}
	return nil
}

func (c Config) UsesMemoryStore() bool {
	return c.DBPath == "" || c.DBPath == MemoryDB
}

func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) CalendarOptions() calendar.Options {
	return calendar.Options{
		Backend: c.CalendarBackend,
		CalDAV: calendar.CalDAVConfig{
			Endpoint:     c.CalDAV.Endpoint,
			Username:     c.CalDAV.Username,
			Password:     c.CalDAV.Password,
			CalendarName: c.CalDAV.CalendarName,
		},
		Google: calendar.GoogleConfig{
			ClientID:        c.Google.ClientID,
			ClientSecret:    c.Google.ClientSecret,
			CredentialsFile: c.Google.CredentialsFile,
			TokenFile:       c.Google.TokenFile,
			CalendarID:      c.Google.CalendarID,
		},
		ICSDir: c.ICSDir,
	}
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", level)
	}
}

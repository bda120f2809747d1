package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sandeepkv93/taskremind/internal/app"
	"github.com/sandeepkv93/taskremind/internal/calendar"
	"github.com/sandeepkv93/taskremind/internal/commands"
	"github.com/sandeepkv93/taskremind/internal/config"
	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/notify"
	"github.com/sandeepkv93/taskremind/internal/storage"
	"github.com/sandeepkv93/taskremind/internal/timeutil"
)

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "taskremind",
		Usage:     "Schedule tasks and get reminded before they start and end.",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a TOML config file"},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path, or :memory:"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "timezone", Usage: "IANA zone for offset-less input and output"},
		},
		Commands: []*cli.Command{
			addCommand(),
			listCommand(),
			showCommand(),
			editCommand(),
			removeCommand(),
			remindCommand(),
			watchCommand(),
			calendarAuthCommand(),
		},
	}
}

// session is everything one invocation needs. close releases the store.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	loc     *time.Location
	store   storage.Store
	service *app.Service
}

func (r *session) close() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("close store failed", "error", err)
	}
}

func (r *session) handlers(ctx context.Context) commands.Handlers {
	return commands.ServiceHandlers(ctx, r.service, commands.HandlerOptions{
		Location:        r.loc,
		UpcomingHorizon: r.cfg.UpcomingHorizon,
	})
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("timezone") {
		cfg.Timezone = c.String("timezone")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func setupLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.UsesMemoryStore() {
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, model.NewStorageError("open database", err)
	}
	return store, nil
}

type setupOptions struct {
	logWriter  io.Writer
	dispatcher notify.Dispatcher
	clock      timeutil.Clock
}

// build wires the service for one command. The caller must close the
// returned session.
func build(c *cli.Context, cfg config.Config, opts setupOptions) (*session, error) {
	if opts.logWriter == nil {
		opts.logWriter = c.App.ErrWriter
	}
	logger := setupLogger(opts.logWriter, cfg.LogLevel)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	ctx := c.Context
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt := &session{cfg: cfg, logger: logger, loc: loc, store: store}

	cal, err := calendar.New(ctx, logger, cfg.CalendarOptions())
	if err != nil {
		logger.Warn("calendar sync disabled", "backend", cfg.CalendarBackend, "error", err)
		cal = calendar.Noop{}
	}

	svc, err := app.New(ctx, app.Deps{
		Store:      store,
		Calendar:   cal,
		Dispatcher: opts.dispatcher,
		Clock:      opts.clock,
		Logger:     logger,
	}, app.Options{
		Lookback:        cfg.ReminderLookback,
		FiredRetention:  cfg.FiredRetention,
		CalendarTimeout: cfg.CalendarTimeout,
	})
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.service = svc
	logger.Debug("session ready", "db", cfg.DBPath, "timezone", loc.String(), "calendar", cfg.CalendarBackend)
	return rt, nil
}

// dispatcherFor prints to the terminal and, when enabled, raises desktop
// notifications too.
func dispatcherFor(cfg config.Config, w io.Writer, loc *time.Location, terminal bool) notify.Dispatcher {
	var out notify.Multi
	if terminal {
		out = append(out, notify.NewTerminal(w, loc))
	}
	if cfg.DesktopNotifications {
		out = append(out, notify.NewDesktop())
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// execute runs one command against a fresh session.
func execute(c *cli.Context, cmd commands.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	rt, err := build(c, cfg, setupOptions{})
	if err != nil {
		return err
	}
	defer rt.close()
	return runCommand(c, rt, cmd)
}

func runCommand(c *cli.Context, rt *session, cmd commands.Command) error {
	res, err := commands.Execute(cmd, rt.handlers(c.Context))
	if err != nil {
		return err
	}
	if res.Message != "" {
		fmt.Fprintln(c.App.Writer, res.Message)
	}
	return nil
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/sandeepkv93/taskremind/internal/calendar"
	"github.com/sandeepkv93/taskremind/internal/commands"
	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/timeutil"
	"github.com/sandeepkv93/taskremind/internal/update"
)

func taskIDArg(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, &model.ValidationError{Field: "id", Reason: fmt.Sprintf("%s expects exactly one task id", c.Command.Name)}
	}
	return commands.ParseID(c.Args().First())
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a one-off or recurring task.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: model.FieldTitle},
			&cli.StringFlag{Name: "details"},
			&cli.StringFlag{Name: model.FieldStartTime, Usage: "ISO-8601, e.g. 2024-12-31T15:00:00Z"},
			&cli.StringFlag{Name: model.FieldEndTime, Usage: "ISO-8601, e.g. 2024-12-31T16:00:00Z"},
			&cli.BoolFlag{Name: "recurring"},
			&cli.IntFlag{Name: model.FieldFrequencyMinutes, Usage: "minutes between occurrence starts"},
			&cli.BoolFlag{Name: "allow_past", Usage: "accept a start time before now"},
		},
		Action: func(c *cli.Context) error {
			return execute(c, commands.Command{Type: commands.TypeAdd, Add: &commands.AddArgs{
				Title:            c.String(model.FieldTitle),
				Details:          c.String("details"),
				StartTime:        c.String(model.FieldStartTime),
				EndTime:          c.String(model.FieldEndTime),
				Recurring:        c.Bool("recurring"),
				FrequencyMinutes: c.Int(model.FieldFrequencyMinutes),
				AllowPast:        c.Bool("allow_past"),
			}})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List tasks, or their occurrences in a window.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "occurrences", Usage: "show an agenda of occurrences"},
			&cli.StringFlag{Name: "from", Usage: "agenda start (default now)"},
			&cli.StringFlag{Name: "to", Usage: "agenda end (default a week after from)"},
		},
		Action: func(c *cli.Context) error {
			return execute(c, commands.Command{Type: commands.TypeList, List: &commands.ListArgs{
				Occurrences: c.Bool("occurrences") || c.IsSet("from") || c.IsSet("to"),
				From:        c.String("from"),
				To:          c.String("to"),
			}})
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a task and its next occurrences.",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "preview", Value: commands.DefaultPreview, Usage: "number of occurrences to list"},
		},
		Action: func(c *cli.Context) error {
			id, err := taskIDArg(c)
			if err != nil {
				return err
			}
			return execute(c, commands.Command{Type: commands.TypeShow, Show: &commands.ShowArgs{
				ID:      id,
				Preview: c.Int("preview"),
			}})
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change fields of an existing task.",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: model.FieldTitle},
			&cli.StringFlag{Name: "details"},
			&cli.StringFlag{Name: model.FieldStartTime},
			&cli.StringFlag{Name: model.FieldEndTime},
			&cli.BoolFlag{Name: "recurring"},
			&cli.IntFlag{Name: model.FieldFrequencyMinutes},
		},
		Action: func(c *cli.Context) error {
			id, err := taskIDArg(c)
			if err != nil {
				return err
			}
			args := editArgs(c, id)
			if args.Empty() {
				return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "edit requires at least one field to change"}
			}
			return execute(c, commands.Command{Type: commands.TypeEdit, Edit: &args})
		},
	}
}

// editArgs keeps only the flags the user actually passed.
func editArgs(c *cli.Context, id int64) commands.EditArgs {
	args := commands.EditArgs{ID: id}
	str := func(name string) *string {
		if !c.IsSet(name) {
			return nil
		}
		v := c.String(name)
		return &v
	}
	args.Title = str(model.FieldTitle)
	args.Details = str("details")
	args.StartTime = str(model.FieldStartTime)
	args.EndTime = str(model.FieldEndTime)
	if c.IsSet("recurring") {
		v := c.Bool("recurring")
		args.Recurring = &v
	}
	if c.IsSet(model.FieldFrequencyMinutes) {
		v := c.Int(model.FieldFrequencyMinutes)
		args.FrequencyMinutes = &v
	}
	return args
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Delete a task and its reminder history.",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			id, err := taskIDArg(c)
			if err != nil {
				return err
			}
			return execute(c, commands.Command{Type: commands.TypeRemove, Remove: &commands.RemoveArgs{ID: id}})
		},
	}
}

func remindCommand() *cli.Command {
	return &cli.Command{
		Name:  "remind",
		Usage: "Deliver reminders that are due now.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "now", Usage: "evaluate as of this instant instead of the clock"},
			&cli.DurationFlag{Name: "upcoming", Usage: "list reminders firing within this duration instead"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			opts := setupOptions{dispatcher: dispatcherFor(cfg, c.App.Writer, loc, true)}
			if c.IsSet("now") {
				at, err := model.ParseTimestampField("now", c.String("now"), loc)
				if err != nil {
					return err
				}
				opts.clock = timeutil.FixedClock{At: at}
			}
			rt, err := build(c, cfg, opts)
			if err != nil {
				return err
			}
			defer rt.close()
			return runCommand(c, rt, commands.Command{Type: commands.TypeRemind, Remind: &commands.RemindArgs{
				Upcoming: c.Duration("upcoming"),
			}})
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll for due reminders in an interactive view.",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "interval", Usage: "time between checks (default from config)"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs here while the view is open"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			logWriter := io.Discard
			if path := c.String("log-file"); path != "" {
				f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				logWriter = f
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The view renders reminders itself; only desktop notifications
			// go through the dispatcher.
			rt, err := build(c, cfg, setupOptions{
				logWriter:  logWriter,
				dispatcher: dispatcherFor(cfg, c.App.Writer, loc, false),
			})
			if err != nil {
				return err
			}
			defer rt.close()

			interval := cfg.WatchInterval
			if c.IsSet("interval") {
				interval = c.Duration("interval")
			}
			if interval <= 0 {
				return &model.ValidationError{Field: "interval", Reason: "must be positive"}
			}
			m := update.NewModel(ctx, rt.service, update.Options{
				Interval:        interval,
				UpcomingHorizon: cfg.UpcomingHorizon,
				Location:        loc,
				Handlers:        rt.handlers(ctx),
			})
			program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(c.App.Writer))
			if _, err := program.Run(); err != nil && ctx.Err() == nil {
				return fmt.Errorf("watch: %w", err)
			}
			return nil
		},
	}
}

func calendarAuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendar-auth",
		Usage: "Authorize Google Calendar sync and store the token.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "code", Usage: "authorization code; prompted for when omitted"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger := setupLogger(c.App.ErrWriter, cfg.LogLevel)
			gcfg := cfg.CalendarOptions().Google
			oauthCfg, err := calendar.OAuthConfig(gcfg)
			if err != nil {
				return err
			}

			code := c.String("code")
			if code == "" {
				fmt.Fprintf(c.App.Writer, "Go to the following link in your browser then type the authorization code:\n%s\n", calendar.AuthURL(oauthCfg))
				fmt.Fprint(c.App.Writer, "Enter Authorization Code: ")
				code, err = readLine(os.Stdin)
				if err != nil {
					return err
				}
			}
			if err := calendar.ExchangeAndSave(c.Context, oauthCfg, code, gcfg.TokenFile); err != nil {
				return err
			}
			logger.Info("saved google calendar token", "file", gcfg.TokenFile)
			if cfg.CalendarBackend != calendar.BackendGoogle {
				logger.Info("set calendar_backend to enable sync", "backend", calendar.BackendGoogle, "current", cfg.CalendarBackend)
			}
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read authorization code: %w", err)
	}
	return strings.TrimSpace(line), nil
}

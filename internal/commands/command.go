package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeList   Type = "list"
	TypeShow   Type = "show"
	TypeEdit   Type = "edit"
	TypeRemove Type = "remove"
	TypeRemind Type = "remind"
	TypeWatch  Type = "watch"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title            string
	Details          string
	StartTime        string
	EndTime          string
	Recurring        bool
	FrequencyMinutes int
	AllowPast        bool
}

// Draft parses the timestamps and builds an unsaved task. Offset-less
// timestamps are read in loc.
func (a AddArgs) Draft(loc *time.Location) (model.Task, error) {
	start, err := model.ParseTimestampField(model.FieldStartTime, a.StartTime, loc)
	if err != nil {
		return model.Task{}, err
	}
	end, err := model.ParseTimestampField(model.FieldEndTime, a.EndTime, loc)
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{
		Title:            a.Title,
		Details:          a.Details,
		StartTime:        start,
		EndTime:          end,
		Recurring:        a.Recurring,
		FrequencyMinutes: a.FrequencyMinutes,
	}, nil
}

type ListArgs struct {
	Occurrences bool
	From        string
	To          string
}

type ShowArgs struct {
	ID      int64
	Preview int
}

// EditArgs carries only the fields the user asked to change.
type EditArgs struct {
	ID               int64
	Title            *string
	Details          *string
	StartTime        *string
	EndTime          *string
	Recurring        *bool
	FrequencyMinutes *int
}

func (e EditArgs) Empty() bool {
	return e.Title == nil && e.Details == nil && e.StartTime == nil && e.EndTime == nil &&
		e.Recurring == nil && e.FrequencyMinutes == nil
}

// Apply returns task with the requested changes. A frequency without an
// explicit recurring flag turns recurrence on.
func (e EditArgs) Apply(task model.Task, loc *time.Location) (model.Task, error) {
	if e.Title != nil {
		task.Title = *e.Title
	}
	if e.Details != nil {
		task.Details = *e.Details
	}
	if e.StartTime != nil {
		start, err := model.ParseTimestampField(model.FieldStartTime, *e.StartTime, loc)
		if err != nil {
			return model.Task{}, err
		}
		task.StartTime = start
	}
	if e.EndTime != nil {
		end, err := model.ParseTimestampField(model.FieldEndTime, *e.EndTime, loc)
		if err != nil {
			return model.Task{}, err
		}
		task.EndTime = end
	}
	if e.FrequencyMinutes != nil {
		task.FrequencyMinutes = *e.FrequencyMinutes
		if e.Recurring == nil {
			task.Recurring = true
		}
	}
	if e.Recurring != nil {
		task.Recurring = *e.Recurring
	}
	return task, nil
}

type RemoveArgs struct {
	ID int64
}

type RemindArgs struct {
	Upcoming time.Duration
}

type WatchArgs struct {
	Interval time.Duration
}

// Command is a closed set of variants; exactly one args pointer matches Type.
type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	List   *ListArgs
	Show   *ShowArgs
	Edit   *EditArgs
	Remove *RemoveArgs
	Remind *RemindArgs
	Watch  *WatchArgs
}

// ParseID reads a positive task id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, &model.ValidationError{Field: "id", Reason: fmt.Sprintf("%q is not a task id", s)}
	}
	return id, nil
}

// Parse reads a single command line such as `show 3 --preview 5`, as typed
// into the watch view's command prompt.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	tokens, err := splitArgs(raw)
	if err != nil {
		return Command{}, err
	}
	head := strings.ToLower(tokens[0])
	positional, flags, err := splitFlags(tokens[1:])
	if err != nil {
		return Command{}, err
	}

	var cmd Command
	switch Type(head) {
	case TypeAdd:
		cmd, err = parseAdd(positional, flags)
	case TypeList:
		cmd, err = parseList(positional, flags)
	case TypeShow:
		cmd, err = parseShow(positional, flags)
	case TypeEdit:
		cmd, err = parseEdit(positional, flags)
	case TypeRemove, "rm":
		cmd, err = parseRemove(positional, flags)
	case TypeRemind:
		cmd, err = parseRemind(positional, flags)
	case TypeWatch:
		cmd, err = parseWatch(positional, flags)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
	if err != nil {
		return Command{}, err
	}
	cmd.Raw = input
	return cmd, nil
}

func parseAdd(positional []string, f flagSet) (Command, error) {
	if err := noPositional(TypeAdd, positional); err != nil {
		return Command{}, err
	}
	freq, err := f.integer(model.FieldFrequencyMinutes)
	if err != nil {
		return Command{}, err
	}
	args := &AddArgs{
		Title:            f.str(model.FieldTitle),
		Details:          f.str("details"),
		StartTime:        f.str(model.FieldStartTime),
		EndTime:          f.str(model.FieldEndTime),
		Recurring:        f.boolean("recurring"),
		FrequencyMinutes: freq,
		AllowPast:        f.boolean("allow_past"),
	}
	if err := f.unknown(TypeAdd, model.FieldTitle, "details", model.FieldStartTime, model.FieldEndTime, "recurring", model.FieldFrequencyMinutes, "allow_past"); err != nil {
		return Command{}, err
	}
	return Command{Type: TypeAdd, Add: args}, nil
}

func parseList(positional []string, f flagSet) (Command, error) {
	if err := noPositional(TypeList, positional); err != nil {
		return Command{}, err
	}
	if err := f.unknown(TypeList, "occurrences", "from", "to"); err != nil {
		return Command{}, err
	}
	return Command{Type: TypeList, List: &ListArgs{
		Occurrences: f.boolean("occurrences") || f.has("from") || f.has("to"),
		From:        f.str("from"),
		To:          f.str("to"),
	}}, nil
}

func parseShow(positional []string, f flagSet) (Command, error) {
	id, err := oneID(TypeShow, positional)
	if err != nil {
		return Command{}, err
	}
	preview, err := f.integer("preview")
	if err != nil {
		return Command{}, err
	}
	if err := f.unknown(TypeShow, "preview"); err != nil {
		return Command{}, err
	}
	return Command{Type: TypeShow, Show: &ShowArgs{ID: id, Preview: preview}}, nil
}

func parseEdit(positional []string, f flagSet) (Command, error) {
	id, err := oneID(TypeEdit, positional)
	if err != nil {
		return Command{}, err
	}
	args := &EditArgs{ID: id}
	for _, name := range []string{model.FieldTitle, "details", model.FieldStartTime, model.FieldEndTime} {
		if !f.has(name) {
			continue
		}
		v := f.str(name)
		switch name {
		case model.FieldTitle:
			args.Title = &v
		case "details":
			args.Details = &v
		case model.FieldStartTime:
			args.StartTime = &v
		case model.FieldEndTime:
			args.EndTime = &v
		}
	}
	if f.has("recurring") {
		v := f.boolean("recurring")
		args.Recurring = &v
	}
	if f.has(model.FieldFrequencyMinutes) {
		v, err := f.integer(model.FieldFrequencyMinutes)
		if err != nil {
			return Command{}, err
		}
		args.FrequencyMinutes = &v
	}
	if err := f.unknown(TypeEdit, model.FieldTitle, "details", model.FieldStartTime, model.FieldEndTime, "recurring", model.FieldFrequencyMinutes); err != nil {
		return Command{}, err
	}
	if args.Empty() {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires at least one field to change"}
	}
	return Command{Type: TypeEdit, Edit: args}, nil
}

func parseRemove(positional []string, f flagSet) (Command, error) {
	id, err := oneID(TypeRemove, positional)
	if err != nil {
		return Command{}, err
	}
	if err := f.unknown(TypeRemove); err != nil {
		return Command{}, err
	}
	return Command{Type: TypeRemove, Remove: &RemoveArgs{ID: id}}, nil
}

func parseRemind(positional []string, f flagSet) (Command, error) {
	if err := noPositional(TypeRemind, positional); err != nil {
		return Command{}, err
	}
	upcoming, err := f.duration("upcoming")
	if err != nil {
		return Command{}, err
	}
	if err := f.unknown(TypeRemind, "upcoming"); err != nil {
		return Command{}, err
	}
	return Command{Type: TypeRemind, Remind: &RemindArgs{Upcoming: upcoming}}, nil
}

func parseWatch(positional []string, f flagSet) (Command, error) {
	if err := noPositional(TypeWatch, positional); err != nil {
		return Command{}, err
	}
	interval, err := f.duration("interval")
	if err != nil {
		return Command{}, err
	}
	if err := f.unknown(TypeWatch, "interval"); err != nil {
		return Command{}, err
	}
	return Command{Type: TypeWatch, Watch: &WatchArgs{Interval: interval}}, nil
}

func oneID(t Type, positional []string) (int64, error) {
	if len(positional) != 1 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires exactly one task id", t)}
	}
	return ParseID(positional[0])
}

func noPositional(t Type, positional []string) error {
	if len(positional) > 0 {
		return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no positional arguments, got %q", t, positional[0])}
	}
	return nil
}

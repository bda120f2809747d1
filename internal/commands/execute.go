package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	List   func(ListArgs) (Result, error)
	Show   func(ShowArgs) (Result, error)
	Edit   func(EditArgs) (Result, error)
	Remove func(RemoveArgs) (Result, error)
	Remind func(RemindArgs) (Result, error)
	Watch  func(WatchArgs) (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil || cmd.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeList:
		if handlers.List == nil || cmd.List == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.List(*cmd.List)
	case TypeShow:
		if handlers.Show == nil || cmd.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	case TypeEdit:
		if handlers.Edit == nil || cmd.Edit == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Edit(*cmd.Edit)
	case TypeRemove:
		if handlers.Remove == nil || cmd.Remove == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Remove(*cmd.Remove)
	case TypeRemind:
		if handlers.Remind == nil || cmd.Remind == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Remind(*cmd.Remind)
	case TypeWatch:
		if handlers.Watch == nil || cmd.Watch == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Watch(*cmd.Watch)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

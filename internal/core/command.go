package core

import "context"

// CmdRouter handles slash commands typed into a chat transport. handled is
// false when input is not a command and should go to generation.
type CmdRouter interface {
	Execute(ctx context.Context, sessionID, input string) (reply string, handled bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sessionID string, args []string) (string, error)
}

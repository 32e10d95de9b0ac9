package command

import (
	"github.com/sandevgo/ragway/internal/core"
)

func NewCommands(
	chat HistoryService,
	state ProviderState,
	profiles ProfileSource,
	providers []core.ProviderID,
) []core.Command {
	return []core.Command{
		NewHistoryCommand(chat),
		NewClearCommand(chat),
		NewProviderCommand(state, profiles, providers),
	}
}

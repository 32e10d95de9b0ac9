package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/ragway/internal/core"
)

type Router struct {
	commands map[string]core.Command
}

func New(commands []core.Command) *Router {
	r := &Router{
		commands: make(map[string]core.Command),
	}
	for _, cmd := range commands {
		r.commands[cmd.Name()] = cmd
	}
	return r
}

func (r *Router) Execute(ctx context.Context, sessionID, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	// telegram appends the bot name in groups: /clear@ragway_bot
	name, _, _ := strings.Cut(strings.TrimPrefix(parts[0], "/"), "@")
	args := parts[1:]

	if name == "help" || name == "start" {
		return r.help(), true
	}

	cmd, ok := r.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s", name), true
	}

	result, err := cmd.Execute(ctx, sessionID, args)
	if err != nil {
		return NewResponseFormatter().Error(err), true
	}
	return result, true
}

// ListCommands is sorted by name.
func (r *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

func (r *Router) help() string {
	f := NewResponseFormatter()
	items := make([]string, 0, len(r.commands))
	for _, cmd := range r.ListCommands() {
		items = append(items, fmt.Sprintf("/%s  %s", cmd.Name(), cmd.Description()))
	}
	return f.Combine(
		f.Info(core.RagwayName+" commands"),
		f.List(items),
		f.Tip("Any other message is answered using this chat's history as context"),
	)
}

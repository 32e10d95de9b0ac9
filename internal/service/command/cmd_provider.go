package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/ragway/internal/core"
)

type ProviderState interface {
	Get(sessionID string) core.ProviderConfig
	Set(sessionID string, cfg core.ProviderConfig)
	Reset(sessionID string)
	Defaults() core.ProviderConfig
}

// ProfileSource resolves named provider profiles.
type ProfileSource interface {
	Get(name string) (core.ProviderConfig, error)
	Names() []string
}

type ProviderCommand struct {
	state     ProviderState
	profiles  ProfileSource
	known     []core.ProviderID
	formatter *ResponseFormatter
}

func NewProviderCommand(state ProviderState, profiles ProfileSource, known []core.ProviderID) *ProviderCommand {
	return &ProviderCommand{
		state:     state,
		profiles:  profiles,
		known:     known,
		formatter: NewResponseFormatter(),
	}
}

func (c *ProviderCommand) Name() string { return "provider" }

func (c *ProviderCommand) Description() string { return "Show or switch the provider for this chat" }

func (c *ProviderCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	switch len(args) {
	case 0:
		return c.show(sessionID), nil
	case 1:
		if args[0] == "reset" {
			c.state.Reset(sessionID)
			return c.switched(sessionID), nil
		}
		if c.profiles == nil {
			return "", fmt.Errorf("no profiles configured")
		}
		cfg, err := c.profiles.Get(args[0])
		if err != nil {
			return "", err
		}
		c.state.Set(sessionID, cfg)
		return c.switched(sessionID), nil
	default:
		provider := core.ProviderID(strings.ToLower(args[0]))
		if !c.isKnown(provider) {
			return "", fmt.Errorf("unsupported provider: %s", args[0])
		}
		cfg := c.state.Defaults().Override(core.ProviderConfig{Provider: provider, Model: args[1]})
		c.state.Set(sessionID, cfg)
		return c.switched(sessionID), nil
	}
}

func (c *ProviderCommand) show(sessionID string) string {
	cfg := c.state.Get(sessionID)
	sections := []string{
		c.formatter.Info("Current Provider"),
		c.formatter.Label("Provider", string(cfg.Provider)),
		c.formatter.Label("Model", cfg.Model),
		c.formatter.Usage("/provider <provider> <model> | /provider <profile> | /provider reset"),
	}
	if c.profiles != nil {
		if names := c.profiles.Names(); len(names) > 0 {
			sections = append(sections, c.formatter.Label("Profiles", strings.Join(names, ", ")))
		}
	}
	return c.formatter.Combine(sections...)
}

func (c *ProviderCommand) switched(sessionID string) string {
	cfg := c.state.Get(sessionID)
	return c.formatter.Success(fmt.Sprintf("Using %s/%s", cfg.Provider, cfg.Model))
}

func (c *ProviderCommand) isKnown(id core.ProviderID) bool {
	for _, k := range c.known {
		if k == id {
			return true
		}
	}
	return false
}

package cli

import (
	"context"
	"testing"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/service/chat"
	"github.com/sandevgo/ragway/internal/service/command"
	"github.com/sandevgo/ragway/internal/service/state"
	"github.com/sandevgo/ragway/internal/storage/memstore"
	"github.com/stretchr/testify/assert"
)

type scriptedGenerator struct {
	err error
}

func (g scriptedGenerator) Generate(_ context.Context, req core.GenerationRequest) (core.GenerationResult, error) {
	if g.err != nil {
		return core.GenerationResult{}, g.err
	}
	return core.GenerationResult{Text: "**Paris** is the capital.", Provider: req.ProviderConfig.Provider}, nil
}

func newTestReadLine(gen scriptedGenerator) *ReadLine {
	svc := chat.NewService(memstore.New(), gen, nil, 0)
	sel := state.NewProviderSelection(core.ProviderConfig{Provider: core.ProviderOllama, Model: "llama2"})
	router := command.New(command.NewCommands(svc, sel, nil, []core.ProviderID{core.ProviderOllama}))
	return &ReadLine{chat: svc, selection: sel, router: router, sessionID: DefaultSessionID}
}

func TestHandleLine(t *testing.T) {
	r := newTestReadLine(scriptedGenerator{})
	ctx := context.Background()

	out, quit := r.handleLine(ctx, "   ")
	assert.Empty(t, out)
	assert.False(t, quit)

	out, _ = r.handleLine(ctx, "What is the capital of France?")
	assert.Equal(t, "*Paris* is the capital.", out)

	out, _ = r.handleLine(ctx, "/history")
	assert.Contains(t, out, "What is the capital of France?")

	_, quit = r.handleLine(ctx, "exit")
	assert.True(t, quit)
}

func TestHandleLine_ProviderError(t *testing.T) {
	r := newTestReadLine(scriptedGenerator{
		err: core.NewProviderError(core.KindUnreachable, core.ProviderOllama, "cannot connect to ollama: connection refused"),
	})

	out, quit := r.handleLine(context.Background(), "hello")
	assert.False(t, quit)
	assert.Equal(t, "Error: ProviderUnreachable: cannot connect to ollama: connection refused", out)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/service/chat"
	"github.com/sandevgo/ragway/pkg/conv"
	"github.com/sandevgo/ragway/pkg/log"
)

const DefaultSessionID = "cli-local"

type ChatService interface {
	Send(ctx context.Context, req core.GenerationRequest) (chat.Reply, error)
}

type ProviderSelector interface {
	Get(sessionID string) core.ProviderConfig
}

// ReadLine is an interactive chat on the terminal. Slash commands go to the
// router, everything else is sent to the chat service.
type ReadLine struct {
	chat      ChatService
	selection ProviderSelector
	router    core.CmdRouter
	sessionID string
	rl        *readline.Instance
}

func NewReadLine(runtimePath, sessionID string, chat ChatService, selection ProviderSelector, router core.CmdRouter) (*ReadLine, error) {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(runtimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		chat:      chat,
		selection: selection,
		router:    router,
		sessionID: sessionID,
		rl:        rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("session", r.sessionID).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Msg("chat started, type 'exit' to quit")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		out, quit := r.handleLine(ctx, line)
		if quit {
			return nil
		}
		if out != "" {
			fmt.Fprintln(r.rl.Stdout(), out)
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

func (r *ReadLine) handleLine(ctx context.Context, line string) (string, bool) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return "", false
	case "exit", "quit":
		return "", true
	}

	if reply, handled := r.router.Execute(ctx, r.sessionID, line); handled {
		return render(reply), false
	}

	reply, err := r.chat.Send(ctx, core.GenerationRequest{
		RawMessage:     line,
		SessionID:      r.sessionID,
		ProviderConfig: r.selection.Get(r.sessionID),
	})
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("chat send failed")
		var pe *core.ProviderError
		if errors.As(err, &pe) {
			return fmt.Sprintf("Error: %s: %s", pe.Kind, pe.Message), false
		}
		return fmt.Sprintf("Error: %v", err), false
	}
	return render(reply.Text), false
}

func render(md string) string {
	return strings.TrimSpace(conv.MarkdownToText(md))
}

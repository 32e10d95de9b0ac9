package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/service/memory"
	"github.com/sandevgo/ragway/pkg/log"
)

type ContextRetriever interface {
	Retrieve(ctx context.Context, query, sessionID string, limit int) core.ContextBundle
}

type ContextFormatter interface {
	Format(bundle core.ContextBundle) string
}

type Options struct {
	// ContextLimit is the maximum number of prior pairs per prompt.
	ContextLimit int
}

// Orchestrator turns one user message into one provider call.
type Orchestrator struct {
	retriever ContextRetriever
	formatter ContextFormatter
	generator core.TextGenerator
	limit     int
	now       func() time.Time
}

func New(retriever ContextRetriever, formatter ContextFormatter, generator core.TextGenerator, opts Options) *Orchestrator {
	limit := opts.ContextLimit
	if limit <= 0 {
		limit = core.DefaultContextLimit
	}
	if formatter == nil {
		formatter = memory.NewFormatter(memory.DefaultMaxPairChars)
	}
	return &Orchestrator{
		retriever: retriever,
		formatter: formatter,
		generator: generator,
		limit:     limit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate gathers context, composes the prompt and calls the selected
// provider exactly once. Errors are *core.ProviderError values.
func (o *Orchestrator) Generate(ctx context.Context, req core.GenerationRequest) (core.GenerationResult, error) {
	logger := log.FromCtx(ctx).With().
		Str("session", req.SessionID).
		Str("provider", string(req.ProviderConfig.Provider)).
		Str("model", req.ProviderConfig.Model).
		Logger()

	message := strings.TrimSpace(req.RawMessage)
	if message == "" {
		err := core.NewProviderError(core.KindValidation, req.ProviderConfig.Provider, "message is required")
		logger.Debug().Str("state", "failed").Str("kind", string(err.Kind)).Msg("generation")
		return core.GenerationResult{}, err
	}

	logger.Debug().Str("state", "context_gathering").Msg("generation")
	bundle := o.retriever.Retrieve(ctx, message, req.SessionID, o.limit)
	prompt := ComposePrompt(o.formatter.Format(bundle), message)

	logger.Debug().
		Str("state", "generating").
		Int("pairs", len(bundle)).
		Int("prompt_len", len(prompt)).
		Msg("generation")
	text, err := o.generator.Generate(ctx, req.ProviderConfig, prompt)
	if err != nil {
		logger.Debug().Str("state", "failed").Str("kind", string(core.KindOf(err))).Msg("generation")
		return core.GenerationResult{}, err
	}

	logger.Debug().Str("state", "succeeded").Msg("generation")
	return core.GenerationResult{
		Text:      text,
		Provider:  req.ProviderConfig.Provider,
		Model:     req.ProviderConfig.Model,
		Timestamp: o.now(),
	}, nil
}

// ComposePrompt prepends the formatted context, when any, to the message.
func ComposePrompt(formattedContext, message string) string {
	if formattedContext == "" {
		return message
	}
	return formattedContext +
		"\n\nCurrent user message: " + message +
		"\n\nPlease provide a helpful response based on the context above and the current message."
}

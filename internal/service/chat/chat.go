package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/metrics"
	"github.com/sandevgo/ragway/pkg/log"
)

const DefaultHistoryLimit = 50

type Generator interface {
	Generate(ctx context.Context, req core.GenerationRequest) (core.GenerationResult, error)
}

type Reply struct {
	Text      string          `json:"response"`
	SessionID string          `json:"sessionId"`
	Timestamp time.Time       `json:"timestamp"`
	Provider  core.ProviderID `json:"provider"`
	Model     string          `json:"model"`
}

// Service owns the request lifecycle around generation: it persists both
// sides of the exchange and exposes session history.
type Service struct {
	store        core.MessageWriter
	generator    Generator
	metrics      *metrics.Recorder
	historyLimit int
}

func NewService(store core.MessageWriter, generator Generator, rec *metrics.Recorder, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Service{
		store:        store,
		generator:    generator,
		metrics:      rec,
		historyLimit: historyLimit,
	}
}

// Send stores the user message, generates a reply and stores it. Generation
// failures come back as *core.ProviderError; storage failures are wrapped
// plain errors.
func (s *Service) Send(ctx context.Context, req core.GenerationRequest) (Reply, error) {
	started := time.Now()
	provider := string(req.ProviderConfig.Provider)

	req.RawMessage = strings.TrimSpace(req.RawMessage)
	req.SessionID = sessionOrDefault(req.SessionID)

	if req.RawMessage == "" {
		err := core.NewProviderError(core.KindValidation, req.ProviderConfig.Provider, "message is required")
		s.metrics.Observe(provider, string(err.Kind), time.Since(started))
		return Reply{}, err
	}

	logger := log.FromCtx(ctx).With().Str("session", req.SessionID).Logger()

	if _, err := s.store.AddMessage(ctx, core.StoredMessage{
		SessionID: req.SessionID,
		Role:      core.RoleUser,
		Content:   req.RawMessage,
	}); err != nil {
		s.metrics.Observe(provider, "StoreError", time.Since(started))
		return Reply{}, fmt.Errorf("failed to save user message: %w", err)
	}

	res, err := s.generator.Generate(ctx, req)
	if err != nil {
		kind := core.KindOf(err)
		if kind == "" {
			kind = "InternalError"
		}
		s.metrics.Observe(provider, string(kind), time.Since(started))
		logger.Warn().Err(err).Str("provider", provider).Msg("generation failed")
		return Reply{}, err
	}

	saved, err := s.store.AddMessage(ctx, core.StoredMessage{
		SessionID: req.SessionID,
		Role:      core.RoleAssistant,
		Content:   res.Text,
	})
	if err != nil {
		s.metrics.Observe(provider, "StoreError", time.Since(started))
		return Reply{}, fmt.Errorf("failed to save assistant message: %w", err)
	}

	s.metrics.Observe(provider, metrics.OutcomeSuccess, time.Since(started))
	logger.Debug().Str("provider", provider).Dur("took", time.Since(started)).Msg("reply stored")

	return Reply{
		Text:      res.Text,
		SessionID: req.SessionID,
		Timestamp: saved.Timestamp,
		Provider:  res.Provider,
		Model:     res.Model,
	}, nil
}

// History returns the last limit messages of the session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]core.StoredMessage, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	msgs, err := s.store.History(ctx, sessionOrDefault(sessionID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	if msgs == nil {
		msgs = []core.StoredMessage{}
	}
	return msgs, nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) (int64, error) {
	n, err := s.store.ClearSession(ctx, sessionOrDefault(sessionID))
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return n, nil
}

func sessionOrDefault(id string) string {
	if id = strings.TrimSpace(id); id == "" {
		return core.DefaultSessionID
	}
	return id
}

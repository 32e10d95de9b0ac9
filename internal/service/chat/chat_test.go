package chat

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/metrics"
	"github.com/sandevgo/ragway/internal/storage/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	got  core.GenerationRequest
	text string
	err  error
}

func (g *stubGenerator) Generate(_ context.Context, req core.GenerationRequest) (core.GenerationResult, error) {
	g.got = req
	if g.err != nil {
		return core.GenerationResult{}, g.err
	}
	return core.GenerationResult{Text: g.text, Provider: req.ProviderConfig.Provider, Model: req.ProviderConfig.Model}, nil
}

var ollama = core.ProviderConfig{Provider: core.ProviderOllama, Model: "llama2"}

func TestService_SendPersistsBothSides(t *testing.T) {
	store := memstore.New()
	gen := &stubGenerator{text: "Paris."}
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	svc := NewService(store, gen, rec, 0)
	ctx := context.Background()

	reply, err := svc.Send(ctx, core.GenerationRequest{RawMessage: "  Capital of France?  ", ProviderConfig: ollama})
	require.NoError(t, err)

	assert.Equal(t, "Paris.", reply.Text)
	assert.Equal(t, core.DefaultSessionID, reply.SessionID)
	assert.Equal(t, core.ProviderOllama, reply.Provider)
	assert.False(t, reply.Timestamp.IsZero())
	assert.Equal(t, "Capital of France?", gen.got.RawMessage)

	history, err := svc.History(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role)
	assert.Equal(t, "Capital of France?", history[0].Content)
	assert.Equal(t, core.RoleAssistant, history[1].Role)
	assert.Equal(t, "Paris.", history[1].Content)


	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Result().Body)
	assert.Contains(t, string(body), `ragway_generations_total{outcome="success",provider="ollama"} 1`)
}

func TestService_SendBlankMessage(t *testing.T) {
	store := memstore.New()
	gen := &stubGenerator{}
	svc := NewService(store, gen, nil, 0)

	_, err := svc.Send(context.Background(), core.GenerationRequest{RawMessage: " ", ProviderConfig: ollama})
	assert.True(t, errors.Is(err, core.ErrValidation))

	history, err := svc.History(context.Background(), core.DefaultSessionID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestService_SendGenerationFailureKeepsUserMessage(t *testing.T) {
	store := memstore.New()
	genErr := core.NewProviderError(core.KindUnreachable, core.ProviderOllama, "cannot connect to ollama")
	svc := NewService(store, &stubGenerator{err: genErr}, nil, 0)

	_, err := svc.Send(context.Background(), core.GenerationRequest{RawMessage: "hi", SessionID: "s1", ProviderConfig: ollama})
	assert.Same(t, genErr, err)

	history, err := svc.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, core.RoleUser, history[0].Role)
}

func TestService_HistoryLimitAndClear(t *testing.T) {
	store := memstore.New()
	svc := NewService(store, &stubGenerator{text: "ok"}, nil, 3)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		_, err := svc.Send(ctx, core.GenerationRequest{RawMessage: msg, SessionID: "s1", ProviderConfig: ollama})
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "ok", history[0].Content)
	assert.Equal(t, "three", history[1].Content)

	n, err := svc.Clear(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	history, err = svc.History(ctx, "s1", 10)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/service/chat"
	"github.com/sandevgo/ragway/pkg/log"
)

type ChatService interface {
	Send(ctx context.Context, req core.GenerationRequest) (chat.Reply, error)
	History(ctx context.Context, sessionID string, limit int) ([]core.StoredMessage, error)
	Clear(ctx context.Context, sessionID string) (int64, error)
}

type Handler struct {
	chat     ChatService
	defaults core.ProviderConfig
	metrics  http.Handler
}

// NewHandler serves the chat API. defaults applies to requests without a
// modelConfig; metrics may be nil.
func NewHandler(chat ChatService, defaults core.ProviderConfig, metrics http.Handler) *Handler {
	return &Handler{chat: chat, defaults: defaults, metrics: metrics}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat/message", h.handleMessage)
	mux.HandleFunc("GET /api/chat/history", h.handleHistory)
	mux.HandleFunc("DELETE /api/chat/history", h.handleClear)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
	return mux
}

type messageRequest struct {
	Message     string               `json:"message"`
	SessionID   string               `json:"sessionId"`
	ModelConfig *core.ProviderConfig `json:"modelConfig"`
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, string(core.KindValidation), "invalid JSON body")
		return
	}

	cfg := h.defaults
	if req.ModelConfig != nil {
		cfg = *req.ModelConfig
	}

	reply, err := h.chat.Send(r.Context(), core.GenerationRequest{
		RawMessage:     req.Message,
		SessionID:      req.SessionID,
		ProviderConfig: cfg,
	})
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to process chat message")
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

type historyResponse struct {
	Messages  []core.StoredMessage `json:"messages"`
	SessionID string               `json:"sessionId"`
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionOrDefault(r.URL.Query().Get("sessionId"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, string(core.KindValidation), "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	msgs, err := h.chat.History(r.Context(), sessionID, limit)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to fetch chat history")
		writeError(w, http.StatusInternalServerError, "InternalError", "Failed to fetch chat history")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Messages: msgs, SessionID: sessionID})
}

type clearRequest struct {
	SessionID string `json:"sessionId"`
}

type clearResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Deleted   int64  `json:"deleted"`
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, string(core.KindValidation), "invalid JSON body")
		return
	}
	sessionID := sessionOrDefault(req.SessionID)

	n, err := h.chat.Clear(r.Context(), sessionID)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to clear chat history")
		writeError(w, http.StatusInternalServerError, "InternalError", "Failed to clear chat history")
		return
	}

	writeJSON(w, http.StatusOK, clearResponse{
		Message:   "Chat history cleared successfully",
		SessionID: sessionID,
		Deleted:   n,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   core.RagwayVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func sessionOrDefault(id string) string {
	if id == "" {
		return core.DefaultSessionID
	}
	return id
}

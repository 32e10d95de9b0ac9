package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/service/chat"
	"github.com/sandevgo/ragway/pkg/log"
)

const defaultHistoryLimit = 20

type ChatService interface {
	Send(ctx context.Context, req core.GenerationRequest) (chat.Reply, error)
	History(ctx context.Context, sessionID string, limit int) ([]core.StoredMessage, error)
}

// Server exposes the gateway as MCP tools over stdio.
type Server struct {
	chat     ChatService
	defaults core.ProviderConfig
	mcp      *server.MCPServer
}

func New(chat ChatService, defaults core.ProviderConfig) *Server {
	s := &Server{
		chat:     chat,
		defaults: defaults,
		mcp: server.NewMCPServer(
			strings.ToLower(core.RagwayName),
			core.RagwayVersion,
			server.WithToolCapabilities(false),
		),
	}

	s.mcp.AddTool(mcp.NewTool("generate",
		mcp.WithDescription("Answer a message with the configured provider, grounded on earlier exchanges of the session"),
		mcp.WithString("message", mcp.Required(), mcp.Description("User message")),
		mcp.WithString("session_id", mcp.Description("Conversation to read context from and append to")),
		mcp.WithString("provider", mcp.Description("ollama, openai, anthropic, google or custom")),
		mcp.WithString("model", mcp.Description("Model name for the provider")),
		mcp.WithString("api_key", mcp.Description("Credential; falls back to the configured one for the same provider")),
		mcp.WithString("api_url", mcp.Description("Endpoint override")),
	), s.handleGenerate)

	s.mcp.AddTool(mcp.NewTool("history",
		mcp.WithDescription("List the latest messages of a session, oldest first"),
		mcp.WithString("session_id", mcp.Description("Conversation id")),
		mcp.WithNumber("limit", mcp.Description("How many messages to return")),
	), s.handleHistory)

	return s
}

// Serve blocks reading JSON-RPC from in until ctx is done or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	log.FromCtx(ctx).Info().Msg("serving mcp over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", core.KindValidation, err.Error())), nil
	}

	reply, err := s.chat.Send(ctx, core.GenerationRequest{
		RawMessage:     message,
		SessionID:      req.GetString("session_id", ""),
		ProviderConfig: s.providerConfig(req),
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("mcp generate failed")
		return mcp.NewToolResultError(errorText(err)), nil
	}
	return mcp.NewToolResultText(reply.Text), nil
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		return mcp.NewToolResultError(fmt.Sprintf("%s: limit must be a positive integer", core.KindValidation)), nil
	}

	msgs, err := s.chat.History(ctx, req.GetString("session_id", ""), limit)
	if err != nil {
		return mcp.NewToolResultError(errorText(err)), nil
	}

	data, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// providerConfig overlays tool arguments on the defaults.
func (s *Server) providerConfig(req mcp.CallToolRequest) core.ProviderConfig {
	return s.defaults.Override(core.ProviderConfig{
		Provider:   core.ProviderID(strings.ToLower(req.GetString("provider", ""))),
		Model:      req.GetString("model", ""),
		Credential: req.GetString("api_key", ""),
		Endpoint:   req.GetString("api_url", ""),
	})
}

func errorText(err error) string {
	var pe *core.ProviderError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s: %s", pe.Kind, pe.Message)
	}
	return "InternalError: the request could not be completed"
}

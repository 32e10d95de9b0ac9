package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sandevgo/ragway/pkg/log"
)

// Server runs the chat API as a srv.Service.
type Server struct {
	srv *http.Server
}

func NewServer(ctx context.Context, addr string, h *Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           withRequestContext(h.Routes(), log.FromCtx(ctx)),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// generation may take up to the provider timeout
			WriteTimeout:   90 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20,
			BaseContext:    func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("starting http api")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

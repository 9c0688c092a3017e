package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/midiaexterior/gateway/internal/config"
	"github.com/midiaexterior/gateway/internal/observability"
)

// Server wraps http.Server with the assembled gateway handler.
type Server struct {
	server *http.Server
	logger observability.Logger
}

// NewServer creates an HTTP server for the gateway.
func NewServer(cfg config.ServerConfig, gw *Gateway, logger observability.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      gw.Handler(),
			ReadTimeout:  cfg.ReadTimeout.Duration(),
			WriteTimeout: cfg.WriteTimeout.Duration(),
			IdleTimeout:  cfg.IdleTimeout.Duration(),
		},
		logger: logger,
	}
}

// Run starts serving and blocks until the server stops.
func (s *Server) Run() error {
	s.logger.Info("gateway listening",
		observability.String("addr", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down gateway")
	return s.server.Shutdown(ctx)
}

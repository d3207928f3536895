// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the handler in an http.Server with sane timeouts.
type Server struct {
	handler    *Handler
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds a server listening on port.
func NewServer(port int, handler *Handler, logger *zap.Logger) *Server {
	return &Server{
		handler: handler,
		logger:  logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      handler.Router(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
)

// Server wraps the HTTP server with lifecycle management
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates the API server around a fully wired router
func NewServer(router http.Handler, cfg *config.Config, logger *logrus.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start serves in the background; the caller shuts down via Shutdown
func (s *Server) Start() {
	go func() {
		if s.logger != nil {
			s.logger.WithField("addr", s.server.Addr).Info("API server starting")
		}
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.WithError(err).Error("API server error")
			}
		}
	}()
}

// Shutdown drains in-flight requests with a bounded grace period
func (s *Server) Shutdown() error {
	if s.logger != nil {
		s.logger.Info("API server shutting down")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

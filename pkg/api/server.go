// Package api provides the HTTP server exposing the shared directory and
// the session endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ezshare/ezshare/internal/logger"
)

// Server provides the ezshare HTTP server.
//
// The server supports graceful shutdown with configurable timeout.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once
}

// NewServer creates a new HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving
// requests.
func NewServer(config APIConfig, deps Deps) *Server {
	config.ApplyDefaults()

	router := NewRouter(config, deps)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: router,

		// No ReadTimeout or WriteTimeout: downloads and uploads run for
		// as long as the transfer takes. Header reads and per-endpoint
		// timeouts bound everything else.
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
	}
}

// Start starts the HTTP server and blocks until the context is cancelled or
// an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and
// returns.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", s.config.Port)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server shutdown signal received")
		// Don't reuse the cancelled ctx, it would abort shutdown immediately.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the server.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("Server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			logger.Error("Server shutdown error", "error", err)
		} else {
			logger.Info("Server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}

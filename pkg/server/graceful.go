// Package server wraps net/http with graceful shutdown for the validation
// service.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/archval/pkg/logging"
)

// GracefulServer wraps an HTTP server with graceful shutdown capabilities.
// In-flight validation runs are given a bounded drain window before the
// process exits.
type GracefulServer struct {
	server       *http.Server
	log          logging.Logger
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewGracefulServer creates a new graceful HTTP server.
func NewGracefulServer(addr string, handler http.Handler, log logging.Logger) *GracefulServer {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		log:        log.With(logging.Component("server")),
		shutdownCh: make(chan struct{}),
	}
}

// Start runs the server until it is shut down. SIGINT and SIGTERM trigger a
// graceful shutdown.
func (gs *GracefulServer) Start() error {
	go gs.handleSignals()

	gs.log.Info("Starting HTTP server", logging.String("addr", gs.server.Addr))
	if err := gs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown initiates a graceful shutdown, waiting up to timeout for in-flight
// requests to finish.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.log.Info("Initiating graceful shutdown", logging.Duration("timeout", timeout))
		if shutdownErr := gs.server.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
			gs.log.Error("Error during shutdown", logging.Error(shutdownErr))
		} else {
			gs.log.Info("Server shutdown complete")
		}
	})
	return err
}

func (gs *GracefulServer) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	gs.log.Info("Received signal, starting graceful shutdown", logging.String("signal", sig.String()))
	if err := gs.Shutdown(30 * time.Second); err != nil {
		os.Exit(1)
	}
}

// IsShuttingDown returns true if shutdown has been initiated.
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated.
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// Package app provides application lifecycle management for the sync server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/composable-com/ct-connect-akeneo/internal/config"
)

// SyncApp encapsulates all components needed to run the sync server.
// It provides lifecycle management and graceful shutdown capabilities.
type SyncApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the application components (HTTP server and background sync).
// This method blocks until the HTTP server stops or encounters an error.
func (app *SyncApp) Start() error {
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.Serve(listener)
}

// Serve is Start on an existing listener.
func (app *SyncApp) Serve(listener net.Listener) error {
	if c := app.components.SyncCoordinator; c != nil {
		go func() {
			if err := c.Start(app.ctx); err != nil {
				slog.Error("Sync coordinator failed", "error", err)
			}
		}()
	}

	slog.Info("Server listening", "address", listener.Addr().String())
	if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application with the given timeout.
// In-flight sync runs are parked before the HTTP server shuts down.
func (app *SyncApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop HTTP first so no new triggers arrive while runs wind down
	httpErr := app.httpServer.Shutdown(shutdownCtx)

	if c := app.components.SyncCoordinator; c != nil {
		if err := c.Stop(); err != nil {
			slog.Error("Failed to stop sync coordinator", "error", err)
		}
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if httpErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", httpErr)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// Close releases the store and cancels the application context without
// touching the HTTP server, for commands that never started it.
func (app *SyncApp) Close() {
	if app.cancelFunc != nil {
		app.cancelFunc()
	}
}

// GetConfig returns the application configuration
func (app *SyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *SyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired components
func (app *SyncApp) Components() *AppComponents {
	return app.components
}

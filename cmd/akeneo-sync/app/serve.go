package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/composable-com/ct-connect-akeneo/internal/app"
	"github.com/composable-com/ct-connect-akeneo/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync server",
	Long: `Start the HTTP server the admin UI and schedulers talk to, together with the
background trigger that works on scheduled and resumable jobs.

Configuration comes from the file given with --config, from .env files and
from AKENEO_SYNC_* environment variables. See examples/ for sample files.`,
	RunE: runServe,
}

const (
	// Long enough for an in-flight page to finish and be checkpointed
	defaultGracefulTimeout = 60 * time.Second
)

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	address := viper.GetString("address")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("Loaded configuration",
		"storage", cfg.GetStorageType(),
		"project", cfg.Commercetools.ProjectKey,
		"coordinator", cfg.IsCoordinatorEnabled())

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	syncApp, err := app.NewSyncApp(ctx,
		app.WithConfig(cfg),
		app.WithAddress(address),
		app.WithTelemetry(tel),
	)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- syncApp.Start()
	}()

	// Wait for interrupt signal or a server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	return syncApp.Stop(defaultGracefulTimeout)
}

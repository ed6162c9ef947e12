package app

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/composable-com/ct-connect-akeneo/internal/app"
	"github.com/composable-com/ct-connect-akeneo/internal/config"
	pkgsync "github.com/composable-com/ct-connect-akeneo/internal/sync"
	"github.com/composable-com/ct-connect-akeneo/internal/sync/coordinator"
)

var runCmd = &cobra.Command{
	Use:   "run <full|delta>",
	Short: "Work on one sync job in the foreground",
	Long: `Process a sync job once, the same way a scheduler trigger does: a scheduled
job starts from scratch, a resumable one continues from its cursor, and anything
else is left alone. With --launch the job is scheduled first.

Interrupting the command parks the run so that the next one resumes it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("launch", false, "Schedule the job first, as the admin UI start action does")
}

func runRun(cmd *cobra.Command, args []string) error {
	kind, err := parseJobKind(args[0])
	if err != nil {
		return err
	}
	launch, err := cmd.Flags().GetBool("launch")
	if err != nil {
		return fmt.Errorf("failed to get launch flag: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Runs happen here, not in a background trigger
	disabled := false
	cfg.Coordinator = &config.CoordinatorConfig{Enabled: &disabled}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncApp, err := app.NewSyncApp(ctx, app.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	defer syncApp.Close()
	components := syncApp.Components()

	if launch {
		state, err := components.SyncService.LaunchIfReady(ctx, kind)
		if err != nil {
			return err
		}
		slog.Info("Job launched", "kind", kind, "status", state)
	}

	ctx = coordinator.ContextWithRunID(ctx, uuid.NewString())
	result, err := components.Processor.Process(ctx, kind)
	if err != nil {
		return fmt.Errorf("%s sync failed: %w", kind, err)
	}

	out := cmd.OutOrStdout()
	if !result.Ran() {
		_, err = fmt.Fprintf(out, "%s sync not run: %s\n", kind, result.Reason)
		return err
	}
	s := result.Summary
	if s == nil {
		s = &pkgsync.Summary{}
	}
	_, err = fmt.Fprintf(out, "%s sync %s: %d pages, %d items, %d failed, completed=%t\n",
		kind, result.Reason, s.Pages, s.Items, len(s.Failed), s.Completed)
	return err
}

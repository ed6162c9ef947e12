package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/composable-com/ct-connect-akeneo/internal/app"
)

var registerCmd = &cobra.Command{
	Use:   "register [service-url]",
	Short: "Record where the connector is deployed",
	Long: `Create the sync configuration record after a deployment, pointing it at the
service URL. A mapping configuration saved earlier is kept. The URL defaults to
serviceURL from the configuration (CONNECT_SERVICE_URL).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		url := cfg.ServiceURL
		if len(args) == 1 {
			url = args[0]
		}
		if url == "" {
			return errors.New("a service URL is required")
		}

		svc, cleanup, err := app.OpenService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := svc.Register(cmd.Context(), url); err != nil {
			return err
		}
		slog.Info("Connector registered", "url", url)
		return nil
	},
}

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Delete every sync record before an undeploy",
	Long: `Delete the full sync, delta sync and configuration records. The mapping
configuration is lost. Deletion continues past individual failures.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		yes, err := cmd.Flags().GetBool("yes")
		if err != nil {
			return fmt.Errorf("failed to get yes flag: %w", err)
		}
		ok, err := confirm(cmd, yes, "This deletes all job status and the mapping configuration.")
		if err != nil {
			return err
		}
		if !ok {
			slog.Info("Teardown cancelled by user")
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, cleanup, err := app.OpenService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := svc.Teardown(cmd.Context()); err != nil {
			return err
		}
		slog.Info("Sync records deleted")
		return nil
	},
}

func init() {
	teardownCmd.Flags().BoolP("yes", "y", false, "Answer yes to all questions")
}

// Package app provides the command line of the sync.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/composable-com/ct-connect-akeneo/internal/config"
	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/versions"
)

var rootCmd = &cobra.Command{
	Use:               "akeneo-sync",
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	Short:             "Akeneo to commercetools product sync",
	Long: `akeneo-sync copies products from an Akeneo PIM into a commercetools project.
It runs full and delta sync jobs whose progress is kept in a durable store, and
serves the endpoints the admin UI drives those jobs through.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			slog.Error("Error displaying help", "error", err)
		}
	},
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format)")
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Environment files to load before reading overrides")

	for _, name := range []string{"config", "env-file"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
		}
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(teardownCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versions.GetVersionInfo()
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}

		if format == "json" {
			output, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format version info: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "akeneo-sync %s (commit %s, built %s, %s %s)\n",
			info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
		return err
	},
}

func init() {
	versionCmd.Flags().String("format", "", "Output format (json)")
}

// loadConfig reads the configuration named by the persistent flags
func loadConfig() (*config.Config, error) {
	opts := []config.Option{config.WithDotEnv(viper.GetStringSlice("env-file")...)}
	if path := viper.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// parseJobKind accepts "full" or "delta"
func parseJobKind(raw string) (jobstatus.Kind, error) {
	kind, err := jobstatus.ParseKind(raw)
	if err != nil {
		return "", err
	}
	if kind == jobstatus.KindAll {
		return "", fmt.Errorf("%q is not a job, use full or delta", raw)
	}
	return kind, nil
}

// confirm asks the user unless yes is set
func confirm(cmd *cobra.Command, yes bool, prompt string) (bool, error) {
	if yes {
		return true, nil
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s Continue? (yes/no): ", prompt); err != nil {
		return false, err
	}
	var response string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &response); err != nil {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	return response == "yes" || response == "y", nil
}

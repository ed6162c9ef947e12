package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/composable-com/ct-connect-akeneo/internal/app"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the mapping configuration",
	Long:  `Validate, save and show the mapping configuration the sync jobs read.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a mapping configuration file without saving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readMappingFile(args[0])
		if err != nil {
			return err
		}
		if err := mapping.Validate(raw); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
		return err
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Validate and store a mapping configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readMappingFile(args[0])
		if err != nil {
			return err
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

		if err := svc.SaveConfig(cmd.Context(), raw); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Mapping configuration saved")
		return err
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored mapping configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, cleanup, err := app.OpenService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := svc.LoadConfig(cmd.Context())
		if err != nil {
			return err
		}
		if rec == nil || !rec.HasConfig() {
			return errors.New("no mapping configuration saved")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(rec.Config))
		return err
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configSaveCmd)
	configCmd.AddCommand(configShowCmd)
}

func readMappingFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return raw, nil
}

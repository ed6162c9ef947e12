package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/composable-com/ct-connect-akeneo/database"
	"github.com/composable-com/ct-connect-akeneo/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool",
	Long:  `Database migration tool for the postgres record store. Use with 'up' or 'down' subcommands.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending database migrations",
	Long: `Apply all pending database migrations to bring the schema up to date.
The connection parameters come from storage.database in the configuration.`,
	Args: cobra.NoArgs,
	RunE: runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Migrate the database down",
	Long: `Migrate the database schema down by reverting migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Migrate down by 1 step
  akeneo-sync migrate down --config config.yaml --num-steps 1 --yes

  # Migrate down all the way (WARNING: destroys all job records)
  akeneo-sync migrate down --config config.yaml --yes`,
	Args: cobra.NoArgs,
	RunE: runMigrateDown,
}

func init() {
	migrateCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")
	migrateDownCmd.Flags().UintP("num-steps", "n", 0, "Number of steps to migrate (0 = all)")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

// migrationTarget returns the connection string of the postgres store
func migrationTarget() (*config.DatabaseConfig, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	if cfg.GetStorageType() != config.StorageTypePostgres || cfg.Storage.Database == nil {
		return nil, "", errors.New("migrations only apply to postgres storage")
	}

	connString, err := cfg.Storage.Database.GetConnectionString()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build connection string: %w", err)
	}
	return cfg.Storage.Database, connString, nil
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}

	db, connString, err := migrationTarget()
	if err != nil {
		return err
	}

	ok, err := confirm(cmd, yes, fmt.Sprintf("About to apply migrations to %s@%s:%d/%s.",
		db.User, db.Host, db.Port, db.Database))
	if err != nil {
		return err
	}
	if !ok {
		slog.Info("Migration cancelled by user")
		return nil
	}

	slog.Info("Applying database migrations")
	if err := database.MigrateUp(connString); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logVersion(connString)
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}
	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}

	_, connString, err := migrationTarget()
	if err != nil {
		return err
	}

	prompt := "WARNING: This will revert ALL migrations and delete every job record."
	if numSteps > 0 {
		prompt = fmt.Sprintf("About to revert %d migration(s).", numSteps)
	}
	ok, err := confirm(cmd, yes, prompt)
	if err != nil {
		return err
	}
	if !ok {
		slog.Info("Migration cancelled by user")
		return nil
	}

	if err := database.MigrateDown(connString, int(numSteps)); err != nil {
		return err
	}

	logVersion(connString)
	return nil
}

func logVersion(connString string) {
	version, dirty, err := database.GetVersion(connString)
	switch {
	case err != nil:
		slog.Warn("Unable to get migration version", "error", err)
	case dirty:
		slog.Warn("Database is in a dirty state", "version", version)
	default:
		slog.Info("Migrations applied successfully", "version", version)
	}
}

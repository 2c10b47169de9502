package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/database/postgres"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
)

// NewMigrateCmd creates the migrate command and its subcommands. Bare
// "migrate" applies every pending migration.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema of the document sink",
		Args:  cobra.NoArgs,
		RunE:  migrateUp,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  migrateUp,
		},
		newMigrateDownCmd(),
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := postgresConfig(cmd)
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationStatus(postgres.DSN(cfg.Postgres), cfg.Postgres.MigrationPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
				return nil
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.Newf(errors.ErrCodeBadRequest, "invalid version %q", args[0])
				}
				cfg, err := postgresConfig(cmd)
				if err != nil {
					return err
				}
				if err := postgres.ForceMigrationVersion(postgres.DSN(cfg.Postgres), cfg.Postgres.MigrationPath, version); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version forced to %d\n", version)
				return nil
			},
		},
	)
	return cmd
}

func newMigrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := postgresConfig(cmd)
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigration(postgres.DSN(cfg.Postgres), cfg.Postgres.MigrationPath, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func migrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := postgresConfig(cmd)
	if err != nil {
		return err
	}
	cliCtx, _ := GetCLIContext(cmd)
	if err := postgres.RunMigrations(postgres.DSN(cfg.Postgres), cfg.Postgres.MigrationPath); err != nil {
		return err
	}
	cliCtx.Logger.Info("Migrations applied",
		logging.String("host", cfg.Postgres.Host),
		logging.String("database", cfg.Postgres.DBName))
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

// postgresConfig returns the loaded config once the document sink is
// configured.
func postgresConfig(cmd *cobra.Command) (*config.Config, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	if !cliCtx.Config.PostgresEnabled() {
		return nil, errors.New(errors.ErrCodeValidation, "postgres.host is not configured")
	}
	return cliCtx.Config, nil
}

//Personal.AI order the ending

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sidirok-cf-server/internal/catalog"
	"github.com/sidirok-cf-server/internal/config"
	"github.com/sidirok-cf-server/internal/database"
	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/repository"
)

var errDatabaseDisabled = errors.New("database is disabled; set database.enabled or SIDIROK_DATABASE_ENABLED=true")

func requireDatabase(cfg *domain.Config) error {
	if !cfg.Database.Enabled {
		return errDatabaseDisabled
	}
	return nil
}

func newMigrateCmd(cli *cliContext) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database schema migrations",
	}

	withRunner := func(cmd *cobra.Command, fn func(*database.MigrationRunner) error) error {
		cfg, err := cli.loadConfig()
		if err != nil {
			return err
		}
		if err := requireDatabase(cfg); err != nil {
			return err
		}
		runner, err := database.NewMigrationRunner(config.DatabaseURL(cfg.Database), cfg.Database.MigrationsPath, cli.logger(cfg))
		if err != nil {
			return err
		}
		defer runner.Close()

		if err := fn(runner); err != nil {
			return err
		}
		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
		return nil
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, func(r *database.MigrationRunner) error {
				return r.Up(cmd.Context())
			})
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", steps)
			}
			return withRunner(cmd, func(r *database.MigrationRunner) error {
				return r.Down(cmd.Context(), steps)
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd, func(*database.MigrationRunner) error { return nil })
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)
	return migrateCmd
}

func newSeedCmd(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in symptoms, diseases and rules into the database",
		Long:  "Inserts the built-in knowledge base. Rows that already exist are left untouched, so seeding twice is safe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			if err := requireDatabase(cfg); err != nil {
				return err
			}
			logger := cli.logger(cfg)

			db, err := database.NewConnection(cmd.Context(), database.ConfigFromDomain(cfg.Database), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := repository.NewKnowledgeRepository(db.Pool, logger).Seed(cmd.Context(), catalog.Default())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d symptoms, %d diseases, %d rules\n",
				result.Symptoms, result.Diseases, result.Rules)
			return nil
		},
	}
}

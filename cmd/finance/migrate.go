package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"finance-tracker/internal/config"
	"finance-tracker/internal/database"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Long: `Bring the database schema up to date. Postgres runs the embedded SQL
migrations; sqlite is migrated from the model definitions.`,
		RunE: runMigrate,
	}

	cmd.Flags().Int("rollback", 0, "roll back this many migrations instead of migrating up (postgres only)")
	cmd.Flags().Bool("seeds", false, "load db/seeds/*.sql after migrating (postgres only, needs SEED_DATABASE=true)")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	rollback, _ := cmd.Flags().GetInt("rollback")
	seeds, _ := cmd.Flags().GetBool("seeds")

	if cfg.Database.Driver == config.DriverSQLite {
		if rollback > 0 {
			return fmt.Errorf("rollback is not supported for sqlite")
		}
		return migrateSQLite(&cfg.Database)
	}

	db, err := sql.Open("postgres", cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runner := database.NewMigrationRunner(db)
	if err := runner.WaitForDatabase(); err != nil {
		return err
	}

	if rollback > 0 {
		if err := runner.Rollback(rollback); err != nil {
			return err
		}
	} else {
		if err := runner.RunMigrations(); err != nil {
			return err
		}
		if seeds {
			if err := runner.LoadSeeds(); err != nil {
				return err
			}
		}
	}

	version, dirty, err := runner.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	slog.Info("migrations finished", "version", version, "dirty", dirty)

	return nil
}

func migrateSQLite(c *config.DatabaseConfig) error {
	db, err := database.New(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	if err := db.CreateIndexes(); err != nil {
		return err
	}

	slog.Info("sqlite schema migrated", "path", c.SQLitePath)
	return nil
}

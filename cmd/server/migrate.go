package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anyulbade/retail-insights-engine/internal/config"
	"github.com/anyulbade/retail-insights-engine/internal/database"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Manage the development fact schema",
	}

	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all migrations",
		RunE:  migrateUp,
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return database.RollbackMigrations(cfg.DatabaseURL())
		},
	}

	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			v, err := database.CurrentSchemaVersion(cfg.DatabaseURL())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v.Version, v.Dirty)
			return nil
		},
	}

	seed bool
)

func init() {
	migrateUpCmd.Flags().BoolVar(&seed, "seed", false, "load the demo fixtures after migrating")
	migrateCmd.PersistentFlags().StringVar(&database.MigrationsDir, "source", database.MigrationsDir, "migrations source URL")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func migrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setLogLevel(cfg.LogLevel)

	if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
		return err
	}
	if !seed {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL(), cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return database.SeedFixtures(ctx, pool, database.DefaultFixtures())
}

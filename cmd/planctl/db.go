package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	memcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/catalog"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres"
	pgcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/postgres/catalog"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/platform/logging"
	"github.com/yatra-labs/pilgrimage-planner-api/migrations"
)

var databaseURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending Postgres migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logger, err := logging.New("local", "info")
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		pool, err := postgres.NewPool(ctx, dsn(), postgres.PoolOptions{MaxConns: 2})
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.RunMigrations(pool, migrations.FS, logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), green("Migrations applied"))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the Postgres catalog with the contents of --catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		seed, err := memcatalog.LoadSeedFile(catalogPath)
		if err != nil {
			return err
		}
		cities, places, routes, events, err := seed.Entities()
		if err != nil {
			return fmt.Errorf("invalid catalog %s: %w", catalogPath, err)
		}

		pool, err := postgres.NewPool(ctx, dsn(), postgres.PoolOptions{MaxConns: 2})
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pgcatalog.New(pool).Replace(ctx, cities, places, routes, events); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d cities, %d places, %d routes, %d events\n",
			green("Seeded"), len(cities), len(places), len(routes), len(events))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{migrateCmd, seedCmd} {
		c.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL (defaults to $DATABASE_URL)")
	}
}

func dsn() string {
	if databaseURL != "" {
		return databaseURL
	}
	return os.Getenv("DATABASE_URL")
}

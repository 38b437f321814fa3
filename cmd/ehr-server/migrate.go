package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinicworks/ehr-system/internal/infrastructure/db/mongo"
	"github.com/clinicworks/ehr-system/internal/infrastructure/db/postgres"
	"github.com/clinicworks/ehr-system/internal/pkg/config"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the record store schema",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations (postgres) or create indexes (mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			switch cfg.StoreDriver {
			case config.DriverPostgres:
				pool, err := postgres.NewPool(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
				if err != nil {
					return err
				}
				defer pool.Close()

				count, err := postgres.NewMigrator(pool, postgres.Migrations()).Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)

			case config.DriverMongo:
				client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
				if err != nil {
					return err
				}
				defer client.Disconnect(ctx)

				if err := mongo.EnsureIndexes(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Indexes created successfully.")

			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to migrate for store driver %q.\n", cfg.StoreDriver)
			}
			return nil
		},
	})

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status (postgres only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.DriverPostgres {
				return fmt.Errorf("migrate status requires STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
			}

			pool, err := postgres.NewPool(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns, cfg.Postgres.MinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := postgres.NewMigrator(pool, postgres.Migrations()).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

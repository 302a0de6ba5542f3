package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/chatkit/chatauth/internal/config"
	"github.com/chatkit/chatauth/internal/db"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	var (
		driver     string
		connection string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	cmd.PersistentFlags().StringVar(&driver, "driver", "", "Database driver: sqlite or pgx (default: DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&connection, "dsn", "", "Connection string (default: DB_CONNECTION)")

	withDB := func(fn func(ctx context.Context, database *sqlx.DB, driver string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			d, c := config.Database()
			if driver != "" {
				d = driver
			}
			if connection != "" {
				c = connection
			}

			database, err := db.Init(d, c)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			return fn(ctx, database, d)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withDB(func(ctx context.Context, database *sqlx.DB, driver string) error {
			return db.RunMigrations(ctx, database.DB, driver)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: withDB(func(ctx context.Context, database *sqlx.DB, driver string) error {
			return db.MigrateDown(ctx, database.DB, driver)
		}),
	})

	var status *cobra.Command
	status = &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: withDB(func(ctx context.Context, database *sqlx.DB, driver string) error {
			version, err := db.MigrationVersion(ctx, database.DB, driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(status.OutOrStdout(), "schema version: %d\n", version)
			return nil
		}),
	}
	cmd.AddCommand(status)

	return cmd
}

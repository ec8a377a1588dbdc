package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selivandex/news-sentiment/internal/adapters/config"
	"github.com/selivandex/news-sentiment/internal/adapters/database"
)

func newMigrateCmd(getConfig func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	withDB := func(fn func(cmd *cobra.Command, db *database.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db, err := database.New(&getConfig().Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			return fn(cmd, db)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withDB(func(cmd *cobra.Command, db *database.DB) error {
				return database.RunMigrations(db)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: withDB(func(cmd *cobra.Command, db *database.DB) error {
				return database.RollbackMigration(db)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: withDB(func(cmd *cobra.Command, db *database.DB) error {
				v, dirty, err := database.GetMigrationVersion(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %v\n", v, dirty)
				return nil
			}),
		},
	)

	return cmd
}

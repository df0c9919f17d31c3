package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/wh40k-terms/internal/adapter/postgres"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			db, err := postgres.OpenDB(cmd.Context(), cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := postgres.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, results)
			}
			if len(results) == 0 {
				printLine(cmd, "Database is up to date")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"Version", "Source", "Duration"},
				migrationRows(results),
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			db, err := postgres.OpenDB(cmd.Context(), cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := postgres.Rollback(cmd.Context(), db)
			if err != nil {
				return err
			}
			if res == nil {
				printLine(cmd, "Nothing to roll back")
				return nil
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, res)
			}
			printLine(cmd, "rolled back %d (%s)", res.Version, res.Source)
			return nil
		},
	})

	return migrateCmd
}

func migrationRows(results []postgres.MigrationResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{fmt.Sprint(r.Version), r.Source, r.Duration})
	}
	return rows
}

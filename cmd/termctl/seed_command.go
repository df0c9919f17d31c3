package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/wh40k-terms/internal/app"
	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/seeder"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var seederConfig string
	var replace, dryRun bool
	var batchSize int

	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Load canonical entities from a YAML fixture",
		Long: "Load canonical entities from a YAML fixture. A running server picks " +
			"the new entities up when its candidate cache expires, or at once on SIGHUP.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := seeder.LoadConfig(seederConfig)
			if err != nil {
				return err
			}
			cfg.Path = args[0]
			// CLI flags override config.
			if cmd.Flags().Changed("replace") {
				cfg.Replace = replace
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize = batchSize
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			entities, err := seeder.ReadFile(cfg.Path)
			if err != nil {
				return err
			}

			if cfg.DryRun {
				return printSeedSummary(cmd, ctx, &seeder.Result{Parsed: len(entities), DryRun: true}, entities, nil)
			}

			return ctx.withServices(cmd.Context(), func(svcs *app.Services) error {
				res, err := seeder.NewPipeline(ctx.logger, svcs.Entities, svcs.TxManager, *cfg).Run(cmd.Context(), entities)
				if err != nil {
					return err
				}
				totals, err := svcs.Entities.CountByCategory(cmd.Context())
				if err != nil {
					return err
				}
				return printSeedSummary(cmd, ctx, res, entities, totals)
			})
		},
	}

	cmd.Flags().StringVar(&seederConfig, "seeder-config", "", "Path to seeder YAML config file")
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete the fixture's categories before inserting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse the fixture without touching the database")
	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "Rows per insert batch")
	return cmd
}

// printSeedSummary prints per-category fixture counts. totals holds the
// catalog size after the run and is nil for a dry run.
func printSeedSummary(cmd *cobra.Command, ctx *commandContext, res *seeder.Result, entities []domain.CandidateEntity, totals map[domain.Category]int) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, res)
	}

	counts := make(map[domain.Category]int)
	for _, e := range entities {
		counts[e.Category]++
	}
	headers := []string{"Category", "Entities"}
	aligns := []columnAlignment{alignLeft, alignRight}
	if totals != nil {
		headers = append(headers, "Catalog")
		aligns = append(aligns, alignRight)
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range seeder.Categories(entities) {
		row := []string{string(c), fmt.Sprint(counts[c])}
		if totals != nil {
			row = append(row, fmt.Sprint(totals[c]))
		}
		rows = append(rows, row)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderTable(headers, rows, aligns))

	if res.DryRun {
		printLine(cmd, "dry run: %d entities parsed, nothing written", res.Parsed)
		return nil
	}
	printLine(cmd, "%d inserted, %d deleted in %s", res.Inserted, res.Deleted, res.Duration.Round(time.Millisecond))
	return nil
}

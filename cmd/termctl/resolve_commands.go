package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/wh40k-terms/internal/app"
	"github.com/heartmarshall/wh40k-terms/internal/service/resolver"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var factions, categories []string
	var minConfidence float64

	cmd := &cobra.Command{
		Use:   "validate TERM...",
		Short: "Validate a batch of terms against the canonical entity set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := resolver.ValidateInput{Terms: args, Factions: factions, Categories: categories}
			if cmd.Flags().Changed("min-confidence") {
				input.MinConfidence = &minConfidence
			}

			return ctx.withServices(cmd.Context(), func(svcs *app.Services) error {
				out, err := svcs.Resolver.ValidateTerms(cmd.Context(), input)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}

				rows := make([][]string, 0, len(out.Results))
				for _, r := range out.Results {
					category := "-"
					if r.Category != nil {
						category = string(*r.Category)
					}
					rows = append(rows, []string{
						r.Term, orDash(r.Match), category, orDash(r.Faction),
						formatConfidence(r.Confidence), string(r.Source), fmt.Sprint(len(r.Alternates)),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Term", "Match", "Category", "Faction", "Confidence", "Source", "Alternates"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
				))
				if out.Truncated {
					printLine(cmd, "batch truncated: %d terms not validated", out.Rejected)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&factions, "faction", "f", nil, "Restrict to faction (repeatable)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Restrict to category (repeatable)")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Minimum confidence for fuzzy matches")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var categories []string
	var faction string
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Fuzzy search canonical names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(cmd.Context(), func(svcs *app.Services) error {
				results, err := svcs.Resolver.FuzzySearch(cmd.Context(), resolver.FuzzySearchInput{
					Query:      args[0],
					Categories: categories,
					Faction:    faction,
					Limit:      limit,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, results)
				}
				if len(results) == 0 {
					printLine(cmd, "No matches")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(matchHeaders, matchRows(results), matchAligns))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "Restrict to category (repeatable)")
	cmd.Flags().StringVarP(&faction, "faction", "f", "", "Restrict to one faction")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default 10, max 50)")
	return cmd
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var hints []string
	var snippet, entityType string

	cmd := &cobra.Command{
		Use:   "resolve TERM",
		Short: "Disambiguate one term with faction hints and transcript context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(cmd.Context(), func(svcs *app.Services) error {
				out, err := svcs.Resolver.ResolveTerm(cmd.Context(), resolver.ResolveInput{
					Term:           args[0],
					FactionHints:   hints,
					ContextSnippet: snippet,
					EntityType:     entityType,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}

				rows := make([][]string, 0, len(out.Candidates))
				for _, c := range out.Candidates {
					rows = append(rows, []string{
						c.Name, string(c.Category), orDash(c.Faction),
						formatConfidence(c.Confidence), formatConfidence(c.Relevance),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Name", "Category", "Faction", "Confidence", "Relevance"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				switch {
				case out.Ambiguous:
					printLine(cmd, "ambiguous: review required")
				case out.Recommendation != nil:
					printLine(cmd, "recommendation: %s", *out.Recommendation)
				default:
					printLine(cmd, "no candidates")
				}
				if out.FeedbackID != nil {
					printLine(cmd, "feedback recorded: %s", out.FeedbackID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&hints, "hint", nil, "Faction hint (repeatable)")
	cmd.Flags().StringVar(&snippet, "context", "", "Transcript snippet around the term")
	cmd.Flags().StringVar(&entityType, "type", "", "Expected entity category")
	return cmd
}

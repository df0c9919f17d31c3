package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/wh40k-terms/internal/app"
	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/service/feedback"
	"github.com/heartmarshall/wh40k-terms/pkg/ctxutil"
)

func newFeedbackCommand(ctx *commandContext) *cobra.Command {
	feedbackCmd := &cobra.Command{
		Use:   "feedback",
		Short: "Work the low-confidence review queue",
	}

	feedbackCmd.AddCommand(newFeedbackListCommand(ctx))
	feedbackCmd.AddCommand(newFeedbackResolveCommand(ctx))
	feedbackCmd.AddCommand(newFeedbackIgnoreCommand(ctx))
	feedbackCmd.AddCommand(newFeedbackStatsCommand(ctx))

	return feedbackCmd
}

func newFeedbackListCommand(ctx *commandContext) *cobra.Command {
	var status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feedback items (pending by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := feedback.ListInput{Limit: limit, Offset: offset}
			if s := strings.ToLower(strings.TrimSpace(status)); s != "all" {
				st := domain.FeedbackStatus(s)
				input.Status = &st
			}

			return ctx.withServices(cmd.Context(), func(svcs *app.Services) error {
				res, err := svcs.Feedback.List(cmd.Context(), input)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, res)
				}
				if len(res.Items) == 0 {
					printLine(cmd, "No feedback items")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Token", "Type", "Faction", "Confidence", "Status", "Top suggestion", "Created"},
					feedbackRows(res.Items),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				))
				printLine(cmd, "showing %d of %d", len(res.Items), res.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", string(domain.FeedbackStatusPending), "pending, resolved, ignored or all")
	cmd.Flags().IntVarP(&limit, "limit", "n", feedback.DefaultListLimit, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func feedbackRows(items []domain.FeedbackItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		top := "-"
		if len(it.Suggestions) > 0 {
			top = fmt.Sprintf("%s (%s)", it.Suggestions[0].Name, formatConfidence(it.Suggestions[0].Confidence))
		}
		rows = append(rows, []string{
			it.ID.String(), it.OriginalToken, string(it.EntityType), orDash(it.FactionID),
			formatConfidence(it.ConfidenceScore), string(it.Status), top,
			it.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

func newFeedbackResolveCommand(ctx *commandContext) *cobra.Command {
	var canonical, reviewer string
	var persist bool

	cmd := &cobra.Command{
		Use:   "resolve ID",
		Short: "Resolve a pending item to a canonical name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid feedback id %q", args[0])
			}

			return ctx.withServices(cmd.Context(), func(svcs *app.Services) error {
				item, err := svcs.Feedback.Resolve(reviewerCtx(cmd, reviewer), feedback.ResolveInput{
					ID:             id,
					CanonicalName:  canonical,
					PersistMapping: persist,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, item)
				}
				printLine(cmd, "%s resolved to %s", item.ID, orDash(item.ResolvedTo))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&canonical, "canonical", "", "Canonical name the token refers to")
	cmd.Flags().BoolVar(&persist, "persist", false, "Learn the token as an alias")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "Reviewer recorded on the item")
	_ = cmd.MarkFlagRequired("canonical")
	return cmd
}

func newFeedbackIgnoreCommand(ctx *commandContext) *cobra.Command {
	var reviewer string

	cmd := &cobra.Command{
		Use:   "ignore ID",
		Short: "Dismiss a pending item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid feedback id %q", args[0])
			}

			return ctx.withServices(cmd.Context(), func(svcs *app.Services) error {
				item, err := svcs.Feedback.Ignore(reviewerCtx(cmd, reviewer), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, item)
				}
				printLine(cmd, "%s ignored", item.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "", "Reviewer recorded on the item")
	return cmd
}

func newFeedbackStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count feedback items per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(cmd.Context(), func(svcs *app.Services) error {
				stats, err := svcs.Feedback.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Status", "Count"},
					statsRows(stats),
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func statsRows(s domain.FeedbackStats) [][]string {
	return [][]string{
		{string(domain.FeedbackStatusPending), fmt.Sprint(s.Pending)},
		{string(domain.FeedbackStatusResolved), fmt.Sprint(s.Resolved)},
		{string(domain.FeedbackStatusIgnored), fmt.Sprint(s.Ignored)},
		{"total", fmt.Sprint(s.Total)},
	}
}

func reviewerCtx(cmd *cobra.Command, reviewer string) context.Context {
	return ctxutil.WithReviewer(cmd.Context(), strings.TrimSpace(reviewer))
}

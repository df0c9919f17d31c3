// Command cleanup deletes reviewed feedback items older than the configured
// retention period. Pending items are kept. It is intended to be invoked by
// an external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/wh40k-terms/internal/adapter/postgres"
	"github.com/heartmarshall/wh40k-terms/internal/adapter/postgres/alias"
	feedbackrepo "github.com/heartmarshall/wh40k-terms/internal/adapter/postgres/feedback"
	"github.com/heartmarshall/wh40k-terms/internal/app"
	"github.com/heartmarshall/wh40k-terms/internal/config"
	"github.com/heartmarshall/wh40k-terms/internal/service/feedback"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := feedback.NewService(logger, feedbackrepo.New(pool), alias.New(pool), cfg.Feedback.MaxSuggestions)

	retention := time.Duration(cfg.Feedback.RetentionDays) * 24 * time.Hour
	if _, err := svc.Purge(ctx, retention); err != nil {
		logger.Error("feedback purge failed",
			slog.String("error", err.Error()),
			slog.Int("retention_days", cfg.Feedback.RetentionDays),
		)
		os.Exit(1)
	}
}

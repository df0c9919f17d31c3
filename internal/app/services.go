package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/wh40k-terms/internal/adapter/postgres"
	"github.com/heartmarshall/wh40k-terms/internal/adapter/postgres/alias"
	"github.com/heartmarshall/wh40k-terms/internal/adapter/postgres/entity"
	feedbackrepo "github.com/heartmarshall/wh40k-terms/internal/adapter/postgres/feedback"
	"github.com/heartmarshall/wh40k-terms/internal/candidate"
	"github.com/heartmarshall/wh40k-terms/internal/config"
	"github.com/heartmarshall/wh40k-terms/internal/matching"
	"github.com/heartmarshall/wh40k-terms/internal/service/feedback"
	"github.com/heartmarshall/wh40k-terms/internal/service/resolver"
)

// Services is the wired engine shared by the HTTP server and termctl.
type Services struct {
	Pool      *pgxpool.Pool
	TxManager *postgres.TxManager
	Entities  *entity.Repo
	Aliases   *alias.Repo
	Tables    *matching.Tables
	Index     *candidate.Index
	Feedback  *feedback.Service
	Resolver  *resolver.Service
}

// NewServices connects to the database and builds every service. Call Close
// when done.
func NewServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	tables, err := matching.LoadTables(cfg.Matching.TablesPath)
	if err != nil {
		return nil, fmt.Errorf("load matching tables: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return newServices(pool, tables, cfg, logger), nil
}

// newServices wires repositories and services over an open pool.
func newServices(pool *pgxpool.Pool, tables *matching.Tables, cfg *config.Config, logger *slog.Logger) *Services {
	entities := entity.New(pool)
	aliases := alias.New(pool)
	items := feedbackrepo.New(pool)

	th := matching.ThresholdsFromConfig(cfg.Matching)
	index := candidate.NewIndex(logger, entities,
		candidate.WithTTL(cfg.Cache.CandidateTTL),
		candidate.WithFetchTimeout(cfg.Cache.FetchTimeout),
	)
	lookup := matching.NewLookup(logger, tables, aliases, aliases, th)
	scorer := matching.NewScorer(th, matching.WithParallelThreshold(cfg.Matching.ParallelScoreThreshold))

	feedbackSvc := feedback.NewService(logger, items, aliases, cfg.Feedback.MaxSuggestions)
	resolverSvc := resolver.NewService(logger, index, lookup, scorer, tables, aliases, feedbackSvc, resolver.Config{
		MaxBatchTerms:    cfg.Matching.MaxBatchTerms,
		BatchConcurrency: cfg.Matching.BatchConcurrency,
		AutoRecord:       cfg.Feedback.AutoRecord,
		RecordTimeout:    cfg.Feedback.RecordTimeout,
	})

	logger.Info("matching tables loaded",
		slog.Int("aliases", tables.AliasCount()),
		slog.Int("phonetic_overrides", tables.PhoneticCount()),
	)

	return &Services{
		Pool:      pool,
		TxManager: postgres.NewTxManager(pool),
		Entities:  entities,
		Aliases:   aliases,
		Tables:    tables,
		Index:     index,
		Feedback:  feedbackSvc,
		Resolver:  resolverSvc,
	}
}

// Close releases the database pool.
func (s *Services) Close() {
	s.Pool.Close()
}

package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// EntityStore is the write side of the canonical entity store.
type EntityStore interface {
	BulkUpsert(ctx context.Context, entities []domain.CandidateEntity) (int, error)
	DeleteCategories(ctx context.Context, categories []domain.Category) (int, error)
}

// TxRunner runs fn inside one transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Result holds the outcome of one run.
type Result struct {
	Parsed   int
	Inserted int
	Deleted  int
	DryRun   bool
	Duration time.Duration
}

// Pipeline writes parsed entities to the store in batches, in a single
// transaction so a failed run leaves the previous data intact.
type Pipeline struct {
	log   *slog.Logger
	store EntityStore
	tx    TxRunner
	cfg   Config
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, store EntityStore, tx TxRunner, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Pipeline{log: log.With("component", "seeder"), store: store, tx: tx, cfg: cfg}
}

// Run seeds entities.
func (p *Pipeline) Run(ctx context.Context, entities []domain.CandidateEntity) (*Result, error) {
	start := time.Now()
	res := &Result{Parsed: len(entities), DryRun: p.cfg.DryRun}

	if p.cfg.DryRun {
		p.log.InfoContext(ctx, "dry run: nothing written", slog.Int("parsed", res.Parsed))
		res.Duration = time.Since(start)
		return res, nil
	}

	err := p.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.cfg.Replace {
			deleted, err := p.store.DeleteCategories(ctx, Categories(entities))
			if err != nil {
				return fmt.Errorf("delete categories: %w", err)
			}
			res.Deleted = deleted
		}

		for batch := range slices.Chunk(entities, p.cfg.BatchSize) {
			n, err := p.store.BulkUpsert(ctx, batch)
			if err != nil {
				return fmt.Errorf("bulk upsert: %w", err)
			}
			res.Inserted += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	p.log.InfoContext(ctx, "seed completed",
		slog.Int("parsed", res.Parsed),
		slog.Int("inserted", res.Inserted),
		slog.Int("deleted", res.Deleted),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

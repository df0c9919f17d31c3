package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/matching"
	"github.com/heartmarshall/wh40k-terms/internal/service/feedback"
)

type candidateIndex interface {
	Load(ctx context.Context, categories []domain.Category, factions []string) []domain.CandidateEntity
	Names(ctx context.Context, category domain.Category, faction string) []string
}

type exactLookup interface {
	ExactScoped(ctx context.Context, token string, categories []domain.Category, factions []string) *domain.MatchResult
}

type aliasLister interface {
	ListByCategory(ctx context.Context, category domain.Category, faction string) ([]domain.AliasMapping, error)
}

type feedbackRecorder interface {
	Record(ctx context.Context, input feedback.RecordInput) (*domain.FeedbackItem, error)
}

const (
	DefaultMatchLimit   = 5
	MaxAlternates       = 4
	ResolveLimit        = 10
	DefaultSearchLimit  = 10
	MaxSearchLimit      = 50
	MinSearchQueryRunes = 2
	// MaxBatchTerms is the largest batch validated in one call.
	MaxBatchTerms = 50
)

// Config tunes the batch and feedback behaviour of the resolver.
type Config struct {
	MaxBatchTerms    int
	BatchConcurrency int
	AutoRecord       bool
	RecordTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxBatchTerms <= 0 || c.MaxBatchTerms > MaxBatchTerms {
		c.MaxBatchTerms = MaxBatchTerms
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 8
	}
	if c.RecordTimeout <= 0 {
		c.RecordTimeout = 2 * time.Second
	}
	return c
}

// Service resolves free-form terms against the canonical entity set.
type Service struct {
	index    candidateIndex
	lookup   exactLookup
	scorer   *matching.Scorer
	tables   *matching.Tables
	aliases  aliasLister
	recorder feedbackRecorder
	cfg      Config
	log      *slog.Logger
}

// NewService creates a new Resolver service. aliases and recorder may be nil.
func NewService(
	log *slog.Logger,
	index candidateIndex,
	lookup exactLookup,
	scorer *matching.Scorer,
	tables *matching.Tables,
	aliases aliasLister,
	recorder feedbackRecorder,
	cfg Config,
) *Service {
	return &Service{
		index:    index,
		lookup:   lookup,
		scorer:   scorer,
		tables:   tables,
		aliases:  aliases,
		recorder: recorder,
		cfg:      cfg.withDefaults(),
		log:      log.With("service", "resolver"),
	}
}

// Thresholds returns the thresholds the service interprets scores with.
func (s *Service) Thresholds() matching.Thresholds {
	return s.scorer.Thresholds()
}

package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/metrics"
)

// ValidateTerms resolves a batch of terms against one candidate scope.
// Terms beyond the batch cap are dropped and reported, not rejected.
// Results keep the order of the accepted terms; unmatched terms carry a nil
// Match.
func (s *Service) ValidateTerms(ctx context.Context, input ValidateInput) (*ValidateOutput, error) {
	start := time.Now()
	defer func() { metrics.ObserveResolve("validate_terms", time.Since(start).Seconds()) }()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	categories, err := domain.ParseCategories(input.Categories)
	if err != nil {
		return nil, err
	}

	minConfidence := s.Thresholds().FuzzyMedium
	if input.MinConfidence != nil {
		minConfidence = *input.MinConfidence
	}

	terms := input.Terms
	out := &ValidateOutput{}
	if len(terms) > s.cfg.MaxBatchTerms {
		out.Truncated = true
		out.Rejected = len(terms) - s.cfg.MaxBatchTerms
		terms = terms[:s.cfg.MaxBatchTerms]
		metrics.RecordBatchTruncated()
		s.log.WarnContext(ctx, "validate batch truncated",
			slog.Int("received", len(input.Terms)),
			slog.Int("rejected", out.Rejected),
		)
	}

	factions := trimAll(input.Factions)
	candidates := s.index.Load(ctx, categories, factions)
	opts := FindOptions{
		MinConfidence: minConfidence,
		Limit:         MaxAlternates + 1,
		CheckAliases:  true,
		Categories:    categories,
		Factions:      factions,
	}

	results := make([]ValidateResult, len(terms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, term := range terms {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches := s.FindBestMatches(gctx, term, candidates, opts)
			metrics.RecordMatch(topSource(matches))
			results[i] = toValidateResult(term, matches)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validate terms: %w", err)
	}

	out.Results = results
	return out, nil
}

func toValidateResult(term string, matches []domain.MatchResult) ValidateResult {
	r := ValidateResult{Term: term, Alternates: []domain.MatchResult{}}
	if len(matches) == 0 {
		return r
	}

	best := matches[0]
	r.Match = &best.Name
	r.Category = &best.Category
	r.Faction = best.Faction
	r.Confidence = best.Confidence
	r.Source = best.Source
	if rest := matches[1:]; len(rest) > 0 {
		r.Alternates = rest[:min(len(rest), MaxAlternates)]
	}
	return r
}

package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/metrics"
)

// FuzzySearch is exploratory matching for interactive lookup: fuzzy tier
// only, floored at the low fuzzy threshold.
func (s *Service) FuzzySearch(ctx context.Context, input FuzzySearchInput) ([]domain.MatchResult, error) {
	start := time.Now()
	defer func() { metrics.ObserveResolve("fuzzy_search", time.Since(start).Seconds()) }()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	categories, err := domain.ParseCategories(input.Categories)
	if err != nil {
		return nil, err
	}

	var factions []string
	if f := strings.TrimSpace(input.Faction); f != "" {
		factions = []string{f}
	}

	candidates := s.index.Load(ctx, categories, factions)
	return s.FindBestMatches(ctx, input.Query, candidates, FindOptions{
		MinConfidence: s.Thresholds().FuzzyLow,
		Limit:         clampLimit(input.Limit, DefaultSearchLimit, MaxSearchLimit),
	}), nil
}

package resolver

import (
	"context"
	"strings"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// FindBestMatches ranks candidates for term. With CheckAliases an exact-tier
// hit comes first regardless of MinConfidence, followed by up to Limit-1
// fuzzy matches that do not outrank it. The result is never nil.
func (s *Service) FindBestMatches(ctx context.Context, term string, candidates []domain.CandidateEntity, opts FindOptions) []domain.MatchResult {
	token := domain.Normalize(term)
	if token == "" {
		return []domain.MatchResult{}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	var hit *domain.MatchResult
	if opts.CheckAliases {
		hit = s.lookup.ExactScoped(ctx, token, opts.Categories, opts.Factions)
	}

	fuzzy := s.scorer.ScoreAll(ctx, token, candidates, opts.MinConfidence)
	if hit == nil {
		if len(fuzzy) > limit {
			fuzzy = fuzzy[:limit]
		}
		return fuzzy
	}

	out := make([]domain.MatchResult, 0, limit)
	out = append(out, *hit)
	for _, m := range fuzzy {
		if len(out) == limit {
			break
		}
		if m.Confidence > hit.Confidence || strings.EqualFold(m.Name, hit.Name) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func topSource(matches []domain.MatchResult) string {
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Source.String()
}

package resolver

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/metrics"
	"github.com/heartmarshall/wh40k-terms/internal/service/feedback"
)

// ResolveTerm disambiguates one term. Matches above the resolve floor are
// boosted when their faction matches a hint or appears in the context
// snippet. The result is ambiguous when more than one candidate reaches the
// categorization threshold; otherwise the top candidate is recommended.
func (s *Service) ResolveTerm(ctx context.Context, input ResolveInput) (*ResolveOutput, error) {
	start := time.Now()
	defer func() { metrics.ObserveResolve("resolve_term", time.Since(start).Seconds()) }()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var categories []domain.Category
	if strings.TrimSpace(input.EntityType) != "" {
		c, err := domain.ParseCategory(input.EntityType)
		if err != nil {
			return nil, err
		}
		categories = []domain.Category{c}
	}

	th := s.Thresholds()
	hints := trimAll(input.FactionHints)
	candidates := s.index.Load(ctx, categories, nil)
	matches := s.FindBestMatches(ctx, input.Term, candidates, FindOptions{
		MinConfidence: th.ResolveFloor,
		Limit:         ResolveLimit,
		CheckAliases:  true,
		Categories:    categories,
		Factions:      hints,
	})
	metrics.RecordMatch(topSource(matches))

	ranked := s.rank(matches, hints, input.ContextSnippet)

	out := &ResolveOutput{
		Term:       input.Term,
		Candidates: ranked,
	}
	confident := 0
	for _, c := range ranked {
		if c.Relevance >= th.Categorization {
			confident++
		}
	}
	out.Ambiguous = confident > 1
	if !out.Ambiguous && len(ranked) > 0 {
		name := ranked[0].Name
		out.Recommendation = &name
	}

	best := 0.0
	if len(matches) > 0 {
		best = matches[0].Confidence
	}
	if best < th.Categorization {
		if item := s.recordLowConfidence(ctx, input, categories, hints, matches, best); item != nil {
			out.FeedbackID = &item.ID
		}
	}

	s.log.DebugContext(ctx, "term resolved",
		slog.String("term", input.Term),
		slog.Int("candidates", len(ranked)),
		slog.Bool("ambiguous", out.Ambiguous),
	)

	return out, nil
}

func (s *Service) rank(matches []domain.MatchResult, hints []string, snippet string) []RankedCandidate {
	th := s.Thresholds()
	inSnippet := foldFaction(snippet)

	ranked := make([]RankedCandidate, 0, len(matches))
	for _, m := range matches {
		relevance := m.Confidence
		if faction := foldFaction(domain.Deref(m.Faction)); faction != "" {
			if hintMatches(faction, hints) {
				relevance += th.FactionHintBoost
			}
			if inSnippet != "" && strings.Contains(inSnippet, faction) {
				relevance += th.ContextBoost
			}
		}
		ranked = append(ranked, RankedCandidate{MatchResult: m, Relevance: domain.ClampConfidence(relevance)})
	}

	slices.SortStableFunc(ranked, func(a, b RankedCandidate) int {
		if a.Relevance != b.Relevance {
			return cmp.Compare(b.Relevance, a.Relevance)
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return ranked
}

// hintMatches reports whether faction and any hint contain one another
// after normalization.
func hintMatches(faction string, hints []string) bool {
	for _, h := range hints {
		h = foldFaction(h)
		if h == "" {
			continue
		}
		if strings.Contains(faction, h) || strings.Contains(h, faction) {
			return true
		}
	}
	return false
}

func foldFaction(s string) string {
	return domain.StripApostrophes(domain.Normalize(s))
}

// recordLowConfidence queues the term for human review. It is best-effort:
// failures are logged and the resolution is returned regardless.
func (s *Service) recordLowConfidence(
	ctx context.Context,
	input ResolveInput,
	categories []domain.Category,
	hints []string,
	matches []domain.MatchResult,
	confidence float64,
) *domain.FeedbackItem {
	if !s.cfg.AutoRecord || s.recorder == nil {
		return nil
	}

	var entityType domain.Category
	switch {
	case len(categories) == 1:
		entityType = categories[0]
	case len(matches) > 0:
		entityType = matches[0].Category
	default:
		s.log.DebugContext(ctx, "low confidence term without category not recorded",
			slog.String("term", input.Term))
		return nil
	}

	var faction *string
	if len(hints) == 1 {
		faction = &hints[0]
	}
	var snippet *string
	if input.ContextSnippet != "" {
		snippet = &input.ContextSnippet
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RecordTimeout)
	defer cancel()

	item, err := s.recorder.Record(recCtx, feedback.RecordInput{
		Token:             input.Term,
		EntityType:        entityType,
		FactionID:         faction,
		PlayerIndex:       input.PlayerIndex,
		TranscriptContext: snippet,
		Confidence:        confidence,
		Suggestions:       matches,
	})
	if err != nil {
		s.log.WarnContext(ctx, "record low confidence term",
			slog.String("term", input.Term),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return item
}

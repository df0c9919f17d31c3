package matching

import (
	"context"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

const defaultParallelThreshold = 2000

// Scorer computes a bounded confidence for a token against a candidate name.
// It is stateless apart from its thresholds and safe for concurrent use.
type Scorer struct {
	th                Thresholds
	parallelThreshold int
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithParallelThreshold sets the candidate count above which ScoreAll shards
// the scoring loop across goroutines.
func WithParallelThreshold(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.parallelThreshold = n
		}
	}
}

// NewScorer creates a Scorer.
func NewScorer(th Thresholds, opts ...ScorerOption) *Scorer {
	s := &Scorer{th: th, parallelThreshold: defaultParallelThreshold}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Thresholds returns the scorer's thresholds.
func (s *Scorer) Thresholds() Thresholds { return s.th }

// Score returns a confidence in [0, 1] for two normalized strings.
//
// The token-similarity signal is the length-penalized Levenshtein ratio,
// taken as the better of the raw and apostrophe-stripped forms so that
// "tau" matches "t'au". A fixed phonetic bonus is added when the Double
// Metaphone codes agree and the similarity alone is below FuzzyMedium.
func (s *Scorer) Score(token, candidate string) float64 {
	if token == "" || candidate == "" {
		return 0
	}

	sim := similarity(token, candidate)

	bareToken := domain.StripApostrophes(token)
	bareCandidate := domain.StripApostrophes(candidate)
	if bareToken != token || bareCandidate != candidate {
		sim = max(sim, similarity(bareToken, bareCandidate))
	}

	if sim < s.th.FuzzyMedium && soundsAlike(bareToken, bareCandidate) {
		sim += s.th.PhoneticBonus
	}

	return min(1, sim)
}

// ScoreAll scores token (normalized) against every candidate and returns the
// results at or above minConfidence, ranked.
func (s *Scorer) ScoreAll(ctx context.Context, token string, candidates []domain.CandidateEntity, minConfidence float64) []domain.MatchResult {
	if token == "" || len(candidates) == 0 {
		return []domain.MatchResult{}
	}

	var results []domain.MatchResult
	if len(candidates) <= s.parallelThreshold {
		results = s.scoreRange(token, candidates, minConfidence)
	} else {
		results = s.scoreSharded(ctx, token, candidates, minConfidence)
	}

	domain.SortMatches(results)
	return results
}

func (s *Scorer) scoreRange(token string, candidates []domain.CandidateEntity, minConfidence float64) []domain.MatchResult {
	results := make([]domain.MatchResult, 0, 8)
	for _, c := range candidates {
		conf := s.Score(token, c.NormalizedName())
		if conf <= 0 || conf < minConfidence {
			continue
		}
		results = append(results, domain.MatchResult{
			Name:       c.Name,
			Category:   c.Category,
			Faction:    c.Faction,
			Confidence: conf,
			Source:     domain.MatchSourceFuzzy,
		})
	}
	return results
}

func (s *Scorer) scoreSharded(ctx context.Context, token string, candidates []domain.CandidateEntity, minConfidence float64) []domain.MatchResult {
	workers := runtime.GOMAXPROCS(0)
	size := (len(candidates) + workers - 1) / workers
	shards := make([][]domain.MatchResult, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		lo := i * size
		if lo >= len(candidates) {
			break
		}
		hi := min(lo+size, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			shards[i] = s.scoreRange(token, candidates[lo:hi], minConfidence)
			return nil
		})
	}
	// A cancelled caller gets whatever shards finished.
	_ = g.Wait()

	var results []domain.MatchResult
	for _, shard := range shards {
		results = append(results, shard...)
	}
	if results == nil {
		results = []domain.MatchResult{}
	}
	return results
}

// similarity is 1 - distance/maxLen over runes, scaled down when one string
// is less than half the length of the other.
func similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 0
	}

	sim := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)

	if ratio := float64(min(la, lb)) / float64(longest); ratio < 0.5 {
		sim *= 0.5 + ratio
	}
	return max(0, sim)
}

// soundsAlike compares Double Metaphone codes of the space-joined forms.
// Either code of one side matching either code of the other counts.
func soundsAlike(a, b string) bool {
	pa, sa := matchr.DoubleMetaphone(strings.ReplaceAll(a, " ", ""))
	pb, sb := matchr.DoubleMetaphone(strings.ReplaceAll(b, " ", ""))

	for _, x := range []string{pa, sa} {
		if x == "" {
			continue
		}
		if x == pb || x == sb {
			return true
		}
	}
	return false
}

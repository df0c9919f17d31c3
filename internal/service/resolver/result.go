package resolver

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// ValidateResult reports the best match of one batch term. Match is nil when
// nothing cleared the confidence floor.
type ValidateResult struct {
	Term       string
	Match      *string
	Category   *domain.Category
	Faction    *string
	Confidence float64
	Source     domain.MatchSource
	Alternates []domain.MatchResult
}

// ValidateOutput is aligned with the accepted prefix of the input terms.
type ValidateOutput struct {
	Results   []ValidateResult
	Truncated bool
	Rejected  int
}

// RankedCandidate is a match re-ranked by faction and context relevance.
type RankedCandidate struct {
	domain.MatchResult
	Relevance float64
}

// ResolveOutput is the outcome of disambiguating one term. Ambiguity is data,
// not an error: callers prompt a human when it is set.
type ResolveOutput struct {
	Term           string
	Ambiguous      bool
	Candidates     []RankedCandidate
	Recommendation *string
	FeedbackID     *uuid.UUID
}

// AliasEntry is one alias pointing at a canonical name.
type AliasEntry struct {
	Alias     string
	Canonical string
	Faction   *string
	Source    domain.MatchSource
}

// ValidNamesResult lists the canonical names of one category.
type ValidNamesResult struct {
	Category domain.Category
	Names    []string
	Aliases  []AliasEntry
}

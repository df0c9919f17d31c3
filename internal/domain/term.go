package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CandidateEntity is a canonical game entity eligible for matching.
// Faction is nil for faction-agnostic entries (core stratagems, keywords).
type CandidateEntity struct {
	Name     string
	Category Category
	Faction  *string
	// Key is Normalize(Name), filled once when a candidate set is cached.
	Key string
}

// NormalizedName returns the precomputed Key, normalizing Name when it is unset.
func (c CandidateEntity) NormalizedName() string {
	if c.Key != "" {
		return c.Key
	}
	return Normalize(c.Name)
}

// MatchResult is one ranked resolution of a query term. It is never persisted.
type MatchResult struct {
	Name       string      `json:"name"`
	Category   Category    `json:"category"`
	Faction    *string     `json:"faction"`
	Confidence float64     `json:"confidence"`
	Source     MatchSource `json:"source"`
}

// AliasMapping is a persisted exact-match shortcut learned from feedback.
// The (Alias, EntityType, FactionID) triple is unique; Alias is normalized.
type AliasMapping struct {
	ID            uuid.UUID
	Alias         string
	CanonicalName string
	EntityType    Category
	FactionID     *string
	CreatedAt     time.Time
	UsageCount    int
}

// IsFactionScoped reports whether the mapping only applies within one faction.
func (a AliasMapping) IsFactionScoped() bool {
	return a.FactionID != nil && *a.FactionID != ""
}

// FeedbackItem is a low-confidence resolution waiting for human review.
type FeedbackItem struct {
	ID                uuid.UUID
	OriginalToken     string
	EntityType        Category
	FactionID         *string
	PlayerIndex       *int
	TranscriptContext *string
	ConfidenceScore   float64
	Suggestions       []MatchResult
	Status            FeedbackStatus
	ResolvedTo        *string
	ResolvedBy        *string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

// FeedbackStats aggregates feedback items by status.
type FeedbackStats struct {
	Pending  int `json:"pending"`
	Resolved int `json:"resolved"`
	Ignored  int `json:"ignored"`
	Total    int `json:"total"`
}

// SortMatches orders results by confidence descending, breaking ties by
// case-insensitive name ascending. The sort is stable.
func SortMatches(results []MatchResult) {
	slices.SortStableFunc(results, compareMatches)
}

func compareMatches(a, b MatchResult) int {
	if a.Confidence != b.Confidence {
		if a.Confidence > b.Confidence {
			return -1
		}
		return 1
	}
	return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

// ClampConfidence bounds v to [0, 1].
func ClampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

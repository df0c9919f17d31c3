package resolver

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// FindOptions controls FindBestMatches. Empty Categories and Factions leave
// the exact tiers unrestricted.
type FindOptions struct {
	MinConfidence float64
	Limit         int
	CheckAliases  bool
	Categories    []domain.Category
	Factions      []string
}

// ValidateInput holds a batch of terms to validate.
type ValidateInput struct {
	Terms         []string
	Factions      []string
	Categories    []string
	MinConfidence *float64
}

// Validate checks all fields and collects all errors. The batch cap is not
// an error: extra terms are truncated.
func (i ValidateInput) Validate() error {
	var errs []domain.FieldError
	if len(i.Terms) == 0 {
		errs = append(errs, domain.FieldError{Field: "terms", Message: "required"})
	}
	if i.MinConfidence != nil && (*i.MinConfidence < 0 || *i.MinConfidence > 1) {
		errs = append(errs, domain.FieldError{Field: "min_confidence", Message: "must be between 0 and 1"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ResolveInput holds one term to disambiguate.
type ResolveInput struct {
	Term           string
	FactionHints   []string
	ContextSnippet string
	EntityType     string
	// Player-level context copied onto an auto-recorded feedback item.
	PlayerIndex *int
}

// Validate checks all fields and collects all errors.
func (i ResolveInput) Validate() error {
	var errs []domain.FieldError
	if domain.Normalize(i.Term) == "" {
		errs = append(errs, domain.FieldError{Field: "term", Message: "required"})
	}
	if utf8.RuneCountInString(i.ContextSnippet) > 2000 {
		errs = append(errs, domain.FieldError{Field: "context_snippet", Message: "max 2000 characters"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ValidNamesInput selects the names of one category.
type ValidNamesInput struct {
	Category       string
	Faction        string
	IncludeAliases bool
}

// FuzzySearchInput holds an exploratory search query.
type FuzzySearchInput struct {
	Query      string
	Categories []string
	Faction    string
	Limit      int
}

// Validate checks all fields and collects all errors.
func (i FuzzySearchInput) Validate() error {
	if utf8.RuneCountInString(domain.Normalize(i.Query)) < MinSearchQueryRunes {
		return domain.NewValidationError("query", "min 2 characters")
	}
	return nil
}

// clampLimit maps 0 to def and bounds the rest to [1, max].
func clampLimit(limit, def, max int) int {
	switch {
	case limit == 0:
		return def
	case limit < 1:
		return 1
	case limit > max:
		return max
	}
	return limit
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

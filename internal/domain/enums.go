package domain

import "strings"

// Category is the kind of game entity a term resolves to.
type Category string

const (
	CategoryUnit        Category = "unit"
	CategoryStratagem   Category = "stratagem"
	CategoryAbility     Category = "ability"
	CategoryFaction     Category = "faction"
	CategoryDetachment  Category = "detachment"
	CategoryEnhancement Category = "enhancement"
	CategoryKeyword     Category = "keyword"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryUnit, CategoryStratagem, CategoryAbility, CategoryFaction,
		CategoryDetachment, CategoryEnhancement, CategoryKeyword:
		return true
	}
	return false
}

// AllCategories returns every category in declaration order.
func AllCategories() []Category {
	return []Category{
		CategoryUnit,
		CategoryStratagem,
		CategoryAbility,
		CategoryFaction,
		CategoryDetachment,
		CategoryEnhancement,
		CategoryKeyword,
	}
}

// ParseCategory converts a user-supplied name into a Category.
// Matching is case-insensitive; unknown names yield a *ValidationError.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", NewValidationError("category", "unknown category "+strings.TrimSpace(s))
	}
	return c, nil
}

// ParseCategories parses a list of category names. An empty input yields nil,
// which callers treat as "all categories".
func ParseCategories(raw []string) ([]Category, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make([]Category, 0, len(raw))
	var errs []FieldError
	for _, r := range raw {
		c, err := ParseCategory(r)
		if err != nil {
			errs = append(errs, FieldError{Field: "categories", Message: "unknown category " + r})
			continue
		}
		out = append(out, c)
	}
	if len(errs) > 0 {
		return nil, NewValidationErrors(errs)
	}
	return out, nil
}

// FeedbackStatus is the review state of a FeedbackItem.
type FeedbackStatus string

const (
	FeedbackStatusPending  FeedbackStatus = "pending"
	FeedbackStatusResolved FeedbackStatus = "resolved"
	FeedbackStatusIgnored  FeedbackStatus = "ignored"
)

func (s FeedbackStatus) String() string { return string(s) }

func (s FeedbackStatus) IsValid() bool {
	switch s {
	case FeedbackStatusPending, FeedbackStatusResolved, FeedbackStatusIgnored:
		return true
	}
	return false
}

// MatchSource records which resolution tier produced a MatchResult.
type MatchSource string

const (
	MatchSourceAlias    MatchSource = "alias"
	MatchSourceBuiltin  MatchSource = "builtin"
	MatchSourcePhonetic MatchSource = "phonetic"
	MatchSourceFuzzy    MatchSource = "fuzzy"
)

func (s MatchSource) String() string { return string(s) }

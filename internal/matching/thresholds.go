package matching

import "github.com/heartmarshall/wh40k-terms/internal/config"

// Confidences of the exact-match tiers. They are fixed; only the fuzzy and
// phonetic thresholds below are tunable per deployment.
const (
	AliasConfidence   = 0.95
	BuiltinConfidence = 0.9

	// phoneticRankCutoff is how many of a canonical name's variants count as
	// its most common mishearings.
	phoneticRankCutoff = 3
)

// Thresholds interprets scorer output. Callers pick the floor that fits the
// operation: FuzzyMedium for validation, FuzzyLow for exploratory search,
// ResolveFloor for disambiguation.
type Thresholds struct {
	FuzzyHigh        float64
	FuzzyMedium      float64
	FuzzyLow         float64
	PhoneticHigh     float64
	PhoneticLow      float64
	Categorization   float64
	PhoneticBonus    float64
	FactionHintBoost float64
	ContextBoost     float64
	ResolveFloor     float64
}

// DefaultThresholds returns the empirically chosen defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FuzzyHigh:        0.75,
		FuzzyMedium:      0.70,
		FuzzyLow:         0.60,
		PhoneticHigh:     0.5,
		PhoneticLow:      0.4,
		Categorization:   0.8,
		PhoneticBonus:    0.15,
		FactionHintBoost: 0.2,
		ContextBoost:     0.15,
		ResolveFloor:     0.4,
	}
}

// ThresholdsFromConfig maps the matching section of the config.
func ThresholdsFromConfig(cfg config.MatchingConfig) Thresholds {
	return Thresholds{
		FuzzyHigh:        cfg.FuzzyHigh,
		FuzzyMedium:      cfg.FuzzyMedium,
		FuzzyLow:         cfg.FuzzyLow,
		PhoneticHigh:     cfg.PhoneticHigh,
		PhoneticLow:      cfg.PhoneticLow,
		Categorization:   cfg.Categorization,
		PhoneticBonus:    cfg.PhoneticBonus,
		FactionHintBoost: cfg.FactionHintBoost,
		ContextBoost:     cfg.ContextBoost,
		ResolveFloor:     cfg.ResolveFloor,
	}
}

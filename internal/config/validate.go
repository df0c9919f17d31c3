package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Matching.validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}

	if c.Cache.CandidateTTL <= 0 {
		return fmt.Errorf("cache.candidate_ttl must be > 0 (got %v)", c.Cache.CandidateTTL)
	}
	if c.Cache.FetchTimeout <= 0 {
		return fmt.Errorf("cache.fetch_timeout must be > 0 (got %v)", c.Cache.FetchTimeout)
	}

	if c.Feedback.RetentionDays <= 0 {
		return fmt.Errorf("feedback.retention_days must be > 0 (got %d)", c.Feedback.RetentionDays)
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be > 0 (got %d)", c.RateLimit.RequestsPerMinute)
	}

	return nil
}

func (m *MatchingConfig) validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"fuzzy_high", m.FuzzyHigh},
		{"fuzzy_medium", m.FuzzyMedium},
		{"fuzzy_low", m.FuzzyLow},
		{"phonetic_high", m.PhoneticHigh},
		{"phonetic_low", m.PhoneticLow},
		{"categorization", m.Categorization},
		{"phonetic_bonus", m.PhoneticBonus},
		{"faction_hint_boost", m.FactionHintBoost},
		{"context_boost", m.ContextBoost},
		{"resolve_floor", m.ResolveFloor},
	}
	for _, n := range named {
		if n.value < 0 || n.value > 1 {
			return fmt.Errorf("%s must be within [0, 1] (got %v)", n.name, n.value)
		}
	}

	if m.FuzzyLow > m.FuzzyMedium || m.FuzzyMedium > m.FuzzyHigh {
		return fmt.Errorf("fuzzy thresholds must satisfy low <= medium <= high (got %v, %v, %v)",
			m.FuzzyLow, m.FuzzyMedium, m.FuzzyHigh)
	}
	if m.PhoneticLow > m.PhoneticHigh {
		return fmt.Errorf("phonetic_low must be <= phonetic_high (got %v > %v)", m.PhoneticLow, m.PhoneticHigh)
	}
	if m.MaxBatchTerms <= 0 || m.MaxBatchTerms > 50 {
		return fmt.Errorf("max_batch_terms must be within [1, 50] (got %d)", m.MaxBatchTerms)
	}
	if m.BatchConcurrency <= 0 {
		return fmt.Errorf("batch_concurrency must be > 0 (got %d)", m.BatchConcurrency)
	}
	if m.ParallelScoreThreshold <= 0 {
		return fmt.Errorf("parallel_score_threshold must be > 0 (got %d)", m.ParallelScoreThreshold)
	}

	return nil
}

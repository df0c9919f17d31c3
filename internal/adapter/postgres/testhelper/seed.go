package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// UniqueSuffix returns a short unique string so that tests sharing one
// database do not collide.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedEntity inserts one canonical entity. An empty faction is faction-agnostic.
func SeedEntity(t *testing.T, pool *pgxpool.Pool, name string, cat domain.Category, faction string) domain.CandidateEntity {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO canonical_entities (name, category, faction) VALUES ($1, $2, $3)`,
		name, string(cat), faction,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEntity: %v", err)
	}

	return domain.CandidateEntity{Name: name, Category: cat, Faction: domain.StringPtr(faction)}
}

// SeedAlias inserts one alias mapping with the given usage count.
func SeedAlias(t *testing.T, pool *pgxpool.Pool, alias, canonical string, cat domain.Category, faction string, usage int) domain.AliasMapping {
	t.Helper()

	m := domain.AliasMapping{
		ID:            uuid.New(),
		Alias:         alias,
		CanonicalName: canonical,
		EntityType:    cat,
		FactionID:     domain.StringPtr(faction),
		UsageCount:    usage,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO alias_mappings (id, alias, canonical_name, entity_type, faction_id, usage_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Alias, m.CanonicalName, string(m.EntityType), faction, m.UsageCount, m.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedAlias: %v", err)
	}

	return m
}

// SeedFeedback inserts one pending feedback item for token.
func SeedFeedback(t *testing.T, pool *pgxpool.Pool, token string, cat domain.Category) domain.FeedbackItem {
	t.Helper()

	item := domain.FeedbackItem{
		ID:              uuid.New(),
		OriginalToken:   token,
		EntityType:      cat,
		ConfidenceScore: 0.5,
		Suggestions:     []domain.MatchResult{},
		Status:          domain.FeedbackStatusPending,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO feedback_items (id, original_token, entity_type, confidence_score, status, created_at)
		 VALUES ($1, $2, $3, $4, 'pending', $5)`,
		item.ID, item.OriginalToken, string(item.EntityType), item.ConfidenceScore, item.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedFeedback: %v", err)
	}

	return item
}

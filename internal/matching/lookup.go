package matching

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// AliasFinder returns the persisted mappings for one normalized alias.
type AliasFinder interface {
	FindByAlias(ctx context.Context, alias string) ([]domain.AliasMapping, error)
}

// UsageCounter atomically increments the usage count of a mapping.
type UsageCounter interface {
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

type aliasFinderKey struct{}

// WithAliasFinder returns a context whose lookups go through f instead of
// the Lookup's own finder. The per-request alias loader uses this to batch
// lookups of a validate-terms call.
func WithAliasFinder(ctx context.Context, f AliasFinder) context.Context {
	return context.WithValue(ctx, aliasFinderKey{}, f)
}

func aliasFinderFrom(ctx context.Context) AliasFinder {
	f, _ := ctx.Value(aliasFinderKey{}).(AliasFinder)
	return f
}

// Lookup runs the exact tiers in order: faction-scoped persisted alias,
// faction-agnostic persisted alias, built-in alias, phonetic override.
type Lookup struct {
	log     *slog.Logger
	tables  *Tables
	aliases AliasFinder
	usage   UsageCounter
	th      Thresholds
}

// NewLookup creates a Lookup. aliases and usage may be nil when no alias
// store is configured.
func NewLookup(logger *slog.Logger, tables *Tables, aliases AliasFinder, usage UsageCounter, th Thresholds) *Lookup {
	return &Lookup{
		log:     logger.With("component", "lookup"),
		tables:  tables,
		aliases: aliases,
		usage:   usage,
		th:      th,
	}
}

// Exact resolves a token with an optional entity type and faction.
// It returns nil when no tier matches.
func (l *Lookup) Exact(ctx context.Context, token string, entityType *domain.Category, factionID *string) *domain.MatchResult {
	var categories []domain.Category
	if entityType != nil {
		categories = []domain.Category{*entityType}
	}
	var factions []string
	if f := domain.Deref(factionID); f != "" {
		factions = []string{f}
	}
	return l.ExactScoped(ctx, token, categories, factions)
}

// ExactScoped is Exact over a set of categories and factions. Empty sets
// mean unrestricted. It never fails: an unavailable alias store is logged
// and treated as a miss.
func (l *Lookup) ExactScoped(ctx context.Context, token string, categories []domain.Category, factions []string) *domain.MatchResult {
	token = domain.Normalize(token)
	if token == "" {
		return nil
	}

	if m := l.persisted(ctx, token, categories, factions); m != nil {
		return m
	}

	if h, ok := l.tables.builtin(token, categories, factions); ok {
		return &domain.MatchResult{
			Name:       h.canonical,
			Category:   h.category,
			Faction:    h.faction,
			Confidence: BuiltinConfidence,
			Source:     domain.MatchSourceBuiltin,
		}
	}

	if h, ok := l.tables.phoneticHit(token, categories, factions); ok {
		conf := l.th.PhoneticLow
		if h.rank < phoneticRankCutoff {
			conf = l.th.PhoneticHigh
		}
		return &domain.MatchResult{
			Name:       h.canonical,
			Category:   h.category,
			Faction:    h.faction,
			Confidence: conf,
			Source:     domain.MatchSourcePhonetic,
		}
	}

	return nil
}

func (l *Lookup) persisted(ctx context.Context, token string, categories []domain.Category, factions []string) *domain.MatchResult {
	finder := aliasFinderFrom(ctx)
	if finder == nil {
		finder = l.aliases
	}
	if finder == nil {
		return nil
	}

	mappings, err := finder.FindByAlias(ctx, token)
	if err != nil {
		l.log.WarnContext(ctx, "alias lookup failed",
			slog.String("alias", token),
			slog.String("error", err.Error()),
		)
		return nil
	}

	m, ok := pickMapping(mappings, categories, factions)
	if !ok {
		return nil
	}

	if l.usage != nil {
		if err := l.usage.IncrementUsage(ctx, m.ID); err != nil {
			l.log.WarnContext(ctx, "alias usage increment failed",
				slog.String("alias_id", m.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return &domain.MatchResult{
		Name:       m.CanonicalName,
		Category:   m.EntityType,
		Faction:    m.FactionID,
		Confidence: AliasConfidence,
		Source:     domain.MatchSourceAlias,
	}
}

// pickMapping returns the most specific mapping: one scoped to a requested
// faction shadows faction-agnostic ones. When the request names no faction,
// a mapping scoped to any faction is still used after the agnostic ones,
// matching the built-in tables. Within a scope the most used mapping wins,
// then the lexically first canonical name.
func pickMapping(mappings []domain.AliasMapping, categories []domain.Category, factions []string) (domain.AliasMapping, bool) {
	var scoped, agnostic, other []domain.AliasMapping
	for _, m := range mappings {
		if len(categories) > 0 && !slices.Contains(categories, m.EntityType) {
			continue
		}
		switch {
		case !m.IsFactionScoped():
			agnostic = append(agnostic, m)
		case factionIn(*m.FactionID, factions):
			scoped = append(scoped, m)
		case len(factions) == 0:
			other = append(other, m)
		}
	}

	for _, group := range [][]domain.AliasMapping{scoped, agnostic, other} {
		if len(group) == 0 {
			continue
		}
		return slices.MinFunc(group, func(a, b domain.AliasMapping) int {
			if a.UsageCount != b.UsageCount {
				return cmp.Compare(b.UsageCount, a.UsageCount)
			}
			return cmp.Compare(a.CanonicalName, b.CanonicalName)
		}), true
	}
	return domain.AliasMapping{}, false
}

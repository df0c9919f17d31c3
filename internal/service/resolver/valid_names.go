package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// ValidNames lists the canonical names of a category, optionally with the
// built-in and learned aliases pointing into it.
func (s *Service) ValidNames(ctx context.Context, input ValidNamesInput) (*ValidNamesResult, error) {
	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	faction := strings.TrimSpace(input.Faction)

	out := &ValidNamesResult{
		Category: category,
		Names:    s.index.Names(ctx, category, faction),
		Aliases:  []AliasEntry{},
	}
	if !input.IncludeAliases {
		return out, nil
	}

	for _, a := range s.tables.BuiltinAliases(category, faction) {
		out.Aliases = append(out.Aliases, AliasEntry{
			Alias:     a.Alias,
			Canonical: a.Canonical,
			Faction:   domain.StringPtr(a.Faction),
			Source:    domain.MatchSourceBuiltin,
		})
	}

	if s.aliases == nil {
		return out, nil
	}
	learned, err := s.aliases.ListByCategory(ctx, category, faction)
	if err != nil {
		s.log.WarnContext(ctx, "list learned aliases",
			slog.String("category", category.String()),
			slog.String("error", err.Error()),
		)
		return out, nil
	}
	for _, m := range learned {
		out.Aliases = append(out.Aliases, AliasEntry{
			Alias:     m.Alias,
			Canonical: m.CanonicalName,
			Faction:   m.FactionID,
			Source:    domain.MatchSourceAlias,
		})
	}
	return out, nil
}

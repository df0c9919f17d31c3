// Package alias implements the learned alias store. Every write is a single
// atomic statement so concurrent resolutions of the same alias never lose an
// increment.
package alias

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/wh40k-terms/internal/adapter/postgres"
	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

const columns = "id, alias, canonical_name, entity_type, faction_id, usage_count, created_at"

// Repo provides alias mapping persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new alias repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// FindByAlias returns every mapping of a normalized alias across scopes.
func (r *Repo) FindByAlias(ctx context.Context, alias string) ([]domain.AliasMapping, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx,
		`SELECT `+columns+` FROM alias_mappings WHERE alias = $1`, alias)
	if err != nil {
		return nil, postgres.MapError(err, "alias", alias)
	}

	mappings, err := pgx.CollectRows(rows, collectMapping)
	if err != nil {
		return nil, postgres.MapError(err, "alias", alias)
	}
	return mappings, nil
}

// FindByAliases returns the mappings of several aliases in one round trip.
// Used by the per-request alias loader.
func (r *Repo) FindByAliases(ctx context.Context, aliases []string) ([]domain.AliasMapping, error) {
	if len(aliases) == 0 {
		return []domain.AliasMapping{}, nil
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx,
		`SELECT `+columns+` FROM alias_mappings WHERE alias = ANY($1)`, aliases)
	if err != nil {
		return nil, fmt.Errorf("query alias_mappings: %w", err)
	}

	mappings, err := pgx.CollectRows(rows, collectMapping)
	if err != nil {
		return nil, fmt.Errorf("scan alias_mappings: %w", err)
	}
	return mappings, nil
}

// ListByCategory returns the mappings of one entity type, ordered by usage.
// A non-empty faction keeps faction-agnostic mappings and those of that faction.
func (r *Repo) ListByCategory(ctx context.Context, category domain.Category, faction string) ([]domain.AliasMapping, error) {
	query := postgres.Builder().
		Select(strings.Split(columns, ", ")...).
		From("alias_mappings").
		Where(sq.Eq{"entity_type": string(category)}).
		OrderBy("usage_count DESC", "alias")

	if faction != "" {
		query = query.Where(sq.Or{
			sq.Eq{"faction_id": ""},
			sq.Expr("lower(faction_id) = lower(?)", faction),
		})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build alias list query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list alias_mappings: %w", err)
	}

	mappings, err := pgx.CollectRows(rows, collectMapping)
	if err != nil {
		return nil, fmt.Errorf("scan alias_mappings: %w", err)
	}
	return mappings, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const upsertSQL = `
INSERT INTO alias_mappings (id, alias, canonical_name, entity_type, faction_id, usage_count, created_at)
VALUES ($1, $2, $3, $4, $5, 1, now())
ON CONFLICT (alias, entity_type, faction_id) DO UPDATE
SET usage_count    = alias_mappings.usage_count + 1,
    canonical_name = EXCLUDED.canonical_name,
    updated_at     = now()
RETURNING ` + columns

// Upsert stores m, or bumps the usage count and retargets the existing
// mapping of the same (alias, entity type, faction) scope. The faction is
// stored as its FactionKey so spelling variants share one row.
func (r *Repo) Upsert(ctx context.Context, m domain.AliasMapping) (*domain.AliasMapping, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, upsertSQL,
		m.ID, m.Alias, m.CanonicalName, string(m.EntityType), domain.FactionKey(domain.Deref(m.FactionID)),
	)

	out, err := scanMapping(row)
	if err != nil {
		return nil, postgres.MapError(err, "alias", m.Alias)
	}
	return &out, nil
}

// IncrementUsage bumps the usage count of one mapping in place.
func (r *Repo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`UPDATE alias_mappings SET usage_count = usage_count + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "alias", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alias %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func collectMapping(row pgx.CollectableRow) (domain.AliasMapping, error) {
	return scanMapping(row)
}

// scanMapping maps the '' faction scope back to nil.
func scanMapping(row pgx.Row) (domain.AliasMapping, error) {
	var (
		m       domain.AliasMapping
		cat     string
		faction string
	)
	if err := row.Scan(&m.ID, &m.Alias, &m.CanonicalName, &cat, &faction, &m.UsageCount, &m.CreatedAt); err != nil {
		return domain.AliasMapping{}, err
	}
	m.EntityType = domain.Category(cat)
	m.FactionID = domain.StringPtr(faction)
	return m, nil
}

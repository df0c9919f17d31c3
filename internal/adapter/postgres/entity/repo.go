// Package entity implements the canonical entity store read by the
// candidate index and filled by termctl seed.
package entity

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/wh40k-terms/internal/adapter/postgres"
	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

const table = "canonical_entities"

// Repo provides canonical entity persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new entity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// LoadCandidates returns the entities of the given categories and factions.
// Empty filters are unrestricted. Faction-agnostic entities always match the
// faction filter. Factions compare case-insensitively.
func (r *Repo) LoadCandidates(ctx context.Context, categories []domain.Category, factions []string) ([]domain.CandidateEntity, error) {
	query := postgres.Builder().
		Select("name", "category", "faction").
		From(table).
		OrderBy("category", "name", "faction")

	if len(categories) > 0 {
		cats := make([]string, len(categories))
		for i, c := range categories {
			cats[i] = string(c)
		}
		query = query.Where(sq.Eq{"category": cats})
	}
	if len(factions) > 0 {
		query = query.Where(sq.Or{
			sq.Eq{"faction": ""},
			sq.Expr("lower(faction) = ANY(?)", lowerAll(factions)),
		})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidates query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}

	entities, err := pgx.CollectRows(rows, scanCandidate)
	if err != nil {
		return nil, fmt.Errorf("scan candidates: %w", err)
	}
	return entities, nil
}

// CountByCategory returns the number of entities per category.
func (r *Repo) CountByCategory(ctx context.Context) (map[domain.Category]int, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx,
		`SELECT category, count(*) FROM canonical_entities GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count canonical_entities: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Category]int)
	for rows.Next() {
		var (
			cat string
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.Category(cat)] = n
	}
	return counts, rows.Err()
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// BulkUpsert inserts entities with pgx.Batch. Entities already present in
// their (category, faction, name) scope are left untouched. Returns the
// number of inserted rows.
func (r *Repo) BulkUpsert(ctx context.Context, entities []domain.CandidateEntity) (int, error) {
	if len(entities) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, e := range entities {
		batch.Queue(
			`INSERT INTO canonical_entities (name, category, faction)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (category, lower(faction), name) DO NOTHING`,
			e.Name, string(e.Category), domain.Deref(e.Faction),
		)
	}

	br := postgres.QuerierFromCtx(ctx, r.pool).SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range entities {
		tag, err := br.Exec()
		if err != nil {
			return inserted, postgres.MapError(err, "canonical_entity", "batch")
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// DeleteCategories removes every entity of the given categories. Use it
// inside a transaction together with BulkUpsert to replace a category.
func (r *Repo) DeleteCategories(ctx context.Context, categories []domain.Category) (int, error) {
	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = string(c)
	}

	sql, args, err := postgres.Builder().
		Delete(table).
		Where(sq.Eq{"category": cats}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete canonical_entities: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanCandidate(row pgx.CollectableRow) (domain.CandidateEntity, error) {
	var name, cat, faction string
	if err := row.Scan(&name, &cat, &faction); err != nil {
		return domain.CandidateEntity{}, err
	}
	return domain.CandidateEntity{
		Name:     name,
		Category: domain.Category(cat),
		Faction:  domain.StringPtr(faction),
	}, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

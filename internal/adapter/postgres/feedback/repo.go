// Package feedback implements the feedback item store.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/wh40k-terms/internal/adapter/postgres"
	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

const columns = "id, original_token, entity_type, faction_id, player_index, transcript_context, " +
	"confidence_score, suggestions, status, resolved_to, resolved_by, created_at, resolved_at"

// Repo provides feedback item persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new feedback repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns one item or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FeedbackItem, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx,
		`SELECT `+columns+` FROM feedback_items WHERE id = $1`, id)

	item, err := scanItem(row)
	if err != nil {
		return nil, postgres.MapError(err, "feedback_item", id.String())
	}
	return &item, nil
}

// List returns one page of items, oldest first, and the total count.
func (r *Repo) List(ctx context.Context, f domain.FeedbackFilter) ([]domain.FeedbackItem, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	where := sq.And{}
	if f.Status != nil {
		where = append(where, sq.Eq{"status": string(*f.Status)})
	}

	countSQL, countArgs, err := postgres.Builder().
		Select("count(*)").From("feedback_items").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feedback_items: %w", err)
	}

	listSQL, listArgs, err := postgres.Builder().
		Select(strings.Split(columns, ", ")...).
		From("feedback_items").
		Where(where).
		OrderBy("created_at", "id").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback_items: %w", err)
	}

	items, err := pgx.CollectRows(rows, collectItem)
	if err != nil {
		return nil, 0, fmt.Errorf("scan feedback_items: %w", err)
	}
	return items, total, nil
}

// Stats counts items per status.
func (r *Repo) Stats(ctx context.Context) (domain.FeedbackStats, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx,
		`SELECT status, count(*) FROM feedback_items GROUP BY status`)
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("feedback stats: %w", err)
	}
	defer rows.Close()

	var stats domain.FeedbackStats
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return domain.FeedbackStats{}, fmt.Errorf("scan feedback stats: %w", err)
		}
		switch domain.FeedbackStatus(status) {
		case domain.FeedbackStatusPending:
			stats.Pending = n
		case domain.FeedbackStatusResolved:
			stats.Resolved = n
		case domain.FeedbackStatusIgnored:
			stats.Ignored = n
		}
		stats.Total += n
	}
	return stats, rows.Err()
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a pending item and returns it as stored.
func (r *Repo) Create(ctx context.Context, item *domain.FeedbackItem) (*domain.FeedbackItem, error) {
	suggestions := item.Suggestions
	if suggestions == nil {
		suggestions = []domain.MatchResult{}
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO feedback_items (id, original_token, entity_type, faction_id, player_index,
		                             transcript_context, confidence_score, suggestions, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+columns,
		item.ID, item.OriginalToken, string(item.EntityType), item.FactionID, item.PlayerIndex,
		item.TranscriptContext, item.ConfidenceScore, suggestions, string(domain.FeedbackStatusPending), item.CreatedAt,
	)

	out, err := scanItem(row)
	if err != nil {
		return nil, postgres.MapError(err, "feedback_item", item.ID.String())
	}
	return &out, nil
}

const transitionSQL = `
UPDATE feedback_items
SET status = $2, resolved_to = $3, resolved_by = $4, resolved_at = $5
WHERE id = $1 AND status = 'pending'
RETURNING ` + columns

// Transition moves a pending item to resolved or ignored. The status check is
// part of the UPDATE, so two reviewers racing on one item cannot both win.
// Returns domain.ErrNotFound for an unknown id and domain.ErrConflict when
// the item is no longer pending.
func (r *Repo) Transition(ctx context.Context, id uuid.UUID, to domain.FeedbackStatus, resolvedTo, resolvedBy *string, at time.Time) (*domain.FeedbackItem, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	item, err := scanItem(q.QueryRow(ctx, transitionSQL, id, string(to), resolvedTo, resolvedBy, at))
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "feedback_item", id.String())
	}

	var status string
	err = q.QueryRow(ctx, `SELECT status FROM feedback_items WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return nil, postgres.MapError(err, "feedback_item", id.String())
	}
	return nil, fmt.Errorf("feedback_item %s is %s: %w", id, status, domain.ErrConflict)
}

// DeleteReviewedBefore removes resolved and ignored items reviewed before
// threshold. Pending items are never deleted.
func (r *Repo) DeleteReviewedBefore(ctx context.Context, threshold time.Time) (int64, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`DELETE FROM feedback_items WHERE status <> 'pending' AND resolved_at < $1`, threshold)
	if err != nil {
		return 0, fmt.Errorf("delete reviewed feedback items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func collectItem(row pgx.CollectableRow) (domain.FeedbackItem, error) {
	return scanItem(row)
}

func scanItem(row pgx.Row) (domain.FeedbackItem, error) {
	var (
		item   domain.FeedbackItem
		cat    string
		status string
		player *int32
	)
	err := row.Scan(
		&item.ID, &item.OriginalToken, &cat, &item.FactionID, &player, &item.TranscriptContext,
		&item.ConfidenceScore, &item.Suggestions, &status, &item.ResolvedTo, &item.ResolvedBy,
		&item.CreatedAt, &item.ResolvedAt,
	)
	if err != nil {
		return domain.FeedbackItem{}, err
	}

	item.EntityType = domain.Category(cat)
	item.Status = domain.FeedbackStatus(status)
	if player != nil {
		p := int(*player)
		item.PlayerIndex = &p
	}
	if item.Suggestions == nil {
		item.Suggestions = []domain.MatchResult{}
	}
	return item, nil
}

package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/metrics"
	"github.com/heartmarshall/wh40k-terms/pkg/ctxutil"
)

// Resolve marks a pending item as resolved to a canonical name. With
// PersistMapping the normalized token is learned as an alias; a failed alias
// write is logged and does not fail the resolution.
func (s *Service) Resolve(ctx context.Context, input ResolveInput) (*domain.FeedbackItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	canonical := strings.TrimSpace(input.CanonicalName)
	item, err := s.items.Transition(ctx, input.ID, domain.FeedbackStatusResolved,
		&canonical, reviewer(ctx), s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve feedback item: %w", err)
	}

	metrics.RecordFeedback("resolved")
	s.log.InfoContext(ctx, "feedback resolved",
		slog.String("feedback_id", item.ID.String()),
		slog.String("resolved_to", canonical),
		slog.Bool("persist_mapping", input.PersistMapping),
	)

	if input.PersistMapping {
		s.learnAlias(ctx, item, canonical)
	}

	return item, nil
}

// Ignore marks a pending item as ignored.
func (s *Service) Ignore(ctx context.Context, id uuid.UUID) (*domain.FeedbackItem, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("id", "required")
	}

	item, err := s.items.Transition(ctx, id, domain.FeedbackStatusIgnored, nil, reviewer(ctx), s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("ignore feedback item: %w", err)
	}

	metrics.RecordFeedback("ignored")
	s.log.InfoContext(ctx, "feedback ignored", slog.String("feedback_id", item.ID.String()))

	return item, nil
}

func (s *Service) learnAlias(ctx context.Context, item *domain.FeedbackItem, canonical string) {
	alias := domain.Normalize(item.OriginalToken)
	if alias == "" {
		return
	}

	m, err := s.aliases.Upsert(ctx, domain.AliasMapping{
		Alias:         alias,
		CanonicalName: canonical,
		EntityType:    item.EntityType,
		FactionID:     domain.StringPtr(domain.FactionKey(domain.Deref(item.FactionID))),
	})
	if err != nil {
		metrics.RecordFeedback("alias_failed")
		s.log.ErrorContext(ctx, "persist alias mapping",
			slog.String("feedback_id", item.ID.String()),
			slog.String("alias", alias),
			slog.String("error", err.Error()),
		)
		return
	}

	metrics.RecordFeedback("alias_persisted")
	s.log.InfoContext(ctx, "alias learned",
		slog.String("alias", m.Alias),
		slog.String("canonical", m.CanonicalName),
		slog.Int("usage_count", m.UsageCount),
	)
}

func reviewer(ctx context.Context) *string {
	if r, ok := ctxutil.ReviewerFromCtx(ctx); ok {
		return &r
	}
	return nil
}

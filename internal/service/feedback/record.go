package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/metrics"
)

// Record stores a pending feedback item. Suggestions are ranked and capped
// before storage.
func (s *Service) Record(ctx context.Context, input RecordInput) (*domain.FeedbackItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	suggestions := make([]domain.MatchResult, len(input.Suggestions))
	copy(suggestions, input.Suggestions)
	domain.SortMatches(suggestions)
	if len(suggestions) > s.maxSuggestions {
		suggestions = suggestions[:s.maxSuggestions]
	}

	var faction *string
	if input.FactionID != nil {
		faction = domain.StringPtr(domain.FactionKey(*input.FactionID))
	}

	item, err := s.items.Create(ctx, &domain.FeedbackItem{
		ID:                uuid.New(),
		OriginalToken:     strings.TrimSpace(input.Token),
		EntityType:        input.EntityType,
		FactionID:         faction,
		PlayerIndex:       input.PlayerIndex,
		TranscriptContext: input.TranscriptContext,
		ConfidenceScore:   input.Confidence,
		Suggestions:       suggestions,
		Status:            domain.FeedbackStatusPending,
		CreatedAt:         s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create feedback item: %w", err)
	}

	metrics.RecordFeedback("recorded")
	s.log.InfoContext(ctx, "feedback recorded",
		slog.String("feedback_id", item.ID.String()),
		slog.String("token", item.OriginalToken),
		slog.String("entity_type", item.EntityType.String()),
		slog.Float64("confidence", item.ConfidenceScore),
	)

	return item, nil
}

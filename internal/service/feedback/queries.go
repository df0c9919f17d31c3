package feedback

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// Get returns one feedback item.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.FeedbackItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get feedback item: %w", err)
	}
	return item, nil
}

// List returns one page of items, oldest first.
func (s *Service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	items, total, err := s.items.List(ctx, domain.FeedbackFilter{
		Status: input.Status,
		Limit:  limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback items: %w", err)
	}

	return &ListResult{Items: items, Total: total}, nil
}

// ListPending returns the review queue.
func (s *Service) ListPending(ctx context.Context, limit, offset int) (*ListResult, error) {
	pending := domain.FeedbackStatusPending
	return s.List(ctx, ListInput{Status: &pending, Limit: limit, Offset: offset})
}

// Stats counts items per status.
func (s *Service) Stats(ctx context.Context) (domain.FeedbackStats, error) {
	stats, err := s.items.Stats(ctx)
	if err != nil {
		return domain.FeedbackStats{}, fmt.Errorf("feedback stats: %w", err)
	}
	return stats, nil
}

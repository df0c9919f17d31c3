package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// Purge deletes reviewed items whose review is older than retention.
// The review queue itself is never purged.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, domain.NewValidationError("retention", "must be positive")
	}

	threshold := s.now().UTC().Add(-retention)
	deleted, err := s.items.DeleteReviewedBefore(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("purge feedback: %w", err)
	}

	s.log.InfoContext(ctx, "reviewed feedback purged",
		slog.Int64("deleted", deleted),
		slog.Time("threshold", threshold),
	)
	return deleted, nil
}

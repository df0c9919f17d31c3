package feedback

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

type feedbackRepo interface {
	Create(ctx context.Context, item *domain.FeedbackItem) (*domain.FeedbackItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FeedbackItem, error)
	List(ctx context.Context, f domain.FeedbackFilter) ([]domain.FeedbackItem, int, error)
	Stats(ctx context.Context) (domain.FeedbackStats, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.FeedbackStatus, resolvedTo, resolvedBy *string, at time.Time) (*domain.FeedbackItem, error)
	DeleteReviewedBefore(ctx context.Context, threshold time.Time) (int64, error)
}

type aliasRepo interface {
	Upsert(ctx context.Context, m domain.AliasMapping) (*domain.AliasMapping, error)
}

const (
	DefaultMaxSuggestions = 5
	DefaultListLimit      = 50
	MaxListLimit          = 200
)

// Service records low-confidence resolutions and applies reviewer decisions.
// Resolving an item can teach the engine a new alias.
type Service struct {
	items          feedbackRepo
	aliases        aliasRepo
	maxSuggestions int
	now            func() time.Time
	log            *slog.Logger
}

// NewService creates a new Feedback service. A non-positive maxSuggestions
// falls back to DefaultMaxSuggestions.
func NewService(
	log *slog.Logger,
	items feedbackRepo,
	aliases aliasRepo,
	maxSuggestions int,
) *Service {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	return &Service{
		items:          items,
		aliases:        aliases,
		maxSuggestions: maxSuggestions,
		now:            time.Now,
		log:            log.With("service", "feedback"),
	}
}

// ListResult holds one page of feedback items.
type ListResult struct {
	Items []domain.FeedbackItem
	Total int
}

// Package dataloader provides per-request DataLoaders that batch the alias
// lookups of one validate-terms call into a single SQL query. Loaders call
// the alias repository directly, bypassing the service layer.
package dataloader

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

type aliasRepo interface {
	FindByAliases(ctx context.Context, aliases []string) ([]domain.AliasMapping, error)
}

// Loaders contains the per-request DataLoaders. Created per-request via NewLoaders.
type Loaders struct {
	AliasesByKey *dataloader.Loader[string, []domain.AliasMapping]
}

// NewLoaders creates a new set of DataLoaders backed by the given repository.
// Must be called per-request (loaders cache results within a single request).
func NewLoaders(repo aliasRepo) *Loaders {
	return &Loaders{
		AliasesByKey: newLoader(newAliasesBatchFn(repo)),
	}
}

// FindByAlias satisfies the lookup's alias finder, so a Loaders can stand in
// for the repository for the lifetime of one request.
func (l *Loaders) FindByAlias(ctx context.Context, alias string) ([]domain.AliasMapping, error) {
	return l.AliasesByKey.Load(ctx, alias)()
}

// newLoader creates a dataloader.Loader with standard batch parameters.
func newLoader[V any](batchFn dataloader.BatchFunc[string, V]) *dataloader.Loader[string, V] {
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[string, V](wait),
		dataloader.WithBatchCapacity[string, V](maxBatch),
	)
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type contextKey string

const loadersKey contextKey = "dataloaders"

// WithLoaders stores Loaders in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext retrieves Loaders from the context, or nil when the
// middleware did not run.
func FromContext(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

package dataloader

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// ---------------------------------------------------------------------------
// Alias mappings by normalized alias
// ---------------------------------------------------------------------------

func newAliasesBatchFn(repo aliasRepo) dataloader.BatchFunc[string, []domain.AliasMapping] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[[]domain.AliasMapping] {
		mappings, err := repo.FindByAliases(ctx, keys)
		if err != nil {
			return errorResults[[]domain.AliasMapping](len(keys), err)
		}

		grouped := make(map[string][]domain.AliasMapping, len(keys))
		for _, m := range mappings {
			grouped[m.Alias] = append(grouped[m.Alias], m)
		}

		return mapResults(keys, grouped, emptySlice[domain.AliasMapping])
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// errorResults returns a slice of error results for all keys.
func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// mapResults maps grouped results back to key order, using defaultFn for missing keys.
func mapResults[K comparable, V any](keys []K, grouped map[K]V, defaultFn func() V) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))
	for i, key := range keys {
		if v, ok := grouped[key]; ok {
			results[i] = &dataloader.Result[V]{Data: v}
		} else {
			results[i] = &dataloader.Result[V]{Data: defaultFn()}
		}
	}
	return results
}

// emptySlice returns a non-nil empty slice.
func emptySlice[T any]() []T {
	return []T{}
}

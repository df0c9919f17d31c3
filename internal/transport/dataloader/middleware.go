package dataloader

import (
	"net/http"

	"github.com/heartmarshall/wh40k-terms/internal/matching"
)

// Middleware creates an HTTP middleware that instantiates per-request
// DataLoaders and routes the request's alias lookups through them.
func Middleware(repo aliasRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loaders := NewLoaders(repo)
			ctx := WithLoaders(r.Context(), loaders)
			ctx = matching.WithAliasFinder(ctx, loaders)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

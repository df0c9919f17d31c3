package rest

import (
	"net/http"

	"github.com/heartmarshall/wh40k-terms/internal/transport/middleware"
)

// RouterConfig lists the handlers and route-scoped middleware of the API.
// Nil middleware is skipped.
type RouterConfig struct {
	Health   *HealthHandler
	Terms    *TermsHandler
	Feedback *FeedbackHandler
	Metrics  http.Handler

	// RateLimit guards the API routes; probes and /metrics are exempt.
	RateLimit middleware.Middleware
	// Batching installs the per-request alias loaders.
	Batching middleware.Middleware
	// ReviewerAuth guards the feedback review transitions.
	ReviewerAuth middleware.Middleware
}

// NewRouter registers every route on a ServeMux.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	api := compose(cfg.RateLimit)
	batched := compose(cfg.RateLimit, cfg.Batching)
	review := compose(cfg.RateLimit, cfg.ReviewerAuth)

	mux.HandleFunc("GET /live", cfg.Health.Live)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)
	mux.HandleFunc("GET /health", cfg.Health.Health)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	mux.Handle("POST /validate-terms", batched(http.HandlerFunc(cfg.Terms.ValidateTerms)))
	mux.Handle("POST /resolve-term", batched(http.HandlerFunc(cfg.Terms.ResolveTerm)))
	mux.Handle("GET /valid-names/{category}", api(http.HandlerFunc(cfg.Terms.ValidNames)))
	mux.Handle("GET /fuzzy-search", api(http.HandlerFunc(cfg.Terms.FuzzySearch)))

	mux.Handle("POST /feedback", api(http.HandlerFunc(cfg.Feedback.Record)))
	mux.Handle("GET /feedback", api(http.HandlerFunc(cfg.Feedback.List)))
	mux.Handle("GET /feedback/stats", api(http.HandlerFunc(cfg.Feedback.Stats)))
	mux.Handle("GET /feedback/{id}", api(http.HandlerFunc(cfg.Feedback.Get)))
	mux.Handle("POST /feedback/{id}/resolve", review(http.HandlerFunc(cfg.Feedback.Resolve)))
	mux.Handle("POST /feedback/{id}/ignore", review(http.HandlerFunc(cfg.Feedback.Ignore)))

	return mux
}

func compose(mws ...middleware.Middleware) middleware.Middleware {
	active := make([]middleware.Middleware, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			active = append(active, mw)
		}
	}
	return middleware.Chain(active...)
}

package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/service/resolver"
)

// resolverService defines the resolver operations served over HTTP.
type resolverService interface {
	ValidateTerms(ctx context.Context, input resolver.ValidateInput) (*resolver.ValidateOutput, error)
	ResolveTerm(ctx context.Context, input resolver.ResolveInput) (*resolver.ResolveOutput, error)
	ValidNames(ctx context.Context, input resolver.ValidNamesInput) (*resolver.ValidNamesResult, error)
	FuzzySearch(ctx context.Context, input resolver.FuzzySearchInput) ([]domain.MatchResult, error)
}

// TermsHandler serves the term resolution endpoints.
type TermsHandler struct {
	svc resolverService
	log *slog.Logger
}

// NewTermsHandler creates a TermsHandler.
func NewTermsHandler(svc resolverService, logger *slog.Logger) *TermsHandler {
	return &TermsHandler{svc: svc, log: logger.With("handler", "terms")}
}

type validateTermsRequest struct {
	Terms         []string `json:"terms"`
	Factions      []string `json:"factions"`
	Categories    []string `json:"categories"`
	MinConfidence *float64 `json:"minConfidence"`
}

type validateResultResponse struct {
	Term       string               `json:"term"`
	Match      *string              `json:"match"`
	Category   *domain.Category     `json:"category"`
	Faction    *string              `json:"faction"`
	Confidence float64              `json:"confidence"`
	Source     domain.MatchSource   `json:"source,omitempty"`
	Alternates []domain.MatchResult `json:"alternates"`
}

type validateTermsResponse struct {
	Results   []validateResultResponse `json:"results"`
	Truncated bool                     `json:"truncated"`
	Rejected  int                      `json:"rejected,omitempty"`
}

type resolveTermRequest struct {
	Term           string   `json:"term"`
	FactionHints   []string `json:"factionHints"`
	ContextSnippet string   `json:"contextSnippet"`
	EntityType     string   `json:"entityType"`
	PlayerIndex    *int     `json:"playerIndex"`
}

type rankedCandidateResponse struct {
	Name       string             `json:"name"`
	Category   domain.Category    `json:"category"`
	Faction    *string            `json:"faction"`
	Confidence float64            `json:"confidence"`
	Source     domain.MatchSource `json:"source"`
	Relevance  float64            `json:"relevance"`
}

type resolveTermResponse struct {
	Term           string                    `json:"term"`
	Ambiguous      bool                      `json:"ambiguous"`
	Candidates     []rankedCandidateResponse `json:"candidates"`
	Recommendation *string                   `json:"recommendation"`
	FeedbackID     *string                   `json:"feedbackId,omitempty"`
}

type aliasResponse struct {
	Alias     string             `json:"alias"`
	Canonical string             `json:"canonical"`
	Faction   *string            `json:"faction"`
	Source    domain.MatchSource `json:"source"`
}

type validNamesResponse struct {
	Category domain.Category `json:"category"`
	Names    []string        `json:"names"`
	Aliases  []aliasResponse `json:"aliases,omitempty"`
}

type fuzzySearchResponse struct {
	Query   string               `json:"query"`
	Results []domain.MatchResult `json:"results"`
}

// ValidateTerms handles POST /validate-terms.
func (h *TermsHandler) ValidateTerms(w http.ResponseWriter, r *http.Request) {
	var req validateTermsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.ValidateTerms(r.Context(), resolver.ValidateInput{
		Terms:         req.Terms,
		Factions:      req.Factions,
		Categories:    req.Categories,
		MinConfidence: req.MinConfidence,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := validateTermsResponse{
		Results:   make([]validateResultResponse, len(out.Results)),
		Truncated: out.Truncated,
		Rejected:  out.Rejected,
	}
	for i, res := range out.Results {
		resp.Results[i] = validateResultResponse{
			Term:       res.Term,
			Match:      res.Match,
			Category:   res.Category,
			Faction:    res.Faction,
			Confidence: res.Confidence,
			Source:     res.Source,
			Alternates: res.Alternates,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResolveTerm handles POST /resolve-term.
func (h *TermsHandler) ResolveTerm(w http.ResponseWriter, r *http.Request) {
	var req resolveTermRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.ResolveTerm(r.Context(), resolver.ResolveInput{
		Term:           req.Term,
		FactionHints:   req.FactionHints,
		ContextSnippet: req.ContextSnippet,
		EntityType:     req.EntityType,
		PlayerIndex:    req.PlayerIndex,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := resolveTermResponse{
		Term:           out.Term,
		Ambiguous:      out.Ambiguous,
		Candidates:     make([]rankedCandidateResponse, len(out.Candidates)),
		Recommendation: out.Recommendation,
	}
	for i, c := range out.Candidates {
		resp.Candidates[i] = rankedCandidateResponse{
			Name:       c.Name,
			Category:   c.Category,
			Faction:    c.Faction,
			Confidence: c.Confidence,
			Source:     c.Source,
			Relevance:  c.Relevance,
		}
	}
	if out.FeedbackID != nil {
		id := out.FeedbackID.String()
		resp.FeedbackID = &id
	}
	writeJSON(w, http.StatusOK, resp)
}

// ValidNames handles GET /valid-names/{category}?faction=&includeAliases=.
func (h *TermsHandler) ValidNames(w http.ResponseWriter, r *http.Request) {
	includeAliases, err := queryBool(r, "includeAliases")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out, err := h.svc.ValidNames(r.Context(), resolver.ValidNamesInput{
		Category:       r.PathValue("category"),
		Faction:        r.URL.Query().Get("faction"),
		IncludeAliases: includeAliases,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := validNamesResponse{Category: out.Category, Names: out.Names}
	if resp.Names == nil {
		resp.Names = []string{}
	}
	if includeAliases {
		resp.Aliases = make([]aliasResponse, len(out.Aliases))
		for i, a := range out.Aliases {
			resp.Aliases[i] = aliasResponse{Alias: a.Alias, Canonical: a.Canonical, Faction: a.Faction, Source: a.Source}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// FuzzySearch handles GET /fuzzy-search?query=&categories=&faction=&limit=.
func (h *TermsHandler) FuzzySearch(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	query := r.URL.Query().Get("query")
	results, err := h.svc.FuzzySearch(r.Context(), resolver.FuzzySearchInput{
		Query:      query,
		Categories: queryList(r, "categories"),
		Faction:    r.URL.Query().Get("faction"),
		Limit:      limit,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, fuzzySearchResponse{Query: query, Results: results})
}

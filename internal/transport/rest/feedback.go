package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
	"github.com/heartmarshall/wh40k-terms/internal/service/feedback"
)

// feedbackService defines the feedback store operations served over HTTP.
type feedbackService interface {
	Record(ctx context.Context, input feedback.RecordInput) (*domain.FeedbackItem, error)
	Resolve(ctx context.Context, input feedback.ResolveInput) (*domain.FeedbackItem, error)
	Ignore(ctx context.Context, id uuid.UUID) (*domain.FeedbackItem, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.FeedbackItem, error)
	List(ctx context.Context, input feedback.ListInput) (*feedback.ListResult, error)
	Stats(ctx context.Context) (domain.FeedbackStats, error)
}

// FeedbackHandler serves the human review queue.
type FeedbackHandler struct {
	svc feedbackService
	log *slog.Logger
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(svc feedbackService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{svc: svc, log: logger.With("handler", "feedback")}
}

type recordFeedbackRequest struct {
	Token             string               `json:"token"`
	EntityType        string               `json:"entityType"`
	FactionID         *string              `json:"factionId"`
	PlayerIndex       *int                 `json:"playerIndex"`
	TranscriptContext *string              `json:"transcriptContext"`
	Confidence        float64              `json:"confidence"`
	Suggestions       []domain.MatchResult `json:"suggestions"`
}

type resolveFeedbackRequest struct {
	CanonicalName  string `json:"canonicalName"`
	PersistMapping bool   `json:"persistMapping"`
}

type feedbackItemResponse struct {
	ID                string                `json:"id"`
	OriginalToken     string                `json:"originalToken"`
	EntityType        domain.Category       `json:"entityType"`
	FactionID         *string               `json:"factionId"`
	PlayerIndex       *int                  `json:"playerIndex"`
	TranscriptContext *string               `json:"transcriptContext"`
	ConfidenceScore   float64               `json:"confidenceScore"`
	Suggestions       []domain.MatchResult  `json:"suggestions"`
	Status            domain.FeedbackStatus `json:"status"`
	ResolvedTo        *string               `json:"resolvedTo"`
	ResolvedBy        *string               `json:"resolvedBy"`
	CreatedAt         time.Time             `json:"createdAt"`
	ResolvedAt        *time.Time            `json:"resolvedAt"`
}

type feedbackListResponse struct {
	Items  []feedbackItemResponse `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

func toFeedbackResponse(item *domain.FeedbackItem) feedbackItemResponse {
	suggestions := item.Suggestions
	if suggestions == nil {
		suggestions = []domain.MatchResult{}
	}
	return feedbackItemResponse{
		ID:                item.ID.String(),
		OriginalToken:     item.OriginalToken,
		EntityType:        item.EntityType,
		FactionID:         item.FactionID,
		PlayerIndex:       item.PlayerIndex,
		TranscriptContext: item.TranscriptContext,
		ConfidenceScore:   item.ConfidenceScore,
		Suggestions:       suggestions,
		Status:            item.Status,
		ResolvedTo:        item.ResolvedTo,
		ResolvedBy:        item.ResolvedBy,
		CreatedAt:         item.CreatedAt,
		ResolvedAt:        item.ResolvedAt,
	}
}

// Record handles POST /feedback.
func (h *FeedbackHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := domain.ParseCategory(req.EntityType)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	item, err := h.svc.Record(r.Context(), feedback.RecordInput{
		Token:             req.Token,
		EntityType:        category,
		FactionID:         req.FactionID,
		PlayerIndex:       req.PlayerIndex,
		TranscriptContext: req.TranscriptContext,
		Confidence:        req.Confidence,
		Suggestions:       req.Suggestions,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFeedbackResponse(item))
}

// List handles GET /feedback?status=pending&limit=50&offset=0.
// status=all lists every status; the default is pending.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", feedback.DefaultListLimit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input := feedback.ListInput{Limit: limit, Offset: offset}
	switch raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))); raw {
	case "all":
	case "":
		status := domain.FeedbackStatusPending
		input.Status = &status
	default:
		status := domain.FeedbackStatus(raw)
		input.Status = &status
	}

	res, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := feedbackListResponse{
		Items:  make([]feedbackItemResponse, len(res.Items)),
		Total:  res.Total,
		Limit:  limit,
		Offset: offset,
	}
	for i := range res.Items {
		resp.Items[i] = toFeedbackResponse(&res.Items[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /feedback/{id}.
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponse(item))
}

// Resolve handles POST /feedback/{id}/resolve.
func (h *FeedbackHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req resolveFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.svc.Resolve(r.Context(), feedback.ResolveInput{
		ID:             id,
		CanonicalName:  req.CanonicalName,
		PersistMapping: req.PersistMapping,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponse(item))
}

// Ignore handles POST /feedback/{id}/ignore.
func (h *FeedbackHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Ignore(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponse(item))
}

// Stats handles GET /feedback/stats.
func (h *FeedbackHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *FeedbackHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback id")
		return uuid.Nil, false
	}
	return id, true
}

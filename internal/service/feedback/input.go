package feedback

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

// RecordInput holds the parameters for recording a low-confidence resolution.
type RecordInput struct {
	Token             string
	EntityType        domain.Category
	FactionID         *string
	PlayerIndex       *int
	TranscriptContext *string
	Confidence        float64
	Suggestions       []domain.MatchResult
}

// Validate checks all fields and collects all errors.
func (i RecordInput) Validate() error {
	var errs []domain.FieldError

	token := strings.TrimSpace(i.Token)
	if token == "" {
		errs = append(errs, domain.FieldError{Field: "token", Message: "required"})
	} else if domain.Normalize(token) == "" {
		errs = append(errs, domain.FieldError{Field: "token", Message: "must contain letters or digits"})
	}
	if utf8.RuneCountInString(token) > 200 {
		errs = append(errs, domain.FieldError{Field: "token", Message: "max 200 characters"})
	}
	if !i.EntityType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "entity_type", Message: "unknown category"})
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		errs = append(errs, domain.FieldError{Field: "confidence", Message: "must be between 0 and 1"})
	}
	if i.PlayerIndex != nil && *i.PlayerIndex < 0 {
		errs = append(errs, domain.FieldError{Field: "player_index", Message: "must be non-negative"})
	}
	if i.TranscriptContext != nil && utf8.RuneCountInString(*i.TranscriptContext) > 2000 {
		errs = append(errs, domain.FieldError{Field: "transcript_context", Message: "max 2000 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ResolveInput holds a reviewer's decision for one item.
type ResolveInput struct {
	ID             uuid.UUID
	CanonicalName  string
	PersistMapping bool
}

// Validate checks all fields and collects all errors.
func (i ResolveInput) Validate() error {
	var errs []domain.FieldError

	if i.ID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}
	name := strings.TrimSpace(i.CanonicalName)
	if name == "" {
		errs = append(errs, domain.FieldError{Field: "canonical_name", Message: "required"})
	}
	if utf8.RuneCountInString(name) > 200 {
		errs = append(errs, domain.FieldError{Field: "canonical_name", Message: "max 200 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds the parameters for listing feedback items.
// A nil Status lists every status.
type ListInput struct {
	Status *domain.FeedbackStatus
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > MaxListLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "max 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/wh40k-terms/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if got := MapError(nil, "alias", "cartel"); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	got := MapError(pgx.ErrNoRows, "feedback_item", "42")

	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := "feedback_item 42: not found"; got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_WrappedNoRows(t *testing.T) {
	t.Parallel()

	got := MapError(fmt.Errorf("scan row: %w", pgx.ErrNoRows), "alias", "cartel")

	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(wrapped ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
}

func TestMapError_PgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrAlreadyExists},
		{"23503", domain.ErrNotFound},
		{"23514", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			got := MapError(&pgconn.PgError{Code: tt.code}, "alias", "cartel")
			if !errors.Is(got, tt.want) {
				t.Errorf("MapError(%s) = %v, want wrapping %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMapError_ContextPassthrough(t *testing.T) {
	t.Parallel()

	for _, ctxErr := range []error{context.DeadlineExceeded, context.Canceled} {
		got := MapError(ctxErr, "canonical_entity", "unit")
		if !errors.Is(got, ctxErr) {
			t.Errorf("MapError(%v) lost the context error: %v", ctxErr, got)
		}
		if errors.Is(got, domain.ErrNotFound) {
			t.Errorf("MapError(%v) must not map to ErrNotFound", ctxErr)
		}
	}
}

func TestMapError_UnknownPgCode(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "40001", Message: "serialization failure"}
	got := MapError(pgErr, "alias", "cartel")

	var target *pgconn.PgError
	if !errors.As(got, &target) {
		t.Fatalf("MapError should keep the original pg error: %v", got)
	}
	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrAlreadyExists, domain.ErrValidation} {
		if errors.Is(got, sentinel) {
			t.Errorf("unexpected mapping to %v", sentinel)
		}
	}
}

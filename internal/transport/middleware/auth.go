package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/wh40k-terms/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateReviewerToken(token string) (string, error)
}

// ReviewerAuth requires a valid reviewer bearer token and stores the
// reviewer name in the request context.
func ReviewerAuth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			reviewer, err := validator.ValidateReviewerToken(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			noteReviewer(w, reviewer)
			next.ServeHTTP(w, r.WithContext(ctxutil.WithReviewer(r.Context(), reviewer)))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

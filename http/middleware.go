package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/aicreat/aicreat/auth"
)

type subjectKey struct{}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(raw string) (auth.Claims, error)
}

// AuthMiddleware creates middleware that requires a valid bearer token.
// Pass nil to disable authentication (public access).
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				HandleError(w, ErrMissingToken)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated subject stored by AuthMiddleware.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey{}).(string)
	return s, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

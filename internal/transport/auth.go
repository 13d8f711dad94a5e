package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rpggio/carelog/internal/domain/activity"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type authorKey struct{}

// AuthorResolver resolves the acting author from a bearer token.
type AuthorResolver interface {
	ResolveAuthor(ctx context.Context, token string) (activity.Author, error)
}

// AuthorFromContext returns the acting author from context, if present.
func AuthorFromContext(ctx context.Context) (activity.Author, bool) {
	author, ok := ctx.Value(authorKey{}).(activity.Author)
	return author, ok
}

// AuthMiddleware enforces bearer token authentication. Browsers cannot set
// headers on websocket upgrades, so access_token in the query is accepted too.
func AuthMiddleware(resolver AuthorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			author, err := resolver.ResolveAuthor(r.Context(), token)
			if err != nil || author.ID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authorKey{}, author)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DefaultAuthorMiddleware attributes every request to author. Used when auth
// is disabled.
func DefaultAuthorMiddleware(author activity.Author) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), authorKey{}, author)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

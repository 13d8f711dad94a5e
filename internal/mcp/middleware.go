package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/carelog/internal/domain/activity"
)

type contextKey int

const authorKey contextKey = iota

// WithAuthor stores the acting author in ctx.
func WithAuthor(ctx context.Context, author activity.Author) context.Context {
	return context.WithValue(ctx, authorKey, author)
}

// getAuthor extracts the acting author from context.
func getAuthor(ctx context.Context) activity.Author {
	v, _ := ctx.Value(authorKey).(activity.Author)
	return v
}

// AuthorResolver resolves the acting author from a bearer token.
type AuthorResolver interface {
	ResolveAuthor(ctx context.Context, token string) (activity.Author, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver AuthorResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			author, err := resolver.ResolveAuthor(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if author.ID == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			return next(WithAuthor(ctx, author), method, req)
		}
	}
}

// noAuthMiddleware injects a default author when auth is disabled.
func noAuthMiddleware(defaultAuthor activity.Author) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(WithAuthor(ctx, defaultAuthor), method, req)
		}
	}
}

package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/carelog/internal/domain/activity"
)

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      AuthorResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultAuthor activity.Author
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "carelog",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode: always disable auth (local dev only)
	authMW := noAuthMiddleware(cfg.DefaultAuthor)
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled && cfg.Resolver != nil {
		authMW = authMiddleware(cfg.Resolver)
	}
	// The first middleware in one call is outermost, so logging sees the author.
	server.AddReceivingMiddleware(authMW, trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/carelog/internal/mcp"
	"github.com/rpggio/carelog/internal/transport"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP, JSON-RPC and the live timeline over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.Transport.Mode == "stdio" {
				return runStdio(cmd.Context(), opts)
			}
			if cmd.Flags().Changed("host") {
				opts.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				opts.cfg.Server.Port = port
			}
			a, err := opts.open(os.Stdout)
			if err != nil {
				return err
			}
			return runHTTP(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}

func newStdioCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout",
		Long:  "Serve MCP over stdin/stdout. Auth is disabled; writes use the configured default author.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStdio(cmd.Context(), opts)
		},
	}
}

func runStdio(ctx context.Context, opts *rootOptions) error {
	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	a, err := opts.open(os.Stderr)
	if err != nil {
		return err
	}
	a.logger.Info("starting stdio transport", "auth", "disabled")

	server := mcp.NewServer(mcp.Config{
		Services:      a.services(),
		TransportMode: "stdio",
		DefaultAuthor: a.defaultAuthor(),
		Logger:        a.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or context is canceled
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// newHTTPHandler assembles the full HTTP surface for a.
func newHTTPHandler(a *app) http.Handler {
	resolver := a.apiKeys
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.services(),
		Resolver:      resolver,
		AuthEnabled:   a.cfg.Auth.Enabled,
		TransportMode: "http",
		DefaultAuthor: a.defaultAuthor(),
		Logger:        a.logger,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	auth := transport.DefaultAuthorMiddleware(a.defaultAuthor())
	if a.cfg.Auth.Enabled {
		auth = transport.AuthMiddleware(resolver)
	}

	return transport.NewServer(transport.Options{
		RPC:      mcp.NewHandler(a.services()),
		Timeline: a.timeline,
		MCP:      mcpHandler,
		Auth:     auth,
		Logger:   a.logger,
	})
}

func runHTTP(ctx context.Context, a *app) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           newHTTPHandler(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", addr, "auth", a.cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(ctx, a.logger, httpServer, errCh)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}

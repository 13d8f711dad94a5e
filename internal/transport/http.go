package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/timeline"
)

// RPCHandler handles JSON-RPC method dispatch.
type RPCHandler interface {
	Handle(ctx context.Context, author activity.Author, method string, params json.RawMessage) (any, error)
}

// TimelineSubscriber opens live views of a child's day.
type TimelineSubscriber interface {
	Subscribe(childID, dateKey string, onChange timeline.ChangeFunc, onError timeline.ErrorFunc) (*timeline.Subscription, error)
}

// Options configures the HTTP router. Nil handlers leave their routes unmounted.
type Options struct {
	RPC      RPCHandler
	Timeline TimelineSubscriber
	// MCP is the streamable MCP handler. It authenticates on its own.
	MCP    http.Handler
	Auth   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	rpc      RPCHandler
	timeline TimelineSubscriber
	logger   *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{rpc: opts.RPC, timeline: opts.Timeline, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		if srv.rpc != nil {
			r.Post("/rpc", srv.handleRPC)
		}
		if srv.timeline != nil {
			r.Get("/children/{childID}/timeline/{date}/live", srv.handleLive)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	author, ok := AuthorFromContext(r.Context())
	if !ok || author.ID == "" {
		http.Error(w, "missing author", http.StatusUnauthorized)
		return
	}

	result, err := s.rpc.Handle(r.Context(), author, req.Method, req.Params)
	if err != nil {
		s.logger.DebugContext(r.Context(), "rpc failed", "method", req.Method, "author_id", author.ID, "error", err)
		WriteHandlerError(w, req.ID, err)
		return
	}

	WriteResult(w, req.ID, result)
}

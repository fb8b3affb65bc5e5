// Package transport binds an MCP server to stdio or to streamable HTTP.
// The choice of transport never changes tool behavior.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds graceful HTTP shutdown
const DefaultShutdownTimeout = 10 * time.Second

// Options selects and configures the transport
type Options struct {
	// Addr is the HTTP listen address (e.g. ":8010"). Empty means stdio.
	Addr string

	// Name is reported by the health endpoint
	Name string

	Security        SecurityConfig
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Run serves server until ctx is cancelled or the peer disconnects
func Run(ctx context.Context, server *mcp.Server, opts Options) error {
	if opts.Addr == "" {
		opts.Logger.Info("Serving MCP over stdio")
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, server, opts)
}

// Serve runs the HTTP transport on ln and shuts it down gracefully when
// ctx is cancelled.
func Serve(ctx context.Context, ln net.Listener, server *mcp.Server, opts Options) error {
	handler := NewHandler(server, opts)
	defer handler.Close()

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts.Logger.Info("Serving MCP over HTTP",
			"address", ln.Addr().String(),
			"endpoint", "/mcp",
			"rate_limit", opts.Security.RateLimit)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		opts.Logger.Info("Shutting down HTTP transport")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Handler is the HTTP front of an MCP server
type Handler struct {
	router   chi.Router
	security *SecurityMiddleware
}

// NewHandler builds the router: /mcp (and /mcp/) for the streamable MCP
// endpoint, /health and /metrics.
func NewHandler(server *mcp.Server, opts Options) *Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	if len(opts.Security.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.Security.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Mcp-Session-Id", "Mcp-Protocol-Version", RequestIDHeader},
			ExposedHeaders: []string{"Mcp-Session-Id", RequestIDHeader},
		}))
	}

	security := NewSecurityMiddleware(mcpHandler, opts.Logger, opts.Security)
	r.Handle("/mcp", security)
	r.Handle("/mcp/", security)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"server": opts.Name,
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	return &Handler{router: r, security: security}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Close releases background resources
func (h *Handler) Close() {
	h.security.Close()
}

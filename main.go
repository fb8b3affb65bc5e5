// Confluence MCP Server - A Model Context Protocol server for Confluence Cloud
// Provides read-only tools for listing spaces, reading pages, CQL search and page trees
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/confluence-mcp-server/internal/confluence"
	"github.com/olgasafonova/confluence-mcp-server/internal/logging"
	"github.com/olgasafonova/confluence-mcp-server/internal/transport"
	"github.com/olgasafonova/confluence-mcp-server/tools"
	"github.com/olgasafonova/confluence-mcp-server/tracing"
)

// recoverPanic logs a panic with its stack instead of crashing silently
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

const (
	ServerName    = "ConfluenceMCP"
	ServerVersion = "1.0.0"
)

const instructions = `Confluence MCP Server provides read-only access to a Confluence Cloud site.

Available tools:
- list_spaces: List spaces (id, key, name)
- get_page: Get a page by ID with its body (storage format by default)
- search_cql: Search content with a CQL query (id, title)
- get_children: List direct child pages (id, title)

Configure via environment variables:
- CONFLUENCE_SITE: Site host, e.g. your-domain.atlassian.net
- CONFLUENCE_EMAIL: Account email
- CONFLUENCE_API_TOKEN: API token`

func main() {
	httpAddr := flag.String("http", "", "serve streamable HTTP on this address (e.g. :8010) instead of stdio")
	flag.Parse()

	// Logging goes to stderr; stdout is the MCP stream
	logger := logging.New(os.Stderr)

	if err := run(*httpAddr, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(httpAddr string, logger *slog.Logger) error {
	defer recoverPanic(logger, "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig("confluence-mcp-server", ServerVersion))
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	config := confluence.LoadConfig()
	if err := config.Validate(); err != nil {
		// Credentials are checked again on every call, so the server still starts
		logger.Warn("Confluence configuration incomplete, tool calls will fail until it is set", "error", err)
	}

	server := newServer(config, logger)

	logger.Info("Starting Confluence MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"site", config.Site,
	)

	return transport.Run(ctx, server, transport.Options{
		Addr:     httpAddr,
		Name:     ServerName,
		Security: transport.LoadSecurityConfig(),
		Logger:   logger,
	})
}

// newServer builds the MCP server with the Confluence tools registered
func newServer(config *confluence.Config, logger *slog.Logger) *mcp.Server {
	client := confluence.NewClient(config, confluence.WithLogger(logger))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions,
	})

	tools.NewHandlerRegistry(client, nil, logger).RegisterGroup(server, tools.GroupConfluence)
	return server
}

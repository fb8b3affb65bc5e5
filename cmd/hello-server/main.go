// HelloMCP Server - a minimal MCP server with two tools, one resource and one prompt
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/confluence-mcp-server/internal/hello"
	"github.com/olgasafonova/confluence-mcp-server/internal/logging"
	"github.com/olgasafonova/confluence-mcp-server/internal/transport"
	"github.com/olgasafonova/confluence-mcp-server/tools"
	"github.com/olgasafonova/confluence-mcp-server/tracing"
)

// ServerVersion is reported in the MCP handshake
const ServerVersion = "1.0.0"

func main() {
	httpAddr := flag.String("http", "", "serve streamable HTTP on this address (e.g. :8000) instead of stdio")
	flag.Parse()

	logger := logging.New(os.Stderr)

	if err := run(*httpAddr, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(httpAddr string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig("hello-mcp-server", ServerVersion))
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	config := hello.LoadConfig()
	server := newServer(config, logger)

	logger.Info("Starting HelloMCP server",
		"name", config.ServerName,
		"version", ServerVersion,
	)

	return transport.Run(ctx, server, transport.Options{
		Addr:     httpAddr,
		Name:     config.ServerName,
		Security: transport.LoadSecurityConfig(),
		Logger:   logger,
	})
}

// newServer builds the MCP server with the hello tools, resource and prompt
func newServer(config *hello.Config, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    config.ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger: logger,
	})

	tools.NewHandlerRegistry(nil, hello.NewService(config), logger).RegisterGroup(server, tools.GroupHello)
	return server
}

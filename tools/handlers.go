package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/confluence-mcp-server/internal/confluence"
	"github.com/olgasafonova/confluence-mcp-server/internal/hello"
	"github.com/olgasafonova/confluence-mcp-server/metrics"
	"github.com/olgasafonova/confluence-mcp-server/tracing"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
// Either backend may be nil when the server only serves the other group.
type HandlerRegistry struct {
	confluence *confluence.Client
	hello      *hello.Service
	logger     *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(confluenceClient *confluence.Client, helloService *hello.Service, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		confluence: confluenceClient,
		hello:      helloService,
		logger:     logger,
	}
}

// RegisterGroup registers every tool, resource and prompt of a group with
// the MCP server and returns the number of tools registered.
func (h *HandlerRegistry) RegisterGroup(server *mcp.Server, group string) int {
	count := 0
	for _, spec := range ToolsByGroup(group) {
		if h.registerByName(server, spec) {
			count++
		}
	}
	resources := h.RegisterResources(server, group)
	prompts := h.RegisterPrompts(server, group)

	h.logger.Info("Registered tools",
		"group", group,
		"tools", count,
		"resources", resources,
		"prompts", prompts)
	return count
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	if !h.hasBackend(spec.Group) {
		h.logger.Error("No backend for group, tool not registered", "group", spec.Group, "tool", spec.Name)
		return false
	}

	tool := h.buildTool(spec)

	switch spec.Method {
	// Confluence tools
	case "ListSpaces":
		register(h, server, tool, spec, h.confluence.ListSpacesMCP)
	case "GetPage":
		register(h, server, tool, spec, h.confluence.GetPageMCP)
	case "SearchCQL":
		register(h, server, tool, spec, h.confluence.SearchCQLMCP)
	case "GetChildren":
		register(h, server, tool, spec, h.confluence.GetChildrenMCP)

	// Hello tools
	case "Greet":
		register(h, server, tool, spec, h.hello.GreetMCP)
	case "Add":
		register(h, server, tool, spec, h.hello.AddMCP)

	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

func (h *HandlerRegistry) hasBackend(group string) bool {
	switch group {
	case GroupConfluence:
		return h.confluence != nil
	case GroupHello:
		return h.hello != nil
	}
	return false
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	} else {
		annotations.DestructiveHint = ptr(false)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// textContenter is implemented by results that have a plain-text rendering.
type textContenter interface {
	TextContent() string
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the adapter method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, out Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(
			attribute.String("mcp.tool.group", spec.Group),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, callErr := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if callErr != nil {
			span.RecordError(callErr)
			span.SetStatus(codes.Error, callErr.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			h.logger.Warn("Tool failed", "tool", spec.Name, "error", callErr)
			return nil, out, fmt.Errorf("%s failed: %w", spec.Name, callErr)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)

		// Results with a text rendering get it as their content block;
		// everything else is serialized from the structured output.
		if tc, ok := any(result).(textContenter); ok {
			res = &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: tc.TextContent()}},
			}
		}
		return res, result, nil
	})
}

// recoverPanic recovers from panics in handlers and turns them into errors.
func (h *HandlerRegistry) recoverPanic(name string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(name).Inc()
		h.logger.Error("Panic recovered",
			"tool", name,
			"panic", rec,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s failed: internal error", name)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "group", spec.Group}

	// Add extractable fields from args using type assertions
	switch a := args.(type) {
	case confluence.ListSpacesArgs:
		attrs = append(attrs, "limit", limitAttr(a.Limit))
	case confluence.GetPageArgs:
		attrs = append(attrs, "page_id", a.PageID, "body_format", a.BodyFormat)
	case confluence.SearchCQLArgs:
		attrs = append(attrs, "cql", a.CQL, "limit", limitAttr(a.Limit))
	case confluence.GetChildrenArgs:
		attrs = append(attrs, "page_id", a.PageID, "limit", limitAttr(a.Limit))
	case hello.GreetArgs:
		attrs = append(attrs, "name", a.Name)
	case hello.AddArgs:
		attrs = append(attrs, "a", a.A, "b", a.B)
	}

	// Add extractable fields from result
	switch r := result.(type) {
	case confluence.ListSpacesResult:
		attrs = append(attrs, "spaces", len(r.Spaces))
	case confluence.SearchCQLResult:
		attrs = append(attrs, "results_count", len(r.Results))
	case confluence.GetChildrenResult:
		attrs = append(attrs, "children", len(r.Children))
	case map[string]any:
		if title, ok := r["title"].(string); ok {
			attrs = append(attrs, "title", title)
		}
	case hello.AddResult:
		attrs = append(attrs, "result", r.Result)
	}

	h.logger.Info("Tool executed", attrs...)
}

func limitAttr(limit *int) any {
	if limit == nil {
		return "default"
	}
	return *limit
}

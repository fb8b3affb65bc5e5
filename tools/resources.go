package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/confluence-mcp-server/internal/hello"
	"github.com/olgasafonova/confluence-mcp-server/metrics"
	"github.com/olgasafonova/confluence-mcp-server/tracing"
)

// RegisterResources registers the static resources of a group.
func (h *HandlerRegistry) RegisterResources(server *mcp.Server, group string) int {
	count := 0
	for _, spec := range AllResources {
		if spec.Group != group {
			continue
		}
		read, ok := h.resourceReader(spec)
		if !ok {
			h.logger.Error("Unknown method, resource not registered", "method", spec.Method, "uri", spec.URI)
			continue
		}
		server.AddResource(&mcp.Resource{
			URI:         spec.URI,
			Name:        spec.Name,
			Description: spec.Description,
			MIMEType:    spec.MIMEType,
		}, h.readHandler(spec, read))
		count++
	}
	return count
}

// RegisterPrompts registers the prompt templates of a group.
func (h *HandlerRegistry) RegisterPrompts(server *mcp.Server, group string) int {
	count := 0
	for _, spec := range AllPrompts {
		if spec.Group != group {
			continue
		}
		render, ok := h.promptRenderer(spec)
		if !ok {
			h.logger.Error("Unknown method, prompt not registered", "method", spec.Method, "prompt", spec.Name)
			continue
		}

		args := make([]*mcp.PromptArgument, 0, len(spec.Arguments))
		for _, a := range spec.Arguments {
			args = append(args, &mcp.PromptArgument{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Required,
			})
		}
		server.AddPrompt(&mcp.Prompt{
			Name:        spec.Name,
			Description: spec.Description,
			Arguments:   args,
		}, h.promptHandler(spec, render))
		count++
	}
	return count
}

func (h *HandlerRegistry) resourceReader(spec ResourceSpec) (func() string, bool) {
	switch spec.Method {
	case "Message":
		return hello.Message, true
	}
	return nil, false
}

func (h *HandlerRegistry) promptRenderer(spec PromptSpec) (func(map[string]string) string, bool) {
	switch spec.Method {
	case "Summarize":
		return func(args map[string]string) string {
			return hello.RenderSummarize(args["text"])
		}, true
	}
	return nil, false
}

func (h *HandlerRegistry) readHandler(spec ResourceSpec, read func() string) mcp.ResourceHandler {
	name := "resource:" + spec.Name
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (res *mcp.ReadResourceResult, err error) {
		defer h.recoverPanic(name, &err)

		_, span := tracing.StartSpan(ctx, "mcp.resource.read")
		defer span.End()
		tracing.AddResourceAttributes(span, spec.URI)

		start := time.Now()
		text := read()
		metrics.RecordRequest(name, time.Since(start).Seconds(), true)
		span.SetStatus(codes.Ok, "")

		h.logger.Info("Resource read", "uri", spec.URI)
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      spec.URI,
				MIMEType: spec.MIMEType,
				Text:     text,
			}},
		}, nil
	}
}

func (h *HandlerRegistry) promptHandler(spec PromptSpec, render func(map[string]string) string) mcp.PromptHandler {
	name := "prompt:" + spec.Name
	return func(ctx context.Context, req *mcp.GetPromptRequest) (res *mcp.GetPromptResult, err error) {
		defer h.recoverPanic(name, &err)

		_, span := tracing.StartSpan(ctx, "mcp.prompt.get")
		defer span.End()
		tracing.AddPromptAttributes(span, spec.Name)

		start := time.Now()
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		for _, a := range spec.Arguments {
			if _, ok := args[a.Name]; a.Required && !ok {
				err := fmt.Errorf("%s: missing required argument %q", spec.Name, a.Name)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				metrics.RecordRequest(name, time.Since(start).Seconds(), false)
				return nil, err
			}
		}

		text := render(args)
		metrics.RecordRequest(name, time.Since(start).Seconds(), true)
		span.SetStatus(codes.Ok, "")

		h.logger.Info("Prompt rendered", "prompt", spec.Name, "length", len(text))
		return &mcp.GetPromptResult{
			Description: spec.Description,
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			}},
		}, nil
	}
}

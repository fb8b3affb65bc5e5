package democlient

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type toolCall struct {
	name string
	args map[string]any
}

// ConfluenceOptions configures the Confluence demo script
type ConfluenceOptions struct {
	// PageID enables the get_page and get_children calls
	PageID string
}

// RunConfluence runs the Confluence demo: ping, list_spaces, search_cql and,
// with a page id, get_page and get_children. Calls run one at a time and the
// first failure stops the script.
func RunConfluence(ctx context.Context, session *mcp.ClientSession, w io.Writer, opts ConfluenceOptions) error {
	if err := session.Ping(ctx, &mcp.PingParams{}); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	calls := []toolCall{
		{"list_spaces", map[string]any{"limit": 5}},
		{"search_cql", map[string]any{"cql": "type=page", "limit": 3}},
	}
	if opts.PageID != "" {
		calls = append(calls,
			toolCall{"get_page", map[string]any{"page_id": opts.PageID}},
			toolCall{"get_children", map[string]any{"page_id": opts.PageID, "limit": 5}},
		)
	}

	for i, call := range calls {
		text, err := callTool(ctx, session, call.name, call.args)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s]\n%s\n", call.name, text)
	}
	return nil
}

// HelloOptions configures the HelloMCP demo script
type HelloOptions struct {
	// Name is passed to greet
	Name string

	// Text is passed to the summarize prompt
	Text string

	// Quick skips the closing notice
	Quick bool
}

// Defaults for the HelloMCP demo
const (
	DefaultHelloName = "MCP 사용자"
	DefaultHelloText = "MCP는 언어 모델 에이전트와 외부 데이터 소스를 연결하는 프로토콜입니다. 서버는 도구, 리소스, 프롬프트를 노출하고 클라이언트는 이를 호출합니다."
)

// RunHello runs the HelloMCP demo: introspection, greet, add, the message
// resource and the summarize prompt. Resource and prompt failures are
// reported as skipped.
func RunHello(ctx context.Context, session *mcp.ClientSession, w io.Writer, opts HelloOptions) error {
	if opts.Name == "" {
		opts.Name = DefaultHelloName
	}
	if opts.Text == "" {
		opts.Text = DefaultHelloText
	}

	if err := session.Ping(ctx, &mcp.PingParams{}); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}
	resources, err := session.ListResources(ctx, &mcp.ListResourcesParams{})
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}
	prompts, err := session.ListPrompts(ctx, &mcp.ListPromptsParams{})
	if err != nil {
		return fmt.Errorf("list prompts: %w", err)
	}

	fmt.Fprintln(w, "\n[Tools]")
	toolNames := make(map[string]bool, len(tools.Tools))
	for _, t := range tools.Tools {
		toolNames[t.Name] = true
		fmt.Fprintf(w, " - %s: %s\n", t.Name, firstLine(t.Description))
	}

	fmt.Fprintln(w, "\n[Resources]")
	for _, r := range resources.Resources {
		fmt.Fprintf(w, " - %s\n", r.URI)
	}

	fmt.Fprintln(w, "\n[Prompts]")
	for _, p := range prompts.Prompts {
		fmt.Fprintf(w, " - %s\n", p.Name)
	}

	if toolNames["greet"] {
		text, err := callTool(ctx, session, "greet", map[string]any{"name": opts.Name})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n[greet]\n%s\n", text)
	}

	if toolNames["add"] {
		text, err := callTool(ctx, session, "add", map[string]any{"a": 7, "b": 5})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n[add]\n%s\n", text)
	}

	const messageURI = "resource://hello/message"
	if res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: messageURI}); err != nil {
		fmt.Fprintf(w, "\n[resource skipped] %v\n", err)
	} else {
		fmt.Fprintf(w, "\n[%s]\n%s\n", messageURI, Render(FromResourceContents(res.Contents), res.Contents))
	}

	prompt, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "summarize",
		Arguments: map[string]string{"text": opts.Text},
	})
	if err != nil {
		fmt.Fprintf(w, "\n[prompt skipped] %v\n", err)
	} else {
		fmt.Fprintln(w, "\n[prompt summarize → messages]")
		for _, m := range prompt.Messages {
			fmt.Fprintf(w, " - %s: %s\n", m.Role, messageText(m))
		}
	}

	if !opts.Quick {
		fmt.Fprintln(w, "\n(종료하려면 Ctrl+C) 대화형 모드는 생략했습니다.")
	}
	return nil
}

// callTool invokes a tool and renders its result. A tool-level error
// result is returned as an error carrying the rendered text.
func callTool(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) (string, error) {
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	text := RenderToolResult(res)
	if res.IsError {
		return "", fmt.Errorf("%s: %s", name, text)
	}
	return text, nil
}

// messageText returns the text of a prompt message, or "<nil>" when it has none
func messageText(m *mcp.PromptMessage) string {
	if m == nil {
		return "<nil>"
	}
	if b, ok := FromContent(m.Content).(TextBlock); ok {
		return b.Text
	}
	return "<nil>"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

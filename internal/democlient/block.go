// Package democlient implements the scripted demo clients for the Confluence
// and HelloMCP servers: connect, run a fixed call sequence, print results.
package democlient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Block is a content block as the demo clients see it: either a TextBlock
// or an OtherBlock. Callers switch on the concrete type.
type Block interface {
	isBlock()
}

// TextBlock is a block carrying non-empty text
type TextBlock struct {
	Text string
}

// OtherBlock is any block without printable text
type OtherBlock struct {
	Kind  string
	Value any
}

func (TextBlock) isBlock()  {}
func (OtherBlock) isBlock() {}

// FromContent classifies one MCP content block
func FromContent(c mcp.Content) Block {
	switch v := c.(type) {
	case *mcp.TextContent:
		if v.Text != "" {
			return TextBlock{Text: v.Text}
		}
		return OtherBlock{Kind: "text", Value: v}
	case *mcp.ImageContent:
		return OtherBlock{Kind: "image", Value: v}
	case *mcp.AudioContent:
		return OtherBlock{Kind: "audio", Value: v}
	case *mcp.ResourceLink:
		return OtherBlock{Kind: "resource_link", Value: v}
	case *mcp.EmbeddedResource:
		return OtherBlock{Kind: "resource", Value: v}
	default:
		return OtherBlock{Kind: fmt.Sprintf("%T", c), Value: c}
	}
}

// FromContents classifies a list of MCP content blocks
func FromContents(contents []mcp.Content) []Block {
	blocks := make([]Block, 0, len(contents))
	for _, c := range contents {
		blocks = append(blocks, FromContent(c))
	}
	return blocks
}

// FromResourceContents classifies the contents of a read resource
func FromResourceContents(contents []*mcp.ResourceContents) []Block {
	blocks := make([]Block, 0, len(contents))
	for _, c := range contents {
		if c != nil && c.Text != "" {
			blocks = append(blocks, TextBlock{Text: c.Text})
			continue
		}
		blocks = append(blocks, OtherBlock{Kind: "resource", Value: c})
	}
	return blocks
}

// Render joins the text blocks with newlines. Without any text block the
// fallback value is dumped as JSON instead.
func Render(blocks []Block, fallback any) string {
	var texts []string
	for _, b := range blocks {
		switch b := b.(type) {
		case TextBlock:
			texts = append(texts, b.Text)
		case OtherBlock:
			// no text to show
		}
	}
	if len(texts) > 0 {
		return strings.Join(texts, "\n")
	}
	return dumpJSON(fallback)
}

// RenderToolResult renders a tool call result
func RenderToolResult(res *mcp.CallToolResult) string {
	if res == nil {
		return "null"
	}
	return Render(FromContents(res.Content), res)
}

func dumpJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

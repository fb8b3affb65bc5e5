// Package hello implements the HelloMCP demo server: two tools, one static
// resource and one prompt template.
package hello

import (
	"context"
	"fmt"
	"strconv"
)

const (
	// MessageURI is the address of the static text resource
	MessageURI = "resource://hello/message"

	// MessageText is the body served at MessageURI
	MessageText = "이건 HelloMCP 리소스 예제입니다."

	// SummarizePrompt is the name of the summarization prompt
	SummarizePrompt = "summarize"

	summarizeTemplate = "아래 글을 한국어로 한 문단으로 정확하게 요약하세요:\n\n%s"
)

// Service answers HelloMCP requests. It has no mutable state.
type Service struct {
	config *Config
}

// NewService creates a Service for the given configuration
func NewService(config *Config) *Service {
	return &Service{config: config}
}

// Config returns the configuration the service was built with
func (s *Service) Config() *Config {
	return s.config
}

// Greet builds the greeting for name
func (s *Service) Greet(name string) string {
	return fmt.Sprintf("%s, %s님!", s.config.Greeting, name)
}

// Add returns a + b
func Add(a, b int) int {
	return a + b
}

// Message returns the static resource text
func Message() string {
	return MessageText
}

// RenderSummarize fills the summarization template with text.
// The text is inserted verbatim, empty text included.
func RenderSummarize(text string) string {
	return fmt.Sprintf(summarizeTemplate, text)
}

// GreetMCP is the tool adapter for greet
func (s *Service) GreetMCP(_ context.Context, args GreetArgs) (GreetResult, error) {
	return GreetResult{Result: s.Greet(args.Name)}, nil
}

// AddMCP is the tool adapter for add
func (s *Service) AddMCP(_ context.Context, args AddArgs) (AddResult, error) {
	return AddResult{Result: Add(args.A, args.B)}, nil
}

// TextContent renders the greeting as plain text
func (r GreetResult) TextContent() string {
	return r.Result
}

// TextContent renders the sum as plain text
func (r AddResult) TextContent() string {
	return strconv.Itoa(r.Result)
}

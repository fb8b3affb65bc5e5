// Package tools provides a metadata-driven registry for MCP tool, resource
// and prompt definitions. Servers pick a group and register everything in it
// declaratively instead of wiring handlers by hand in main.go.
package tools

// Groups partition the registry by server
const (
	GroupConfluence = "confluence"
	GroupHello      = "hello"
)

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to an adapter method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "search_cql")
	Name string

	// Method is the adapter method name (e.g., "SearchCQL")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (browse, read, search, demo)
	Category string

	// Group is the server this tool belongs to
	Group string

	// ReadOnly indicates the tool doesn't modify upstream state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ResourceSpec defines a static resource for declarative registration
type ResourceSpec struct {
	URI         string
	Name        string
	Method      string
	Description string
	MIMEType    string
	Group       string
}

// PromptArgSpec describes one prompt argument
type PromptArgSpec struct {
	Name        string
	Description string
	Required    bool
}

// PromptSpec defines a prompt template for declarative registration
type PromptSpec struct {
	Name        string
	Method      string
	Description string
	Arguments   []PromptArgSpec
	Group       string
}

// ToolsByGroup returns the tools registered for a server group
func ToolsByGroup(group string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Group == group {
			out = append(out, spec)
		}
	}
	return out
}

// ToolsByCategory returns the tools in a category
func ToolsByCategory(category string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			out = append(out, spec)
		}
	}
	return out
}

// ToolNames returns the names of every known tool
func ToolNames() []string {
	names := make([]string, 0, len(AllTools))
	for _, spec := range AllTools {
		names = append(names, spec.Name)
	}
	return names
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}

package tools

import "github.com/olgasafonova/confluence-mcp-server/internal/hello"

// AllTools defines every tool of both servers.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// CONFLUENCE TOOLS
	// ==========================================================================
	{
		Name:     "list_spaces",
		Method:   "ListSpaces",
		Title:    "List Confluence Spaces",
		Category: "browse",
		Group:    GroupConfluence,
		Description: `List Confluence spaces visible to the configured account.

USE WHEN: User asks "what spaces are there", "show me the Confluence spaces", "which space holds X" or needs a space key before searching.

NOT FOR: Finding pages by content (use search_cql instead).

PARAMETERS:
- limit: Max spaces (default 25, clamped to 1-100)

RETURNS: spaces with id, key and name. Only the first page of results is returned.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_page",
		Method:   "GetPage",
		Title:    "Get Confluence Page",
		Category: "read",
		Group:    GroupConfluence,
		Description: `Fetch a single Confluence page by ID, including its body.

USE WHEN: User says "open page 12345", "show me the content of this page", or a page ID is known from search_cql or get_children.

NOT FOR: Finding a page by title or text (use search_cql first).

PARAMETERS:
- page_id: Page ID (required)
- body_format: storage (default), atlas_doc_format or view

RETURNS: The page object exactly as Confluence returns it.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "search_cql",
		Method:   "SearchCQL",
		Title:    "Search Confluence with CQL",
		Category: "search",
		Group:    GroupConfluence,
		Description: `Search Confluence content with a CQL query.

USE WHEN: User asks "find pages about X", "search Confluence for X", "pages in space DEV labelled runbook".

NOT FOR: Listing spaces (use list_spaces) or walking a page tree (use get_children).

PARAMETERS:
- cql: CQL expression, e.g. type=page AND text ~ "deploy" (required)
- limit: Max results (default 10, clamped to 1-50)

RETURNS: results with id and title. Either may be null when Confluence omits it.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get_children",
		Method:   "GetChildren",
		Title:    "Get Child Pages",
		Category: "browse",
		Group:    GroupConfluence,
		Description: `List the direct child pages of a Confluence page.

USE WHEN: User says "what is under this page", "list sub-pages of X", "show the page tree".

NOT FOR: Reading page content (use get_page).

PARAMETERS:
- page_id: Parent page ID (required)
- limit: Max children (default 25, clamped to 1-100)

RETURNS: children with id and title.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// HELLO TOOLS
	// ==========================================================================
	{
		Name:     "greet",
		Method:   "Greet",
		Title:    "Greet",
		Category: "demo",
		Group:    GroupHello,
		Description: `Return a greeting for a name.

USE WHEN: User says "say hello to X", "greet X".

PARAMETERS:
- name: Name to greet (required)

RETURNS: The greeting text.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "add",
		Method:   "Add",
		Title:    "Add Numbers",
		Category: "demo",
		Group:    GroupHello,
		Description: `Add two integers.

USE WHEN: User asks "what is 7 plus 5", "add these numbers".

PARAMETERS:
- a: First integer (required)
- b: Second integer (required)

RETURNS: The sum.`,
		ReadOnly:   true,
		Idempotent: true,
	},
}

// AllResources contains all static resources
var AllResources = []ResourceSpec{
	{
		URI:         hello.MessageURI,
		Name:        "hello_message",
		Method:      "Message",
		Description: "간단한 리소스 메시지.",
		MIMEType:    "text/plain",
		Group:       GroupHello,
	},
}

// AllPrompts contains all prompt templates
var AllPrompts = []PromptSpec{
	{
		Name:        hello.SummarizePrompt,
		Method:      "Summarize",
		Description: "주어진 글을 한 문단으로 요약하도록 지시하는 프롬프트를 생성합니다.",
		Arguments: []PromptArgSpec{
			{Name: "text", Description: "요약할 글", Required: true},
		},
		Group: GroupHello,
	},
}

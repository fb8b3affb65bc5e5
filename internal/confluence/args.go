package confluence

// ListSpacesArgs contains parameters for listing spaces
type ListSpacesArgs struct {
	Limit *int `json:"limit,omitempty" jsonschema:"Maximum number of spaces to return (default 25, clamped to 1-100)"`
}

// ListSpacesResult is the result of listing spaces
type ListSpacesResult struct {
	Spaces []Space `json:"spaces"`
}

// GetPageArgs contains parameters for fetching a page
type GetPageArgs struct {
	PageID     string `json:"page_id" jsonschema:"Confluence page ID"`
	BodyFormat string `json:"body_format,omitempty" jsonschema:"Body representation: storage (default), atlas_doc_format or view"`
}

// SearchCQLArgs contains parameters for a CQL search
type SearchCQLArgs struct {
	CQL   string `json:"cql" jsonschema:"Confluence Query Language expression, e.g. type=page AND space=DEV"`
	Limit *int   `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10, clamped to 1-50)"`
}

// SearchCQLResult is the result of a CQL search
type SearchCQLResult struct {
	Results []SearchResult `json:"results"`
}

// GetChildrenArgs contains parameters for listing child pages
type GetChildrenArgs struct {
	PageID string `json:"page_id" jsonschema:"Parent page ID"`
	Limit  *int   `json:"limit,omitempty" jsonschema:"Maximum number of children (default 25, clamped to 1-100)"`
}

// GetChildrenResult is the result of listing child pages
type GetChildrenResult struct {
	Children []ChildPage `json:"children"`
}

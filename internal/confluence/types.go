package confluence

// ResultsResponse is the envelope shared by the list endpoints.
// Entries are kept as generic objects because their shape differs between
// the v2 API and the v1 search API.
type ResultsResponse struct {
	Results []map[string]any `json:"results"`
	Links   map[string]any   `json:"_links,omitempty"`
}

// Space is a reduced projection of a Confluence space
type Space struct {
	ID   any `json:"id"`
	Key  any `json:"key"`
	Name any `json:"name"`
}

// SearchResult is a reduced projection of a CQL search hit.
// Either field is null when the upstream entry carries neither shape.
type SearchResult struct {
	ID    any `json:"id"`
	Title any `json:"title"`
}

// ChildPage is a reduced projection of a direct child page
type ChildPage struct {
	ID    any `json:"id"`
	Title any `json:"title"`
}

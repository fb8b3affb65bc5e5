package confluence

import (
	"context"

	apierrors "github.com/olgasafonova/confluence-mcp-server/internal/errors"
)

// MCP Tool wrapper methods
// These methods wrap the client methods with Args/Result types for MCP integration.

// ListSpacesMCP lists spaces projected to {id, key, name}
func (c *Client) ListSpacesMCP(ctx context.Context, args ListSpacesArgs) (ListSpacesResult, error) {
	limit := effectiveLimit(args.Limit, DefaultSpacesLimit, MaxSpacesLimit)

	resp, err := c.ListSpaces(ctx, limit)
	if err != nil {
		return ListSpacesResult{}, err
	}

	spaces := make([]Space, 0, len(resp.Results))
	for i, s := range resp.Results {
		space, err := toSpace(i, s)
		if err != nil {
			return ListSpacesResult{}, err
		}
		spaces = append(spaces, space)
	}

	return ListSpacesResult{Spaces: spaces}, nil
}

// GetPageMCP returns the upstream page object unmodified
func (c *Client) GetPageMCP(ctx context.Context, args GetPageArgs) (map[string]any, error) {
	format := args.BodyFormat
	if format == "" {
		format = DefaultBodyFormat
	}
	return c.GetPage(ctx, args.PageID, format)
}

// SearchCQLMCP runs a CQL search and projects each hit to {id, title}
func (c *Client) SearchCQLMCP(ctx context.Context, args SearchCQLArgs) (SearchCQLResult, error) {
	limit := effectiveLimit(args.Limit, DefaultSearchLimit, MaxSearchLimit)

	resp, err := c.SearchContent(ctx, args.CQL, limit)
	if err != nil {
		return SearchCQLResult{}, err
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, entry := range resp.Results {
		results = append(results, toSearchResult(entry))
	}

	return SearchCQLResult{Results: results}, nil
}

// GetChildrenMCP lists the direct children of a page projected to {id, title}
func (c *Client) GetChildrenMCP(ctx context.Context, args GetChildrenArgs) (GetChildrenResult, error) {
	limit := effectiveLimit(args.Limit, DefaultChildrenLimit, MaxChildrenLimit)

	resp, err := c.GetChildren(ctx, args.PageID, limit)
	if err != nil {
		return GetChildrenResult{}, err
	}

	children := make([]ChildPage, 0, len(resp.Results))
	for i, p := range resp.Results {
		child, err := toChildPage(i, p)
		if err != nil {
			return GetChildrenResult{}, err
		}
		children = append(children, child)
	}

	return GetChildrenResult{Children: children}, nil
}

// toSearchResult reads id and title from the top level first and falls back
// to the nested "content" object. Either may end up nil.
func toSearchResult(entry map[string]any) SearchResult {
	content, _ := entry["content"].(map[string]any)
	return SearchResult{
		ID:    firstTruthy(entry["id"], content["id"]),
		Title: firstTruthy(entry["title"], content["title"]),
	}
}

// toSpace copies id, key and name; every field must be present.
func toSpace(index int, entry map[string]any) (Space, error) {
	fields, err := requireFields("space", index, entry, "id", "key", "name")
	if err != nil {
		return Space{}, err
	}
	return Space{ID: fields[0], Key: fields[1], Name: fields[2]}, nil
}

// toChildPage copies id and title from the top level only. Unlike search
// results there is no nested fallback.
func toChildPage(index int, entry map[string]any) (ChildPage, error) {
	fields, err := requireFields("child page", index, entry, "id", "title")
	if err != nil {
		return ChildPage{}, err
	}
	return ChildPage{ID: fields[0], Title: fields[1]}, nil
}

func requireFields(entity string, index int, entry map[string]any, names ...string) ([]any, error) {
	values := make([]any, len(names))
	for i, name := range names {
		v, ok := entry[name]
		if !ok {
			return nil, apierrors.NewShapeError(entity, index, name)
		}
		values[i] = v
	}
	return values, nil
}

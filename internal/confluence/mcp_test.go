package confluence

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	apierrors "github.com/olgasafonova/confluence-mcp-server/internal/errors"
)

func intPtr(v int) *int { return &v }

// =============================================================================
// list_spaces
// =============================================================================

func TestListSpacesMCP_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/api/v2/spaces" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{"id": "98306", "key": "DEV", "name": "Development", "type": "global", "status": "current"},
				{"id": "98307", "key": "OPS", "name": "Operations", "homepageId": "1"}
			],
			"_links": {"next": "/wiki/api/v2/spaces?cursor=abc"}
		}`))
	})

	result, err := client.ListSpacesMCP(ctx(), ListSpacesArgs{Limit: intPtr(5)})
	if err != nil {
		t.Fatalf("ListSpacesMCP failed: %v", err)
	}

	if len(result.Spaces) != 2 {
		t.Fatalf("got %d spaces, want 2", len(result.Spaces))
	}
	want := Space{ID: "98306", Key: "DEV", Name: "Development"}
	if result.Spaces[0] != want {
		t.Errorf("Spaces[0] = %+v, want %+v", result.Spaces[0], want)
	}

	// Projection drops every other upstream field
	raw, _ := json.Marshal(result.Spaces[1])
	if string(raw) != `{"id":"98307","key":"OPS","name":"Operations"}` {
		t.Errorf("projection = %s", raw)
	}
}

func TestListSpacesMCP_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	})

	result, err := client.ListSpacesMCP(ctx(), ListSpacesArgs{})
	if err != nil {
		t.Fatalf("ListSpacesMCP failed: %v", err)
	}
	if result.Spaces == nil || len(result.Spaces) != 0 {
		t.Errorf("Spaces = %#v, want empty non-nil slice", result.Spaces)
	}

	raw, _ := json.Marshal(result)
	if string(raw) != `{"spaces":[]}` {
		t.Errorf("json = %s, want empty list", raw)
	}
}

func TestListSpacesMCP_MissingResultsKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	result, err := client.ListSpacesMCP(ctx(), ListSpacesArgs{})
	if err != nil {
		t.Fatalf("ListSpacesMCP failed: %v", err)
	}
	if len(result.Spaces) != 0 {
		t.Errorf("got %d spaces, want 0", len(result.Spaces))
	}
}

func TestListSpacesMCP_MissingField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"id": "1", "name": "No key"}]}`))
	})

	_, err := client.ListSpacesMCP(ctx(), ListSpacesArgs{})
	var shapeErr *apierrors.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("err = %v, want *ShapeError", err)
	}
	if shapeErr.Field != "key" || shapeErr.Index != 0 {
		t.Errorf("ShapeError = %+v", shapeErr)
	}
}

// =============================================================================
// Limit clamping
// =============================================================================

// limitRecorder returns a handler that stores the forwarded limit.
func limitRecorder(got *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*got = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{"results": []}`))
	}
}

func TestLimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		limit *int
		want  map[string]int // operation -> forwarded limit
	}{
		{"omitted", nil, map[string]int{"spaces": 25, "search": 10, "children": 25}},
		{"negative", intPtr(-7), map[string]int{"spaces": 1, "search": 1, "children": 1}},
		{"zero", intPtr(0), map[string]int{"spaces": 1, "search": 1, "children": 1}},
		{"one", intPtr(1), map[string]int{"spaces": 1, "search": 1, "children": 1}},
		{"in range", intPtr(40), map[string]int{"spaces": 40, "search": 40, "children": 40}},
		{"between ceilings", intPtr(75), map[string]int{"spaces": 75, "search": 50, "children": 75}},
		{"above ceilings", intPtr(1000), map[string]int{"spaces": 100, "search": 50, "children": 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			client := newTestClient(t, limitRecorder(&got))

			if _, err := client.ListSpacesMCP(ctx(), ListSpacesArgs{Limit: tt.limit}); err != nil {
				t.Fatalf("ListSpacesMCP: %v", err)
			}
			if got != strconv.Itoa(tt.want["spaces"]) {
				t.Errorf("list_spaces limit = %s, want %d", got, tt.want["spaces"])
			}

			if _, err := client.SearchCQLMCP(ctx(), SearchCQLArgs{CQL: "type=page", Limit: tt.limit}); err != nil {
				t.Fatalf("SearchCQLMCP: %v", err)
			}
			if got != strconv.Itoa(tt.want["search"]) {
				t.Errorf("search_cql limit = %s, want %d", got, tt.want["search"])
			}

			if _, err := client.GetChildrenMCP(ctx(), GetChildrenArgs{PageID: "1", Limit: tt.limit}); err != nil {
				t.Fatalf("GetChildrenMCP: %v", err)
			}
			if got != strconv.Itoa(tt.want["children"]) {
				t.Errorf("get_children limit = %s, want %d", got, tt.want["children"])
			}
		})
	}
}

// =============================================================================
// get_page
// =============================================================================

func TestGetPageMCP_ReturnsRawObject(t *testing.T) {
	const body = `{"id":"123456789","status":"current","title":"Runbook","spaceId":"98306","version":{"number":7},"body":{"storage":{"value":"<p>Hi</p>","representation":"storage"}}}`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/api/v2/pages/123456789" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("body-format"); got != "storage" {
			t.Errorf("body-format = %q, want storage", got)
		}
		_, _ = w.Write([]byte(body))
	})

	page, err := client.GetPageMCP(ctx(), GetPageArgs{PageID: "123456789"})
	if err != nil {
		t.Fatalf("GetPageMCP failed: %v", err)
	}

	var want map[string]any
	_ = json.Unmarshal([]byte(body), &want)
	gotJSON, _ := json.Marshal(page)
	wantJSON, _ := json.Marshal(want)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("page = %s\nwant %s", gotJSON, wantJSON)
	}
}

func TestGetPageMCP_BodyFormat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("body-format"); got != "atlas_doc_format" {
			t.Errorf("body-format = %q, want atlas_doc_format", got)
		}
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})

	if _, err := client.GetPageMCP(ctx(), GetPageArgs{PageID: "1", BodyFormat: "atlas_doc_format"}); err != nil {
		t.Fatalf("GetPageMCP failed: %v", err)
	}
}

func TestGetPageMCP_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"status":404,"code":"NOT_FOUND","title":"Not Found"}]}`))
	})

	page, err := client.GetPageMCP(ctx(), GetPageArgs{PageID: "does-not-exist"})
	if err == nil {
		t.Fatal("expected error for unknown page")
	}
	if page != nil {
		t.Errorf("page = %v, want nil on failure", page)
	}
	if apierrors.StatusCode(err) != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apierrors.StatusCode(err))
	}
}

// =============================================================================
// search_cql
// =============================================================================

func TestSearchCQLMCP_DualShapeProjection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/rest/api/content/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("cql"); got != `type=page AND title ~ "on-call"` {
			t.Errorf("cql = %q", got)
		}
		_, _ = w.Write([]byte(`{"results": [
			{"id": "1", "title": "Top level", "content": {"id": "nested-1", "title": "Nested"}},
			{"content": {"id": "2", "title": "Only nested"}},
			{"excerpt": "neither shape"},
			{"id": "", "title": "", "content": {"id": "4", "title": "Falls back on empty"}},
			{"id": "5", "content": {"title": "Mixed"}},
			{"id": "6", "title": "Null content", "content": null}
		]}`))
	})

	result, err := client.SearchCQLMCP(ctx(), SearchCQLArgs{CQL: `type=page AND title ~ "on-call"`})
	if err != nil {
		t.Fatalf("SearchCQLMCP failed: %v", err)
	}

	want := []SearchResult{
		{ID: "1", Title: "Top level"},
		{ID: "2", Title: "Only nested"},
		{ID: nil, Title: nil},
		{ID: "4", Title: "Falls back on empty"},
		{ID: "5", Title: "Mixed"},
		{ID: "6", Title: "Null content"},
	}
	if len(result.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(result.Results), len(want))
	}
	for i := range want {
		if result.Results[i] != want[i] {
			t.Errorf("Results[%d] = %+v, want %+v", i, result.Results[i], want[i])
		}
	}

	raw, _ := json.Marshal(result.Results[2])
	if string(raw) != `{"id":null,"title":null}` {
		t.Errorf("absent fields should serialize as null, got %s", raw)
	}
}

func TestSearchCQLMCP_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":400,"message":"Could not parse cql : type=="}`))
	})

	result, err := client.SearchCQLMCP(ctx(), SearchCQLArgs{CQL: "type=="})
	if err == nil {
		t.Fatal("expected error for bad CQL")
	}
	if result.Results != nil {
		t.Errorf("Results = %v, want nil on failure", result.Results)
	}
	if apierrors.StatusCode(err) != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apierrors.StatusCode(err))
	}
}

// =============================================================================
// get_children
// =============================================================================

func TestGetChildrenMCP_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/api/v2/pages/42/children" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"results": [
			{"id": "43", "title": "Child A", "status": "current", "childPosition": 0},
			{"id": "44", "title": "Child B", "spaceId": "98306"}
		]}`))
	})

	result, err := client.GetChildrenMCP(ctx(), GetChildrenArgs{PageID: "42", Limit: intPtr(5)})
	if err != nil {
		t.Fatalf("GetChildrenMCP failed: %v", err)
	}

	want := []ChildPage{{ID: "43", Title: "Child A"}, {ID: "44", Title: "Child B"}}
	if len(result.Children) != len(want) {
		t.Fatalf("got %d children, want %d", len(result.Children), len(want))
	}
	for i := range want {
		if result.Children[i] != want[i] {
			t.Errorf("Children[%d] = %+v, want %+v", i, result.Children[i], want[i])
		}
	}
}

func TestGetChildrenMCP_NoNestedFallback(t *testing.T) {
	// A shape search_cql would accept is rejected here
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [
			{"id": "43", "title": "Fine"},
			{"content": {"id": "44", "title": "Nested only"}}
		]}`))
	})

	_, err := client.GetChildrenMCP(ctx(), GetChildrenArgs{PageID: "42"})
	var shapeErr *apierrors.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("err = %v, want *ShapeError", err)
	}
	if shapeErr.Index != 1 || shapeErr.Field != "id" || shapeErr.Entity != "child page" {
		t.Errorf("ShapeError = %+v", shapeErr)
	}
}

func TestGetChildrenMCP_CopiesValuesVerbatim(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"id": 77, "title": ""}]}`))
	})

	result, err := client.GetChildrenMCP(ctx(), GetChildrenArgs{PageID: "42"})
	if err != nil {
		t.Fatalf("GetChildrenMCP failed: %v", err)
	}
	raw, _ := json.Marshal(result.Children[0])
	if string(raw) != `{"id":77,"title":""}` {
		t.Errorf("child = %s", raw)
	}
}

// =============================================================================
// Error taxonomy across all tools
// =============================================================================

func TestAllTools_MissingCredentialsNeverReachNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	configs := map[string]*Config{
		"no site":  {Email: "me@example.com", APIToken: "t"},
		"no email": {Site: server.URL, APIToken: "t"},
		"no token": {Site: server.URL, Email: "me@example.com"},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			client := NewClient(cfg, WithHTTPClient(server.Client()), WithLogger(quietLogger()))

			ops := []struct {
				tool string
				run  func() error
			}{
				{"list_spaces", func() error { _, err := client.ListSpacesMCP(ctx(), ListSpacesArgs{}); return err }},
				{"get_page", func() error { _, err := client.GetPageMCP(ctx(), GetPageArgs{PageID: "1"}); return err }},
				{"search_cql", func() error { _, err := client.SearchCQLMCP(ctx(), SearchCQLArgs{CQL: "type=page"}); return err }},
				{"get_children", func() error { _, err := client.GetChildrenMCP(ctx(), GetChildrenArgs{PageID: "1"}); return err }},
			}
			for _, c := range ops {
				err := c.run()
				if !apierrors.IsConfig(err) {
					t.Errorf("%s: err = %v, want configuration error", c.tool, err)
				}
			}
		})
	}

	if got := calls.Load(); got != 0 {
		t.Errorf("upstream received %d requests, want 0", got)
	}
}

func TestAllTools_PropagateUpstreamStatus(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})

			errs := map[string]error{}
			_, errs["list_spaces"] = client.ListSpacesMCP(ctx(), ListSpacesArgs{})
			_, errs["get_page"] = client.GetPageMCP(ctx(), GetPageArgs{PageID: "1"})
			_, errs["search_cql"] = client.SearchCQLMCP(ctx(), SearchCQLArgs{CQL: "type=page"})
			_, errs["get_children"] = client.GetChildrenMCP(ctx(), GetChildrenArgs{PageID: "1"})

			for tool, err := range errs {
				if err == nil {
					t.Errorf("%s: expected error for status %d", tool, status)
					continue
				}
				if got := apierrors.StatusCode(err); got != status {
					t.Errorf("%s: status = %d, want %d", tool, got, status)
				}
			}
		})
	}
}

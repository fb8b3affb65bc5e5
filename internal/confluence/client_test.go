package confluence

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apierrors "github.com/olgasafonova/confluence-mcp-server/internal/errors"
)

func ctx() context.Context {
	return context.Background()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(site string) *Config {
	return &Config{
		Site:     site,
		Email:    "me@example.com",
		APIToken: "token-123",
		Timeout:  5 * time.Second,
	}
}

// newTestClient starts an upstream fake and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testConfig(server.URL), WithHTTPClient(server.Client()), WithLogger(quietLogger()))
}

func TestNewClient(t *testing.T) {
	cfg := testConfig("example.atlassian.net")
	client := NewClient(cfg)
	if client == nil {
		t.Fatal("NewClient returned nil")
	}
	if client.Config() != cfg {
		t.Error("Config() should return the injected config")
	}
	if client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", client.HTTPClient.Timeout)
	}
}

func TestNewClient_WithLogger(t *testing.T) {
	logger := quietLogger()
	client := NewClient(testConfig("example.atlassian.net"), WithLogger(logger))
	if client.Logger != logger {
		t.Error("custom logger was not set")
	}
}

func TestGet_SendsAuthAndAcceptHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "me@example.com" || pass != "token-123" {
			t.Errorf("basic auth = %q/%q (ok=%v)", user, pass, ok)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	var out ResultsResponse
	if err := client.Get(ctx(), EndpointSpaces, client.Config().APIv2()+"/spaces", nil, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
}

func TestGet_HTTPErrorCarriesStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Client must be authenticated"}`))
	})

	var out ResultsResponse
	err := client.Get(ctx(), EndpointSpaces, client.Config().APIv2()+"/spaces", url.Values{"limit": {"5"}}, &out)
	if err == nil {
		t.Fatal("expected error for 401")
	}

	if apierrors.KindOf(err) != apierrors.KindHTTP {
		t.Fatalf("KindOf = %v, want http_failure", apierrors.KindOf(err))
	}
	if code := apierrors.StatusCode(err); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
	if !strings.Contains(err.Error(), "Client must be authenticated") {
		t.Errorf("error should carry upstream body: %v", err)
	}
	if !strings.Contains(err.Error(), "401 Unauthorized") {
		t.Errorf("error should carry status text: %v", err)
	}
}

func TestGet_DecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	var out ResultsResponse
	err := client.Get(ctx(), EndpointSpaces, client.Config().APIv2()+"/spaces", nil, &out)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "decode response") {
		t.Errorf("unexpected error: %v", err)
	}
	if apierrors.KindOf(err) != apierrors.KindOther {
		t.Errorf("KindOf = %v, want other", apierrors.KindOf(err))
	}
}

func TestGet_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	site := server.URL
	server.Close()

	client := NewClient(testConfig(site), WithLogger(quietLogger()))

	var out ResultsResponse
	err := client.Get(ctx(), EndpointSpaces, client.Config().APIv2()+"/spaces", nil, &out)
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if apierrors.KindOf(err) != apierrors.KindOther {
		t.Errorf("KindOf = %v, want other", apierrors.KindOf(err))
	}
}

func TestGetPage_EscapesPageID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/wiki/api/v2/pages/a%2Fb" {
			t.Errorf("path = %q", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte(`{"id":"a/b"}`))
	})

	page, err := client.GetPage(ctx(), "a/b", "view")
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if page["id"] != "a/b" {
		t.Errorf("id = %v", page["id"])
	}
}

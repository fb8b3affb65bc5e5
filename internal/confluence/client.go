// Package confluence adapts the Confluence Cloud REST API into MCP tool operations.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/confluence-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/confluence-mcp-server/internal/errors"
	"github.com/olgasafonova/confluence-mcp-server/metrics"
	"github.com/olgasafonova/confluence-mcp-server/tracing"
)

// Endpoint labels used for metrics and tracing
const (
	EndpointSpaces   = "spaces"
	EndpointPage     = "page"
	EndpointSearch   = "search"
	EndpointChildren = "children"
)

// maxErrorBody bounds how much of an upstream error body is carried in errors
const maxErrorBody = 2000

// Client is a Confluence REST client. Each operation issues exactly one GET.
type Client struct {
	*base.Client
	config *Config
}

// ClientOption configures the Client (re-export base.ClientOption for compatibility)
type ClientOption = base.ClientOption

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return base.WithHTTPClient(c)
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return base.WithLogger(l)
}

// NewClient creates a new Confluence client for the given configuration
func NewClient(config *Config, opts ...ClientOption) *Client {
	all := append([]ClientOption{base.WithTimeout(config.Timeout)}, opts...)
	return &Client{
		Client: base.NewClient(all...),
		config: config,
	}
}

// Config returns the configuration the client was built with
func (c *Client) Config() *Config {
	return c.config
}

// Get performs an authenticated GET against reqURL and decodes the JSON body into out.
// Credentials are checked first, so a missing credential never reaches the network.
func (c *Client) Get(ctx context.Context, endpoint, reqURL string, params url.Values, out any) error {
	if err := c.config.Validate(); err != nil {
		metrics.RecordAPICall(endpoint, 0, false, apierrors.KindConfig.String())
		return err
	}

	ctx, span := tracing.StartSpan(ctx, "confluence.api.get")
	defer span.End()
	tracing.AddConfluenceAttributes(span, endpoint, "")
	span.SetAttributes(attribute.String("http.url", reqURL))

	start := time.Now()
	body, statusCode, err := c.DoRequest(ctx, base.RequestConfig{
		URL:       reqURL,
		Params:    params,
		Username:  c.config.Email,
		Password:  c.config.APIToken,
		UserAgent: c.config.UserAgent,
	})
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordAPICall(endpoint, duration, false, apierrors.KindOther.String())
		return err
	}
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
	metrics.RecordResponseSize(endpoint, len(body))

	if statusCode < 200 || statusCode > 299 {
		httpErr := &apierrors.HTTPError{
			StatusCode: statusCode,
			Status:     fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
			URL:        reqURL,
			Body:       base.Truncate(string(body), maxErrorBody),
		}
		span.RecordError(httpErr)
		span.SetStatus(codes.Error, httpErr.Status)
		metrics.RecordAPICall(endpoint, duration, false, strconv.Itoa(statusCode))
		c.Logger.Warn("Confluence API returned error status",
			"endpoint", endpoint,
			"status", statusCode)
		return httpErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		metrics.RecordAPICall(endpoint, duration, false, "decode")
		return fmt.Errorf("decode response: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordAPICall(endpoint, duration, true, "")
	return nil
}

// ListSpaces fetches one page of spaces. limit must already be clamped.
func (c *Client) ListSpaces(ctx context.Context, limit int) (*ResultsResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp ResultsResponse
	if err := c.Get(ctx, EndpointSpaces, c.config.APIv2()+"/spaces", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPage fetches a page by ID in the given body format and returns the raw object.
func (c *Client) GetPage(ctx context.Context, pageID, bodyFormat string) (map[string]any, error) {
	params := url.Values{}
	params.Set("body-format", bodyFormat)

	var page map[string]any
	reqURL := c.config.APIv2() + "/pages/" + url.PathEscape(pageID)
	if err := c.Get(ctx, EndpointPage, reqURL, params, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// SearchContent runs a CQL query. The query is forwarded verbatim.
func (c *Client) SearchContent(ctx context.Context, cql string, limit int) (*ResultsResponse, error) {
	params := url.Values{}
	params.Set("cql", cql)
	params.Set("limit", strconv.Itoa(limit))

	var resp ResultsResponse
	if err := c.Get(ctx, EndpointSearch, c.config.APIv1()+"/content/search", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetChildren fetches the direct children of a page. limit must already be clamped.
func (c *Client) GetChildren(ctx context.Context, pageID string, limit int) (*ResultsResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp ResultsResponse
	reqURL := c.config.APIv2() + "/pages/" + url.PathEscape(pageID) + "/children"
	if err := c.Get(ctx, EndpointChildren, reqURL, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Package errors provides shared error types for the Confluence adapter.
// Every failed tool call is classified as one of: a missing configuration,
// an upstream HTTP failure, or a response with an unexpected shape.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError indicates that mandatory configuration is missing.
// It is returned before any network request is attempted.
type ConfigError struct {
	Missing []string // environment variable names that were empty
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: missing required environment variables: %s", strings.Join(e.Missing, ", "))
}

// NewConfigError creates a ConfigError for the given variable names.
func NewConfigError(missing ...string) *ConfigError {
	return &ConfigError{Missing: missing}
}

// HTTPError indicates a non-2xx response from the upstream API.
// Status code and body are carried verbatim.
type HTTPError struct {
	StatusCode int
	Status     string // e.g. "404 Not Found"
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream HTTP error %s for %s", status, e.URL)
	}
	return fmt.Sprintf("upstream HTTP error %s for %s: %s", status, e.URL, e.Body)
}

// ShapeError indicates an upstream entry lacks a field the projection requires.
type ShapeError struct {
	Entity string // "space", "child page"
	Index  int    // position in the upstream results array
	Field  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed %s at index %d: missing field %q", e.Entity, e.Index, e.Field)
}

// NewShapeError creates a ShapeError.
func NewShapeError(entity string, index int, field string) *ShapeError {
	return &ShapeError{
		Entity: entity,
		Index:  index,
		Field:  field,
	}
}

// Kind classifies the outcome of an adapter call.
type Kind int

const (
	KindNone   Kind = iota // success
	KindConfig             // mandatory configuration missing
	KindHTTP               // upstream returned non-2xx
	KindShape              // upstream entry missing a required field
	KindOther              // transport, decoding or cancellation failure
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "success"
	case KindConfig:
		return "configuration_missing"
	case KindHTTP:
		return "http_failure"
	case KindShape:
		return "malformed_shape"
	default:
		return "other"
	}
}

// KindOf classifies err. A nil error is KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case IsConfig(err):
		return KindConfig
	case IsHTTP(err):
		return KindHTTP
	case IsShape(err):
		return KindShape
	default:
		return KindOther
	}
}

// IsConfig returns true if err is or wraps a ConfigError.
func IsConfig(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsHTTP returns true if err is or wraps an HTTPError.
func IsHTTP(err error) bool {
	var target *HTTPError
	return errors.As(err, &target)
}

// IsShape returns true if err is or wraps a ShapeError.
func IsShape(err error) bool {
	var target *ShapeError
	return errors.As(err, &target)
}

// StatusCode returns the upstream status code carried by err, or 0.
func StatusCode(err error) int {
	var target *HTTPError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}

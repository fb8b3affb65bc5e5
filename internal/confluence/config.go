package confluence

import (
	"os"
	"strings"
	"time"

	apierrors "github.com/olgasafonova/confluence-mcp-server/internal/errors"
)

// Environment variables read by LoadConfig
const (
	EnvSite      = "CONFLUENCE_SITE"
	EnvEmail     = "CONFLUENCE_EMAIL"
	EnvAPIToken  = "CONFLUENCE_API_TOKEN"
	EnvTimeout   = "CONFLUENCE_TIMEOUT"
	EnvUserAgent = "CONFLUENCE_USER_AGENT"
)

// DefaultTimeout is the fixed request timeout for Confluence calls
const DefaultTimeout = 60 * time.Second

// Config holds Confluence connection settings.
// It is built once at startup and never mutated.
type Config struct {
	// Site is the Confluence host (e.g., your-domain.atlassian.net)
	Site string

	// Email is the Atlassian account used for basic authentication
	Email string

	// APIToken is the Atlassian API token paired with Email
	APIToken string

	// Timeout for API requests
	Timeout time.Duration

	// UserAgent identifies the client to Confluence
	UserAgent string
}

// LoadConfig loads configuration from environment variables.
// Missing credentials are not an error here; see Validate.
func LoadConfig() *Config {
	timeout := DefaultTimeout
	if t := strings.TrimSpace(os.Getenv(EnvTimeout)); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Config{
		Site:      strings.TrimSpace(os.Getenv(EnvSite)),
		Email:     strings.TrimSpace(os.Getenv(EnvEmail)),
		APIToken:  strings.TrimSpace(os.Getenv(EnvAPIToken)),
		Timeout:   timeout,
		UserAgent: strings.TrimSpace(os.Getenv(EnvUserAgent)),
	}
}

// Validate returns a ConfigError naming every missing credential.
func (c *Config) Validate() error {
	var missing []string
	if c.Site == "" {
		missing = append(missing, EnvSite)
	}
	if c.Email == "" {
		missing = append(missing, EnvEmail)
	}
	if c.APIToken == "" {
		missing = append(missing, EnvAPIToken)
	}
	if len(missing) > 0 {
		return apierrors.NewConfigError(missing...)
	}
	return nil
}

// BaseURL returns the site root. A bare host gets an https scheme;
// a site that already carries a scheme is used as-is.
func (c *Config) BaseURL() string {
	site := strings.TrimRight(c.Site, "/")
	if strings.HasPrefix(site, "https://") || strings.HasPrefix(site, "http://") {
		return site
	}
	return "https://" + site
}

// APIv2 returns the base of the v2 REST API
func (c *Config) APIv2() string {
	return c.BaseURL() + "/wiki/api/v2"
}

// APIv1 returns the base of the legacy v1 REST API (used for CQL search)
func (c *Config) APIv1() string {
	return c.BaseURL() + "/wiki/rest/api"
}

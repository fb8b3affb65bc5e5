package hello

import (
	"os"
	"strings"
)

// Environment variables read by the HelloMCP server
const (
	EnvServerName = "HELLOMCP_SERVER_NAME"
	EnvGreeting   = "GREETING_MESSAGE"
)

// Defaults used when the environment leaves a value unset
const (
	DefaultServerName = "HelloMCP"
	DefaultGreeting   = "안녕하세요"
)

// Config holds the HelloMCP settings. Both values are fixed at startup.
type Config struct {
	ServerName string
	Greeting   string
}

// LoadConfig reads the HelloMCP configuration from the environment
func LoadConfig() *Config {
	return &Config{
		ServerName: envOrDefault(EnvServerName, DefaultServerName),
		Greeting:   envOrDefault(EnvGreeting, DefaultGreeting),
	}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

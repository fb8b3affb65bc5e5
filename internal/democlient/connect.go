package democlient

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"
)

// ClientVersion is reported in the MCP handshake
const ClientVersion = "1.0.0"

// Target says where the demo client connects. URL wins over Server.
type Target struct {
	// Server is an executable spawned as a stdio MCP server
	Server string
	Args   []string

	// URL is a streamable HTTP MCP endpoint
	URL string
}

// BindFlags registers --server and --url on fs
func (t *Target) BindFlags(fs *pflag.FlagSet, defaultServer, exampleURL string) {
	fs.StringVar(&t.Server, "server", defaultServer, "Server executable to spawn over stdio")
	fs.StringVar(&t.URL, "url", "", fmt.Sprintf("Streamable HTTP endpoint, e.g. %s (overrides --server)", exampleURL))
}

// BindEnvFlag registers --env on fs
func BindEnvFlag(fs *pflag.FlagSet, path *string) {
	fs.StringVar(path, "env", ".env", "Dotenv file loaded before connecting; a missing file is ignored")
}

// Transport builds the MCP transport for the target
func (t Target) Transport() (mcp.Transport, error) {
	if t.URL != "" {
		u, err := url.Parse(t.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid url %q: %w", t.URL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("invalid url %q: scheme must be http or https", t.URL)
		}
		return &mcp.StreamableClientTransport{Endpoint: t.URL}, nil
	}

	if t.Server == "" {
		return nil, errors.New("no server given: set a server executable or a url")
	}
	// The child inherits this process's environment, including anything
	// loaded by LoadEnv.
	cmd := exec.Command(t.Server, t.Args...)
	cmd.Stderr = os.Stderr
	return &mcp.CommandTransport{Command: cmd}, nil
}

// Connect opens an MCP session to the target
func Connect(ctx context.Context, name string, target Target) (*mcp.ClientSession, error) {
	transport, err := target.Transport()
	if err != nil {
		return nil, err
	}
	client := mcp.NewClient(&mcp.Implementation{Name: name, Version: ClientVersion}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return session, nil
}

// LoadEnv loads a dotenv file into the process environment.
// A missing file is ignored; variables already set are kept.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

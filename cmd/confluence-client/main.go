// Command confluence-client runs the scripted Confluence demo against a
// confluence-mcp-server, either spawned over stdio or reached over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/confluence-mcp-server/internal/democlient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		target  democlient.Target
		envFile string
		pageID  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "confluence-client",
		Short: "Run the Confluence MCP demo",
		Long: `Connect to a Confluence MCP server and run a fixed sequence of calls:
list_spaces, search_cql and, with --page-id, get_page and get_children.

By default the server binary is spawned over stdio and inherits this
process's environment (after --env is loaded). Use --url to talk to a
server started with -http instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := democlient.LoadEnv(envFile); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			session, err := democlient.Connect(ctx, "confluence-client", target)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			return democlient.RunConfluence(ctx, session, cmd.OutOrStdout(), democlient.ConfluenceOptions{
				PageID: pageID,
			})
		},
	}

	flags := cmd.Flags()
	target.BindFlags(flags, "./confluence-mcp-server", "http://127.0.0.1:8010/mcp/")
	democlient.BindEnvFlag(flags, &envFile)
	flags.StringVar(&pageID, "page-id", "", "Page ID for the get_page and get_children calls")
	flags.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout for the demo run")

	return cmd
}

// Command hello-client runs the scripted HelloMCP demo: introspection,
// greet, add, the message resource and the summarize prompt.
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
		opts    democlient.HelloOptions
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "hello-client",
		Short: "Run the HelloMCP demo",
		Long: `Connect to a HelloMCP server, list its tools, resources and prompts,
then call greet and add, read resource://hello/message and render the
summarize prompt.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := democlient.LoadEnv(envFile); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			session, err := democlient.Connect(ctx, "hello-client", target)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			return democlient.RunHello(ctx, session, cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	target.BindFlags(flags, "./hello-server", "http://127.0.0.1:8000/mcp/")
	democlient.BindEnvFlag(flags, &envFile)
	flags.StringVar(&opts.Name, "name", democlient.DefaultHelloName, "Name passed to greet")
	flags.StringVar(&opts.Text, "text", democlient.DefaultHelloText, "Text passed to the summarize prompt")
	flags.BoolVar(&opts.Quick, "quick", false, "Skip the closing notice")
	flags.DurationVar(&timeout, "timeout", time.Minute, "Overall timeout for the demo run")

	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcloud/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the word cloud pipeline over HTTP",
		Long: `Serve the word cloud pipeline over HTTP.

Endpoints:
  POST /v1/layout                 compute a layout from JSON options
  GET  /v1/layouts/{id}           fetch a computed layout
  GET  /v1/layouts/{id}/{format}  render a computed layout
  POST /v1/render?format=svg      compute and render in one call

Layouts are stored in the cache selected with --cache, so a shared redis or
mongo backend lets several instances serve the same layout ids. Send an
X-Tenant header to keep a client's cache entries apart from others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching (stored layouts will not be retrievable)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	backend := c.CacheBackend
	if noCache {
		backend = backendNone
		printWarning("Caching disabled: GET /v1/layouts/{id} will always miss")
	}
	printInfo("Serving on %s", StyleLink.Render("http://"+addr))
	printKeyValue("cache", backend)
	printDetail("Press Ctrl+C to stop")

	if err := server.New(runner, c.Logger).ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	printSuccess("Server stopped")
	return nil
}

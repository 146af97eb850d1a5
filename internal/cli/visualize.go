package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a word cloud from a computed layout",
		Long: `Render a word cloud from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG, or PDF. The layout holds every position, size and
rotation, so this step only chooses colours, background and scale.

Pass the same --font the layout was computed with; PNG output re-rasterizes
each word with it.

Use 'render' as a shortcut to go directly from words to images.`,
		Args: cobra.ExactArgs(1),
	}

	flags := newOptionFlags(cmd.Flags())
	flags.renderFlags(true)

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.options()
		if err != nil {
			return err
		}
		return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
	}
	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	res, err := readLayout(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d words...", len(res.Placed)))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   formatsOrDefault(opts.Formats),
		input:     strings.TrimSuffix(input, ".layout.json"),
		output:    output,
	}); err != nil {
		return err
	}
	printLayoutStats(res, cacheHit)
	return nil
}

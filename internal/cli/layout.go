package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/render/sink"
	pkgio "github.com/matzehuels/wordcloud/pkg/io"
	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

// stdinName is the base name used for outputs when words come from stdin.
const stdinName = "wordcloud"

// layoutCommand creates the layout command for computing word placements.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [words]",
		Short: "Compute a word cloud layout from word frequencies",
		Long: `Compute a word cloud layout from word frequencies.

The input is a JSON object ({"word": count}), a JSON array of
{"word", "count"} entries, or a text file with one "word<TAB>count",
"word,count" or bare word per line. Use "-" to read from stdin.

The output is a layout.json file (same format as 'render -f json') that
can be rendered with the 'visualize' command or browsed with 'inspect'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
	}

	flags := newOptionFlags(cmd.Flags())
	flags.inputFlags()
	flags.layoutFlags()

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when a cached layout exists")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.options()
		if err != nil {
			return err
		}
		if err := resolveInput(&opts, args, cmd.InOrStdin()); err != nil {
			return err
		}
		opts.Refresh = refresh
		return c.runLayout(cmd.Context(), opts, output, noCache)
	}
	return cmd
}

// runLayout computes the layout and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Placing words...")
	spinner.Start()
	opts.Events = spinner.LayoutEvents()

	result, err := runner.Layout(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := sink.RenderJSON(result.Layout)
	if err != nil {
		return err
	}
	outputPath := output
	if outputPath == "" {
		outputPath = inputBase(opts.Input) + ".layout.json"
	}
	if err := pkgio.WriteFile(outputPath, data); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printLayoutStats(result.Layout, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

// resolveInput applies the positional argument and reads stdin for "-".
func resolveInput(opts *pipeline.Options, args []string, stdin io.Reader) error {
	if len(args) == 1 {
		opts.Input = args[0]
	}
	if opts.Input == "-" {
		entries, err := pkgio.ReadFrequencies(stdin, pkgio.FormatAuto)
		if err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
		opts.Input = ""
		opts.Words = entries
	}
	if opts.Input == "" && len(opts.Words) == 0 {
		return fmt.Errorf("no input: pass a word file, \"-\" for stdin, or set input in --config")
	}
	return nil
}

// inputBase strips the extension from input, or names stdin output.
func inputBase(input string) string {
	if input == "" {
		return stdinName
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// readLayout loads a layout.json file.
func readLayout(path string) (*layout.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", path, err)
	}
	defer f.Close()
	res, err := layout.ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", path, err)
	}
	return res, nil
}

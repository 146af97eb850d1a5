package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/wordcloud/pkg/io"
	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

// renderCommand creates the render command: words in, images out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "render [words]",
		Short: "Render a word cloud from word frequencies",
		Long: `Render a word cloud from word frequencies.

Render combines 'layout' and 'visualize': it places the words and writes
the requested formats in one step. With a single format, -o names the
output file; with several, -o is a base path and each format gets its own
extension.

Options can be read from a TOML or YAML file with --config; flags given on
the command line override the file.`,
		Example: `  wordcloud render words.tsv -f svg,png
  wordcloud render words.json --mask heart.png --colors "#e63946,#457b9d"
  wordcloud render -c cloud.toml -o out/cloud.png`,
		Args: cobra.MaximumNArgs(1),
	}

	flags := newOptionFlags(cmd.Flags())
	flags.inputFlags()
	flags.layoutFlags()
	flags.renderFlags(false)

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached results exist")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.options()
		if err != nil {
			return err
		}
		if err := resolveInput(&opts, args, cmd.InOrStdin()); err != nil {
			return err
		}
		if len(opts.Formats) == 0 && output != "" {
			if f, err := pkgio.FormatFromPath(output); err == nil {
				opts.Formats = []string{f}
			}
		}
		opts.Refresh = refresh
		return c.runRender(cmd.Context(), opts, output, noCache)
	}
	return cmd
}

// runRender executes the full pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering word cloud...")
	spinner.Start()
	opts.Events = spinner.LayoutEvents()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Rendered %d words", result.Stats.Placed))

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   formatsOrDefault(opts.Formats),
		input:     opts.Input,
		output:    output,
	}); err != nil {
		return err
	}
	printLayoutStats(result.Layout, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// artifactWriteParams describes a batch of rendered outputs to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
}

// writeArtifacts writes each format to its output path and prints them.
func writeArtifacts(p artifactWriteParams) error {
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output produced", format)
		}
		path := outputPath(p.output, p.input, format, len(p.formats))
		if err := pkgio.WriteFile(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Wrote %d file(s)", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	return nil
}

// outputPath derives the path for one format. A single-format run writes
// to output as given; otherwise output (or the input) is a base path.
func outputPath(output, input, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input paths.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return inputBase(input)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(strings.ToLower(ext), ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func formatsOrDefault(formats []string) []string {
	if len(formats) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return formats
}

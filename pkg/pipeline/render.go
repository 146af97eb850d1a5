package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/render/color"
	"github.com/matzehuels/wordcloud/pkg/core/render/sink"
	"github.com/matzehuels/wordcloud/pkg/fonts"
)

// =============================================================================
// Render Stage
// =============================================================================

// Render produces one artifact per requested format. Formats are rendered
// concurrently; the first failure cancels the rest.
func Render(ctx context.Context, res *layout.Result, opts Options) (map[string][]byte, error) {
	font, err := fonts.Load(opts.Font, fonts.Engine(opts.FontEngine))
	if err != nil {
		return nil, err
	}
	rast := fonts.NewRasterizer(font)
	sinkOpts, err := SinkOptions(opts, font, rast)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := renderFormat(res, rast, format, sinkOpts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(res *layout.Result, rast *fonts.Rasterizer, format string, opts []sink.Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(res, opts...), nil
	case FormatPNG:
		return sink.RenderPNG(res, rast, opts...)
	case FormatPDF:
		return sink.RenderPDF(res, opts...)
	case FormatJSON:
		return sink.RenderJSON(res)
	}
	return nil, ValidateFormat(format)
}

// SinkOptions translates pipeline options into sink options.
func SinkOptions(opts Options, font *fonts.Font, rast *fonts.Rasterizer) ([]sink.Option, error) {
	colorFn, err := color.FromName(opts.Colors)
	if err != nil {
		return nil, err
	}
	background := color.DefaultBackground
	if opts.Background != "" {
		if background, err = color.Parse(opts.Background); err != nil {
			return nil, err
		}
	}
	out := []sink.Option{
		sink.WithColor(colorFn),
		sink.WithBackground(background),
		sink.WithFont(font),
		sink.WithMeasurer(rast),
	}
	if opts.Scale > 0 {
		out = append(out, sink.WithScale(opts.Scale))
	}
	if opts.EmbedFont {
		out = append(out, sink.WithEmbeddedFont())
	}
	return out, nil
}

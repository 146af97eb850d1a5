package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/wordcloud/pkg/core/freq"
	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/occupancy"
	"github.com/matzehuels/wordcloud/pkg/fonts"
)

// =============================================================================
// Layout Stage
// =============================================================================

// GenerateLayout places the words of t. The canvas defaults to the mask
// size when only a mask is given. The run is bounded by opts.Timeout.
func GenerateLayout(ctx context.Context, t *freq.Table, mask *occupancy.Mask, opts Options) (*layout.Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.Timeout))
		defer cancel()
	}

	font, err := fonts.Load(opts.Font, fonts.Engine(opts.FontEngine))
	if err != nil {
		return nil, err
	}
	lopts := LayoutOptions(opts, mask)
	lopts = append(lopts, layout.WithContext(ctx), layout.WithObserver(observer(opts)))
	return layout.Build(t, fonts.NewRasterizer(font), lopts...)
}

// LayoutOptions translates pipeline options into engine options.
func LayoutOptions(opts Options, mask *occupancy.Mask) []layout.Option {
	width, height := opts.Width, opts.Height
	if width == 0 && height == 0 && mask != nil {
		width, height = mask.Width, mask.Height
	}

	out := []layout.Option{
		layout.WithCanvas(width, height),
		layout.WithRotationRetry(!opts.NoRotationRetry),
	}
	if opts.Seed != nil {
		out = append(out, layout.WithSeed(*opts.Seed))
	}
	if opts.MinSize > 0 {
		out = append(out, layout.WithMinSize(opts.MinSize))
	}
	if opts.MaxSize > 0 {
		out = append(out, layout.WithMaxSize(opts.MaxSize))
	}
	if opts.Scaling != nil {
		out = append(out, layout.WithScaling(*opts.Scaling))
	}
	if opts.RelativeScaling > 0 {
		out = append(out, layout.WithRelativeScaling(opts.RelativeScaling))
	}
	if len(opts.Rotations) > 0 {
		out = append(out, layout.WithRotations(opts.Rotations...))
	}
	if opts.RotateChance != nil {
		out = append(out, layout.WithRotateChance(*opts.RotateChance))
	}
	if len(opts.RotationRange) == 2 {
		out = append(out, layout.WithRotationRange(opts.RotationRange[0], opts.RotationRange[1]))
	}
	if opts.Margin != nil {
		out = append(out, layout.WithMargin(*opts.Margin))
	}
	if opts.FontStep != nil {
		out = append(out, layout.WithFontStep(*opts.FontStep))
	}
	if opts.Jitter > 0 {
		out = append(out, layout.WithJitter(opts.Jitter))
	}
	if opts.SpiralSpacing > 0 || opts.SpiralStep > 0 {
		out = append(out, layout.WithSpiral(opts.SpiralSpacing, opts.SpiralStep))
	}
	if opts.MaxRadius > 0 {
		out = append(out, layout.WithMaxRadius(opts.MaxRadius))
	}
	if mask != nil {
		out = append(out, layout.WithMask(mask))
		if opts.MaskCentroid {
			out = append(out, layout.WithMaskCentroid())
		}
	}
	return out
}

// observer logs drops at debug level and forwards events to opts.Events.
func observer(opts Options) func(layout.Event) {
	logger := opts.Logger
	return func(ev layout.Event) {
		if ev.State == layout.StateDropped && logger != nil {
			logger.Debug("dropped word", "word", ev.Word.Text, "rank", ev.Index, "reason", ev.Reason)
		}
		if opts.Events != nil {
			opts.Events(ev)
		}
	}
}

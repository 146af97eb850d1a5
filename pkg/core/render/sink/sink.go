// Package sink renders a computed [layout.Result] to output formats.
//
// # Overview
//
//   - PNG: anti-aliased raster image drawn with the same rasterizer that
//     produced the layout ([RenderPNG])
//   - SVG: one rotated text element per word ([RenderSVG])
//   - PDF: SVG converted by rsvg-convert ([RenderPDF])
//   - JSON: the layout itself ([RenderJSON])
//
// Colours come from a [color.Func] evaluated once per placed word, in
// placement order, with a random source seeded from the layout seed. All
// sinks of one result therefore agree on every word's colour.
//
//	png, err := sink.RenderPNG(res, rast,
//	    sink.WithColor(color.Gray()),
//	    sink.WithBackground(color.DefaultBackground),
//	    sink.WithScale(2),
//	)
package sink

import (
	"image"
	stdcolor "image/color"
	"math/rand/v2"

	"github.com/matzehuels/wordcloud/pkg/core/layout"
	"github.com/matzehuels/wordcloud/pkg/core/render/color"
	"github.com/matzehuels/wordcloud/pkg/fonts"
)

// Option configures a sink.
type Option func(*options)

type options struct {
	colorFn    color.Func
	background stdcolor.RGBA
	scale      float64
	font       *fonts.Font
	measurer   Measurer
	embedFont  bool
}

// Measurer reports the unrotated ink box of a word relative to its
// baseline origin. [fonts.Rasterizer] implements it.
type Measurer interface {
	Bounds(text string, size float64) image.Rectangle
}

func WithColor(fn color.Func) Option       { return func(o *options) { o.colorFn = fn } }
func WithBackground(c stdcolor.RGBA) Option { return func(o *options) { o.background = c } }
func WithFont(f *fonts.Font) Option         { return func(o *options) { o.font = f } }
func WithMeasurer(m Measurer) Option        { return func(o *options) { o.measurer = m } }
func WithEmbeddedFont() Option              { return func(o *options) { o.embedFont = true } }

// WithScale multiplies the output size. PNG re-rasterizes at the scaled
// font size; SVG only changes its width and height attributes.
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

func newOptions(opts ...Option) options {
	o := options{
		colorFn:    color.Random(),
		background: color.DefaultBackground,
		scale:      1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Colors evaluates fn for every placed word of res, in placement order.
func Colors(res *layout.Result, fn color.Func) []stdcolor.RGBA {
	rng := rand.New(rand.NewPCG(res.Seed, res.Seed^0xdeadbeef))
	out := make([]stdcolor.RGBA, len(res.Placed))
	for i, p := range res.Placed {
		out[i] = fn(p, rng)
	}
	return out
}

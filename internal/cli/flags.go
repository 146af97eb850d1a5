package cli

import (
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/matzehuels/wordcloud/pkg/pipeline"
)

// optionFlags collects pipeline options from flags. Only flags the user
// actually set are applied, on top of an optional --config file, so a
// config value is never clobbered by a flag default.
type optionFlags struct {
	fs     *pflag.FlagSet
	config string
	apply  map[string]func(*pipeline.Options)
}

func newOptionFlags(fs *pflag.FlagSet) *optionFlags {
	b := &optionFlags{fs: fs, apply: map[string]func(*pipeline.Options){}}
	fs.StringVarP(&b.config, "config", "c", "", "read options from a TOML or YAML file (flags override it)")
	return b
}

// bind applies the flag's value through set when the flag was changed.
func bind[T any](b *optionFlags, name string, p *T, set func(*pipeline.Options, T)) {
	b.apply[name] = func(o *pipeline.Options) { set(o, *p) }
}

// bindPtr is bind for options whose zero value is meaningful.
func bindPtr[T any](b *optionFlags, name string, p *T, set func(*pipeline.Options, *T)) {
	b.apply[name] = func(o *pipeline.Options) {
		v := *p
		set(o, &v)
	}
}

// options returns the config file's options overlaid with changed flags.
func (b *optionFlags) options() (pipeline.Options, error) {
	var opts pipeline.Options
	if b.config != "" {
		var err error
		if opts, err = pipeline.LoadConfig(b.config); err != nil {
			return opts, err
		}
	}
	b.fs.Visit(func(f *pflag.Flag) {
		if fn, ok := b.apply[f.Name]; ok {
			fn(&opts)
		}
	})
	return opts, nil
}

// inputFlags registers word table flags.
func (b *optionFlags) inputFlags() {
	var (
		maxWords, minLength int
		exclude             []string
		foldCase            bool
	)
	b.fs.IntVar(&maxWords, "max-words", 0, "keep only the most frequent N words (0 = all)")
	b.fs.IntVar(&minLength, "min-length", 0, "drop words shorter than N characters")
	b.fs.StringSliceVar(&exclude, "exclude", nil, "words to drop (comma-separated, case-insensitive)")
	b.fs.BoolVar(&foldCase, "fold-case", false, "merge words that differ only in case")

	bind(b, "max-words", &maxWords, func(o *pipeline.Options, v int) { o.MaxWords = v })
	bind(b, "min-length", &minLength, func(o *pipeline.Options, v int) { o.MinLength = v })
	bind(b, "exclude", &exclude, func(o *pipeline.Options, v []string) { o.Exclude = v })
	bind(b, "fold-case", &foldCase, func(o *pipeline.Options, v bool) { o.FoldCase = v })
}

// layoutFlags registers placement flags.
func (b *optionFlags) layoutFlags() {
	var (
		width, height, margin, jitter, threshold int
		seed                                     uint64
		minSize, maxSize, scaling, relative      float64
		rotateChance, fontStep                   float64
		spacing, step, radius                    float64
		rotations, rotationRange                 []float64
		noRetry, centroid                        bool
		font, engine, mask, maskMode             string
		timeout                                  time.Duration
	)
	fs := b.fs
	fs.IntVar(&width, "width", 0, "canvas width in pixels (default 800, or the mask width)")
	fs.IntVar(&height, "height", 0, "canvas height in pixels (default 400, or the mask height)")
	fs.Uint64Var(&seed, "seed", pipeline.DefaultSeed, "random seed")
	fs.Float64Var(&minSize, "min-size", 0, "smallest font size; smaller words are dropped (default 4)")
	fs.Float64Var(&maxSize, "max-size", 0, "largest font size (default: half the shorter canvas side)")
	fs.Float64Var(&scaling, "scaling", 1, "exponent applied to normalized frequencies (0 = every word the same size)")
	fs.Float64Var(&relative, "relative-scaling", 0, "size each word relative to the previous one, 0..1 (0 = off)")
	fs.Float64SliceVar(&rotations, "rotations", nil, "allowed rotation angles in degrees (default 0,90)")
	fs.Float64Var(&rotateChance, "rotate-chance", 0.1, "probability that a word is rotated")
	fs.Float64SliceVar(&rotationRange, "rotation-range", nil, "min,max degrees for random rotations")
	fs.BoolVar(&noRetry, "no-rotation-retry", false, "do not retry a word at the other orientation")
	fs.IntVar(&margin, "margin", 2, "free pixels kept around each word")
	fs.Float64Var(&fontStep, "font-step", 1, "font size decrement when a word does not fit")
	fs.IntVar(&jitter, "jitter", 0, "random offset in pixels applied to spiral start")
	fs.Float64Var(&spacing, "spiral-spacing", 0, "distance in pixels between spiral turns (default 2)")
	fs.Float64Var(&step, "spiral-step", 0, "arc length in pixels between spiral candidates (default 2)")
	fs.Float64Var(&radius, "max-radius", 0, "stop the spiral search at this radius (default: farthest canvas corner)")
	fs.StringVar(&font, "font", "", "font: goregular, gobold (default), gomono, or a .ttf/.otf path")
	fs.StringVar(&engine, "font-engine", "", "rasterizer: opentype (default), freetype")
	fs.StringVar(&mask, "mask", "", "mask image (png, jpeg, gif, bmp, webp)")
	fs.StringVar(&maskMode, "mask-mode", "", "allow: place words on black pixels (default); forbid: keep black free")
	fs.IntVar(&threshold, "mask-threshold", pipeline.DefaultMaskThreshold, "gray level at or below which a mask pixel is black")
	fs.BoolVar(&centroid, "mask-centroid", false, "start the spiral at the centroid of the free area")
	fs.DurationVar(&timeout, "timeout", pipeline.DefaultTimeout, "abort the layout after this long")

	bind(b, "width", &width, func(o *pipeline.Options, v int) { o.Width = v })
	bind(b, "height", &height, func(o *pipeline.Options, v int) { o.Height = v })
	bindPtr(b, "seed", &seed, func(o *pipeline.Options, v *uint64) { o.Seed = v })
	bind(b, "min-size", &minSize, func(o *pipeline.Options, v float64) { o.MinSize = v })
	bind(b, "max-size", &maxSize, func(o *pipeline.Options, v float64) { o.MaxSize = v })
	bindPtr(b, "scaling", &scaling, func(o *pipeline.Options, v *float64) { o.Scaling = v })
	bind(b, "relative-scaling", &relative, func(o *pipeline.Options, v float64) { o.RelativeScaling = v })
	bind(b, "rotations", &rotations, func(o *pipeline.Options, v []float64) { o.Rotations = v })
	bindPtr(b, "rotate-chance", &rotateChance, func(o *pipeline.Options, v *float64) { o.RotateChance = v })
	bind(b, "rotation-range", &rotationRange, func(o *pipeline.Options, v []float64) { o.RotationRange = v })
	bind(b, "no-rotation-retry", &noRetry, func(o *pipeline.Options, v bool) { o.NoRotationRetry = v })
	bindPtr(b, "margin", &margin, func(o *pipeline.Options, v *int) { o.Margin = v })
	bindPtr(b, "font-step", &fontStep, func(o *pipeline.Options, v *float64) { o.FontStep = v })
	bind(b, "jitter", &jitter, func(o *pipeline.Options, v int) { o.Jitter = v })
	bind(b, "spiral-spacing", &spacing, func(o *pipeline.Options, v float64) { o.SpiralSpacing = v })
	bind(b, "spiral-step", &step, func(o *pipeline.Options, v float64) { o.SpiralStep = v })
	bind(b, "max-radius", &radius, func(o *pipeline.Options, v float64) { o.MaxRadius = v })
	bind(b, "font", &font, func(o *pipeline.Options, v string) { o.Font = v })
	bind(b, "font-engine", &engine, func(o *pipeline.Options, v string) { o.FontEngine = v })
	bind(b, "mask", &mask, func(o *pipeline.Options, v string) { o.MaskPath = v })
	bind(b, "mask-mode", &maskMode, func(o *pipeline.Options, v string) { o.MaskMode = v })
	bindPtr(b, "mask-threshold", &threshold, func(o *pipeline.Options, v *int) { o.MaskThreshold = v })
	bind(b, "mask-centroid", &centroid, func(o *pipeline.Options, v bool) { o.MaskCentroid = v })
	bind(b, "timeout", &timeout, func(o *pipeline.Options, v time.Duration) { o.Timeout = pipeline.Duration(v) })
}

// renderFlags registers output styling flags. withFont is false when the
// layout flags already registered --font.
func (b *optionFlags) renderFlags(withFont bool) {
	var (
		formats          []string
		colors, bg, font string
		engine           string
		scale            float64
		embed            bool
	)
	fs := b.fs
	fs.StringSliceVarP(&formats, "format", "f", nil, "output format(s): svg (default), png, pdf, json (comma-separated)")
	fs.StringVar(&colors, "colors", "", "colour scheme: random (default), gray, a CSS colour, or a comma-separated palette")
	fs.StringVar(&bg, "background", "", "background colour (default black)")
	fs.Float64Var(&scale, "scale", 1, "output scale factor")
	fs.BoolVar(&embed, "embed-font", false, "embed the font in SVG output")

	bind(b, "format", &formats, func(o *pipeline.Options, v []string) { o.Formats = normalizeFormats(v) })
	bind(b, "colors", &colors, func(o *pipeline.Options, v string) { o.Colors = v })
	bind(b, "background", &bg, func(o *pipeline.Options, v string) { o.Background = v })
	bind(b, "scale", &scale, func(o *pipeline.Options, v float64) { o.Scale = v })
	bind(b, "embed-font", &embed, func(o *pipeline.Options, v bool) { o.EmbedFont = v })

	if withFont {
		fs.StringVar(&font, "font", "", "font used to render PNG and SVG (default: gobold)")
		fs.StringVar(&engine, "font-engine", "", "rasterizer: opentype (default), freetype")
		bind(b, "font", &font, func(o *pipeline.Options, v string) { o.Font = v })
		bind(b, "font-engine", &engine, func(o *pipeline.Options, v string) { o.FontEngine = v })
	}
}

func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

package layout

import (
	"context"

	"github.com/matzehuels/wordcloud/pkg/core/occupancy"
	"github.com/matzehuels/wordcloud/pkg/core/sizing"
)

// Default placement values.
const (
	DefaultWidth         = 800
	DefaultHeight        = 400
	DefaultRotateChance  = 0.1
	DefaultMargin        = 2
	DefaultFontStep      = 1.0
	DefaultSpiralSpacing = 2.0
	DefaultSpiralStep    = 2.0
)

// DefaultRotations is the allowed rotation set when none is configured.
// The first entry is the preferred orientation.
var DefaultRotations = []float64{0, 90}

// Option configures an [Engine].
type Option func(*config)

type config struct {
	ctx           context.Context
	width, height int
	mapper        sizing.Mapper
	seed          uint64

	rotations     []float64
	rotateChance  float64
	rotRange      *[2]float64
	rotationRetry bool

	mask         *occupancy.Mask
	maskCentroid bool
	jitter       int

	margin   int
	fontStep float64

	spacing, step float64
	maxRadius     float64

	observer func(Event)
}

func defaultConfig() config {
	return config{
		ctx:           context.Background(),
		width:         DefaultWidth,
		height:        DefaultHeight,
		mapper:        sizing.New(),
		rotations:     DefaultRotations,
		rotateChance:  DefaultRotateChance,
		rotationRetry: true,
		margin:        DefaultMargin,
		fontStep:      DefaultFontStep,
		spacing:       DefaultSpiralSpacing,
		step:          DefaultSpiralStep,
	}
}

// WithContext sets a context checked between words and periodically
// during the spiral search. Cancellation aborts the run with TIMEOUT.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithCanvas sets the canvas size in pixels.
func WithCanvas(width, height int) Option {
	return func(c *config) { c.width, c.height = width, height }
}

// WithSeed sets the seed of the run's random source.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithSizeMapper replaces the size policy. Unset fields of m are filled
// with defaults when the run starts (see [sizing.Mapper.Resolve]).
func WithSizeMapper(m sizing.Mapper) Option {
	return func(c *config) { c.mapper = m }
}

// WithMinSize sets the smallest placeable font size.
func WithMinSize(size float64) Option {
	return func(c *config) { c.mapper.MinSize = size }
}

// WithMaxSize sets the font size of the top-ranked word.
func WithMaxSize(size float64) Option {
	return func(c *config) { c.mapper.MaxSize = size }
}

// WithScaling sets the exponent of the power size policy. Zero gives every
// word the same size.
func WithScaling(exponent float64) Option {
	return func(c *config) { c.mapper.Exponent = exponent }
}

// WithRelativeScaling enables the rank-relative size policy with factor r
// in (0, 1].
func WithRelativeScaling(r float64) Option {
	return func(c *config) { c.mapper.RelativeScaling = r }
}

// WithRotations sets the discrete rotation set in degrees. The first angle
// is used unless the rotate chance picks one of the others.
func WithRotations(degrees ...float64) Option {
	return func(c *config) {
		if len(degrees) > 0 {
			c.rotations = degrees
			c.rotRange = nil
		}
	}
}

// WithRotateChance sets the probability of leaving the preferred rotation.
func WithRotateChance(p float64) Option {
	return func(c *config) { c.rotateChance = min(max(p, 0), 1) }
}

// WithRotationRange draws every rotation uniformly from [lo, hi) degrees
// instead of from a discrete set.
func WithRotationRange(lo, hi float64) Option {
	return func(c *config) {
		if hi < lo {
			lo, hi = hi, lo
		}
		c.rotRange = &[2]float64{lo, hi}
	}
}

// WithRotationRetry controls whether a word that does not fit is retried
// at the other allowed rotations before it is dropped. Enabled by default.
func WithRotationRetry(enabled bool) Option {
	return func(c *config) { c.rotationRetry = enabled }
}

// WithMask constrains placement to the pixels the mask allows.
func WithMask(m *occupancy.Mask) Option {
	return func(c *config) { c.mask = m }
}

// WithMaskCentroid starts every spiral at the centroid of the free pixels
// instead of the canvas centre.
func WithMaskCentroid() Option {
	return func(c *config) { c.maskCentroid = true }
}

// WithJitter offsets each spiral start by up to px pixels on both axes,
// drawn from the run's random source.
func WithJitter(px int) Option {
	return func(c *config) { c.jitter = max(px, 0) }
}

// WithMargin sets the minimum gap between the ink of two words.
func WithMargin(px int) Option {
	return func(c *config) { c.margin = max(px, 0) }
}

// WithFontStep sets how much a word shrinks per retry when it does not
// fit. Zero disables shrinking.
func WithFontStep(step float64) Option {
	return func(c *config) { c.fontStep = max(step, 0) }
}

// WithSpiral sets the radial distance between spiral turns and the arc
// length between candidate positions, both in pixels.
func WithSpiral(spacing, step float64) Option {
	return func(c *config) {
		if spacing > 0 {
			c.spacing = spacing
		}
		if step > 0 {
			c.step = step
		}
	}
}

// WithMaxRadius bounds the spiral search. By default the spiral stops once
// it has passed the canvas corner farthest from its start.
func WithMaxRadius(r float64) Option {
	return func(c *config) { c.maxRadius = r }
}

// WithObserver registers a callback invoked on every engine state change.
func WithObserver(fn func(Event)) Option {
	return func(c *config) { c.observer = fn }
}

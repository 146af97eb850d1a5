// Package sizing maps ranked word frequencies to font sizes.
//
// The top-ranked word always receives [Mapper.MaxSize]. Every other word is
// scaled relative to it, so size never increases with rank. Words whose size
// falls below the minimum are reported as too small rather than silently
// discarded.
//
// Two policies are available:
//
//   - Power (default): size = max × (f / fmax)^Exponent. Exponent 1 is
//     linear, 0.5 is square-root, 0 gives every word the same size.
//   - Relative: size_i = size_{i-1} × (r·f_i/f_{i-1} + 1 − r). This blends
//     rank and frequency; r = 1 is purely proportional to the previous word,
//     r close to 0 keeps sizes nearly flat.
package sizing

import (
	"math"

	"github.com/matzehuels/wordcloud/pkg/core/freq"
)

// Default policy values.
const (
	DefaultMinSize      = 4.0
	DefaultMaxSizeRatio = 0.5
	DefaultExponent     = 1.0
)

// Mapper converts a frequency table into per-word font sizes.
type Mapper struct {
	// MinSize is the smallest size a word may be placed at.
	MinSize float64

	// MaxSize is the size of the top-ranked word. When zero it is derived
	// as MaxSizeRatio × min(canvas width, canvas height).
	MaxSize float64

	// MaxSizeRatio is used when MaxSize is zero. Default 0.5.
	MaxSizeRatio float64

	// Exponent controls the Power policy. Zero is a valid exponent; only a
	// negative value is replaced by the default 1 (linear).
	Exponent float64

	// RelativeScaling enables the Relative policy when in (0, 1].
	RelativeScaling float64
}

// Sized is the outcome of mapping one word.
type Sized struct {
	Word     freq.Word
	Size     float64
	TooSmall bool
}

// New returns a Mapper with default policy values.
func New() Mapper {
	return Mapper{
		MinSize:      DefaultMinSize,
		MaxSizeRatio: DefaultMaxSizeRatio,
		Exponent:     DefaultExponent,
	}
}

// Resolve fills unset fields with defaults and derives MaxSize from the
// canvas when it is not set explicitly. MinSize, MaxSize and MaxSizeRatio
// are unset at zero; Exponent is unset only when negative.
func (m Mapper) Resolve(width, height int) Mapper {
	if m.MinSize <= 0 {
		m.MinSize = DefaultMinSize
	}
	if m.MaxSizeRatio <= 0 {
		m.MaxSizeRatio = DefaultMaxSizeRatio
	}
	if m.Exponent < 0 {
		m.Exponent = DefaultExponent
	}
	if m.MaxSize <= 0 {
		m.MaxSize = m.MaxSizeRatio * float64(min(width, height))
	}
	return m
}

// Map computes sizes for every word of t, in rank order. The result has
// one entry per word; entries below MinSize are flagged TooSmall.
//
// Map expects a resolved Mapper (see [Mapper.Resolve]).
func (m Mapper) Map(t *freq.Table) []Sized {
	out := make([]Sized, t.Len())
	if t.Len() == 0 {
		return out
	}
	maxFreq := float64(t.MaxFrequency())
	useRelative := m.RelativeScaling > 0 && m.RelativeScaling <= 1

	prevSize, prevFreq := m.MaxSize, maxFreq
	for i := range t.Len() {
		w := t.At(i)
		f := float64(w.Frequency)

		var size float64
		switch {
		case i == 0:
			size = m.MaxSize
		case useRelative:
			r := m.RelativeScaling
			size = prevSize * (r*(f/prevFreq) + (1 - r))
		default:
			size = m.MaxSize * math.Pow(f/maxFreq, m.Exponent)
		}
		// Guard against float drift making a later word marginally larger.
		size = min(size, prevSize)

		out[i] = Sized{Word: w, Size: size, TooSmall: size < m.MinSize}
		prevSize, prevFreq = size, f
	}
	return out
}
